package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeNotifyDigest = "notify:digest"
)

// NotifyDigestPayload carries the reference time for one digest pass. A zero
// time means "now" on the worker.
type NotifyDigestPayload struct {
	Now time.Time `json:"now"`
}

func NewNotifyDigestTask(payload NotifyDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotifyDigest, data), nil
}
