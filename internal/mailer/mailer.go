package mailer

import (
	"context"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/tsubakurame/team-todo-api/internal/config"
)

// Sender delivers transactional email. Implementations may fail transiently;
// callers decide whether a failure needs a compensating action.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail over SMTP.
type SMTPSender struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}
	return &SMTPSender{
		dialer:  gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPassword),
		from:    cfg.SMTPFrom,
		timeout: 15 * time.Second,
	}
}

// Send delivers one message. The SMTP dial does not take a context, so the
// call runs in a goroutine and a timeout counts as a failure, never as a
// silent success.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
