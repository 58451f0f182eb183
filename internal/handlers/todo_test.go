package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

func TestCreateTodo_HTTP(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.signIn(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":       "Write report",
		"description": "Q3 numbers",
		"priority":    "HIGH",
		"due_date":    "2026-10-01",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, "Write report", body["title"])
	require.Equal(t, "HIGH", body["priority"])
	require.Equal(t, "PRIVATE", body["visibility"])
	require.Equal(t, "OPEN", body["status"])
}

func TestCreateTodo_HTTPValidation(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.signIn(t, "alice@example.com")

	// Missing title fails binding.
	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"description": "no title",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":    "x",
		"due_date": "not-a-date",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":      "x",
		"visibility": "EVERYONE",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTodos_FilterMyAndShared(t *testing.T) {
	env := setupTestEnv(t)

	aliceCookies := env.signIn(t, "alice@example.com")
	bobCookies := env.signIn(t, "bob@example.com")

	// Both users are in the default org, so an ORG todo crosses over.
	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":      "Team visible",
		"visibility": "ORG",
	}, aliceCookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title": "Bob private",
	}, bobCookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/todos?filter=my", nil, bobCookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	todos := body["todos"].([]any)
	require.Len(t, todos, 2)

	w = env.do(t, http.MethodGet, "/api/todos?filter=shared", nil, bobCookies)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	todos = body["todos"].([]any)
	require.Len(t, todos, 1)
	require.Equal(t, "Team visible", todos[0].(map[string]any)["title"])

	w = env.do(t, http.MethodGet, "/api/todos?filter=everything", nil, bobCookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTodo_HidesForeignTodos(t *testing.T) {
	env := setupTestEnv(t)

	aliceCookies := env.signIn(t, "alice@example.com")
	bobCookies := env.signIn(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title": "Alice private",
	}, aliceCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	todoID := uint64(decodeBody(t, w)["id"].(float64))

	url := fmt.Sprintf("/api/todos/%d", todoID)

	w = env.do(t, http.MethodGet, url, nil, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code)

	// A private todo is a 404 for everyone else, same as a missing one.
	w = env.do(t, http.MethodGet, url, nil, bobCookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/todos/99999", nil, bobCookies)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTodo_HTTPPatchSemantics(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.signIn(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":    "Patch me",
		"priority": "LOW",
		"due_date": "2026-10-01",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	todoID := uint64(decodeBody(t, w)["id"].(float64))
	url := fmt.Sprintf("/api/todos/%d", todoID)

	// Patch the status only.
	w = env.do(t, http.MethodPatch, url, map[string]any{
		"status": "COMPLETED",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "COMPLETED", body["status"])
	require.Equal(t, "LOW", body["priority"])
	require.NotNil(t, body["due_date"])

	// An explicit null clears; an absent key leaves alone.
	w = env.do(t, http.MethodPatch, url, map[string]any{
		"priority": nil,
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	require.Nil(t, body["priority"])
	require.NotNil(t, body["due_date"])

	w = env.do(t, http.MethodPatch, url, map[string]any{
		"due_date": nil,
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, decodeBody(t, w)["due_date"])
}

func TestUpdateTodo_ForbiddenForReaders(t *testing.T) {
	env := setupTestEnv(t)

	aliceCookies := env.signIn(t, "alice@example.com")
	bobCookies := env.signIn(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":      "Org readable",
		"visibility": "ORG",
	}, aliceCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	todoID := uint64(decodeBody(t, w)["id"].(float64))

	// Bob can read it but not write it.
	url := fmt.Sprintf("/api/todos/%d", todoID)
	w = env.do(t, http.MethodGet, url, nil, bobCookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, url, map[string]any{
		"title": "Bob was here",
	}, bobCookies)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestShareTodo_EndToEnd(t *testing.T) {
	env := setupTestEnv(t)

	aliceCookies := env.signIn(t, "alice@example.com")
	bobCookies := env.signIn(t, "bob@example.com")
	bob := env.currentUser(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title":       "Handoff",
		"visibility":  "SPECIFIC",
		"shared_with": []uint64{bob.ID},
	}, aliceCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	todoID := uint64(decodeBody(t, w)["id"].(float64))

	url := fmt.Sprintf("/api/todos/%d", todoID)
	w = env.do(t, http.MethodGet, url, nil, bobCookies)
	require.Equal(t, http.StatusOK, w.Code)

	// Unsharing revokes access.
	w = env.do(t, http.MethodPatch, url, map[string]any{
		"shared_with": []uint64{},
	}, aliceCookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, url, nil, bobCookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	// A pending notification for bob was queued at share time.
	var count int64
	require.NoError(t, env.db.Model(&models.TodoNotification{}).
		Where("todo_id = ? AND user_id = ?", todoID, bob.ID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestDeleteTodo_HTTP(t *testing.T) {
	env := setupTestEnv(t)
	cookies := env.signIn(t, "alice@example.com")

	w := env.do(t, http.MethodPost, "/api/todos", map[string]any{
		"title": "Short lived",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	todoID := uint64(decodeBody(t, w)["id"].(float64))

	url := fmt.Sprintf("/api/todos/%d", todoID)
	w = env.do(t, http.MethodDelete, url, nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, url, nil, cookies)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodos_RequireSession(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/todos", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/todos", map[string]any{"title": "x"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
