package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/constants"
	"github.com/tsubakurame/team-todo-api/internal/middleware"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/services"
)

// stubSender records outgoing mail for assertions.
type stubSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *stubSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("smtp unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	mail   *stubSender
}

// setupTestEnv wires the full route table against an in-memory database and
// a cookie session store.
func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Todo{},
		&models.TodoShare{},
		&models.Message{},
		&models.OrgInvitation{},
		&models.VerificationToken{},
		&models.TodoNotification{},
		&models.MotivationalMessage{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mail := &stubSender{}

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	authService := services.NewAuthService(userRepo, orgRepo, tokenRepo, mail, "http://test.local")
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	invitationService := services.NewInvitationService(invitationRepo, userRepo, orgRepo, mail, "http://test.local")
	todoService := services.NewTodoService(todoRepo, userRepo, notificationRepo)
	messageService := services.NewMessageService(todoRepo, mail)
	notificationService := services.NewNotificationService(notificationRepo, mail)

	authHandler := NewAuthHandler(authService)
	orgHandler := NewOrganizationHandler(orgService, invitationService)
	todoHandler := NewTodoHandler(todoService)
	messageHandler := NewMessageHandler(messageService)
	notificationHandler := NewNotificationHandler(notificationService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	requireAuth := middleware.RequireAuth(userRepo)
	optionalAuth := middleware.OptionalAuth(userRepo)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/request-code", authHandler.RequestCode)
			auth.POST("/verify-code", authHandler.VerifyCode)
			auth.GET("/callback", authHandler.Callback)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		user := api.Group("/user")
		user.Use(requireAuth)
		{
			user.PATCH("", authHandler.UpdateProfile)
			user.PATCH("/password", authHandler.UpdatePassword)
		}

		org := api.Group("/org")
		{
			org.GET("/invite/accept", optionalAuth, orgHandler.AcceptInvitation)
			org.POST("/invite/accept", optionalAuth, orgHandler.AcceptInvitation)
			org.GET("/slug", orgHandler.CheckSlug)

			protected := org.Group("")
			protected.Use(requireAuth)
			{
				protected.GET("", orgHandler.GetOrganization)
				protected.PATCH("/slug", orgHandler.SetSlug)
				protected.GET("/by-slug/:slug", orgHandler.ResolveSlug)
				protected.POST("/invite", orgHandler.Invite)
				protected.GET("/invitations", orgHandler.ListInvitations)
				protected.POST("/invitations/:id/reinvite", orgHandler.Reinvite)
				protected.DELETE("/invitations/:id", orgHandler.DeleteInvitation)
				protected.GET("/members", orgHandler.ListMembers)
				protected.DELETE("/members/:id", orgHandler.RemoveMember)
			}
		}

		todos := api.Group("/todos")
		todos.Use(requireAuth)
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.GET("/:id", todoHandler.GetTodo)
			todos.PATCH("/:id", todoHandler.UpdateTodo)
			todos.DELETE("/:id", todoHandler.DeleteTodo)
			todos.GET("/:id/messages", messageHandler.ListMessages)
		}

		api.POST("/messages", requireAuth, messageHandler.PostMessage)

		api.POST("/notifications/send-batch",
			middleware.RequireBatchSecret("test-batch-secret"),
			notificationHandler.SendBatch)
	}

	return testEnv{db: db, router: r, mail: mail}
}

// do runs a request against the router, reusing any session cookies.
func (e testEnv) do(t *testing.T, method, url string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signIn walks the passwordless flow for the email and returns the session
// cookies.
func (e testEnv) signIn(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/request-code", gin.H{"email": email}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var record models.VerificationToken
	require.NoError(t, e.db.
		Where("identifier = ?", email).
		Order("created_at DESC").
		First(&record).Error)

	w = e.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{
		"email": email,
		"code":  record.Code,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (e testEnv) currentUser(t *testing.T, email string) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, e.db.Where("email = ?", email).First(&user).Error)
	return &user
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
