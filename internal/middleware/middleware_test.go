package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/loanlinker/api/internal/config"
	appcontext "github.com/loanlinker/api/internal/context"
	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"

	"github.com/stretchr/testify/require"
)

func newTestMiddleware() *Middleware {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	baseURL := "http://localhost"
	var wg sync.WaitGroup
	help := helper.New(&baseURL, &wg, logger)
	errRepo := errHandler.New("", nil, logger, help)

	cfg := &config.Config{BaseURL: baseURL}
	cfg.Jwt.SecretKey = "test_secret"

	return New(errRepo, logger, nil, cfg)
}

func nextHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	mid := newTestMiddleware()

	var called bool
	handler := mid.RequireRole(repository.RoleBank, nextHandler(&called))

	req := httptest.NewRequest("GET", "/bank/leads", nil)
	req = appcontext.ContextSetAuthenticatedUser(req, &models.User{ID: "bank-1", Role: repository.RoleBank})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_ForbidsOtherRoles(t *testing.T) {
	mid := newTestMiddleware()

	var called bool
	handler := mid.RequireRole(repository.RoleBank, nextHandler(&called))

	req := httptest.NewRequest("GET", "/bank/leads", nil)
	req = appcontext.ContextSetAuthenticatedUser(req, &models.User{ID: "user-1", Role: repository.RoleUser})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.False(t, called)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

// The admin does not inherit partner capabilities; operator access to bank
// or rm surfaces has to be granted explicitly, never implied.
func TestRequireRole_AdminInheritsNothing(t *testing.T) {
	mid := newTestMiddleware()

	var called bool
	handler := mid.RequireRole(repository.RoleBank, nextHandler(&called))

	req := httptest.NewRequest("GET", "/bank/leads", nil)
	req = appcontext.ContextSetAuthenticatedUser(req, &models.User{ID: "admin-1", Role: repository.RoleAdmin})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.False(t, called)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireRole_RejectsAnonymous(t *testing.T) {
	mid := newTestMiddleware()

	var called bool
	handler := mid.RequireRole(repository.RoleUser, nextHandler(&called))

	req := httptest.NewRequest("GET", "/my-applications", nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthenticatedUser(t *testing.T) {
	mid := newTestMiddleware()

	var called bool
	handler := mid.RequireAuthenticatedUser(nextHandler(&called))

	req := httptest.NewRequest("GET", "/me", nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = appcontext.ContextSetAuthenticatedUser(req, &models.User{ID: "user-1", Role: repository.RoleUser})

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rr.Code)
}
