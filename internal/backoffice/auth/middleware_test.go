package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManagerMiddleware(t *testing.T) {
	manager := NewManager(testSecret, time.Hour, false, nil, zaptest.NewLogger(t))

	issued := httptest.NewRecorder()
	require.NoError(t, manager.Issue(issued, staffSession()))
	cookies := issued.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	tests := []struct {
		name        string
		cookie      *http.Cookie
		wantSession bool
		wantCleared bool
	}{
		{name: "valid cookie", cookie: cookies[0], wantSession: true},
		{name: "no cookie"},
		{name: "invalid cookie", cookie: &http.Cookie{Name: CookieName, Value: "junk"}, wantCleared: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Session
			handler := manager.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got, _ = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.wantSession {
				require.NotNil(t, got)
				assert.Equal(t, "anna", got.Username)
			} else {
				assert.Nil(t, got)
			}
			if tt.wantCleared {
				cleared := rec.Result().Cookies()
				require.Len(t, cleared, 1)
				assert.Equal(t, -1, cleared[0].MaxAge)
			}
		})
	}
}

type userSource func(ctx context.Context, id uint) (*models.User, error)

func (f userSource) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return f(ctx, id)
}

func TestManagerMiddlewareReloadsUser(t *testing.T) {
	issued := httptest.NewRecorder()
	require.NoError(t, NewManager(testSecret, time.Hour, false, nil, zaptest.NewLogger(t)).Issue(issued, staffSession()))
	cookie := issued.Result().Cookies()[0]

	tests := []struct {
		name        string
		user        *models.User
		err         error
		wantCode    int
		wantModules []models.Module
		wantSession bool
		wantCleared bool
	}{
		{
			name: "modules follow the stored permissions",
			user: &models.User{ID: 5, Username: "anna", Role: models.RoleStaff, IsActive: true,
				Permissions: []models.UserPermission{{Module: models.ModuleLogs}}},
			wantCode:    http.StatusNoContent,
			wantSession: true,
			wantModules: []models.Module{models.ModuleLogs},
		},
		{
			name:        "deactivated user",
			user:        &models.User{ID: 5, Username: "anna", Role: models.RoleStaff},
			wantCode:    http.StatusNoContent,
			wantCleared: true,
		},
		{
			name:        "deleted user",
			err:         e.ErrNotFound,
			wantCode:    http.StatusNoContent,
			wantCleared: true,
		},
		{
			name:     "storage failure",
			err:      errors.New("connection refused"),
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewManager(testSecret, time.Hour, false, userSource(func(_ context.Context, id uint) (*models.User, error) {
				assert.Equal(t, uint(5), id)
				return tt.user, tt.err
			}), zaptest.NewLogger(t))

			var got *Session
			handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = FromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantSession {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantModules, got.Modules)
				assert.Equal(t, "csrf-token", got.CSRFToken)
			} else {
				assert.Nil(t, got)
			}
			if tt.wantCleared {
				cleared := rec.Result().Cookies()
				require.Len(t, cleared, 1)
				assert.Equal(t, -1, cleared[0].MaxAge)
			}
		})
	}
}

func TestRequireLogin(t *testing.T) {
	handler := RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	s := staffSession()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithSession(req.Context(), &s)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireModule(t *testing.T) {
	denied := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}
	handler := RequireModule(models.ModuleLogs, denied)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		session  *Session
		wantCode int
	}{
		{name: "anonymous", wantCode: http.StatusForbidden},
		{name: "staff without module", session: &Session{UserID: 2, Role: models.RoleStaff, Modules: []models.Module{models.ModuleOrders}}, wantCode: http.StatusForbidden},
		{name: "staff with module", session: &Session{UserID: 2, Role: models.RoleStaff, Modules: []models.Module{models.ModuleLogs}}, wantCode: http.StatusNoContent},
		{name: "admin", session: &Session{UserID: 1, Role: models.RoleAdmin}, wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/logs", nil)
			if tt.session != nil {
				req = req.WithContext(WithSession(req.Context(), tt.session))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
