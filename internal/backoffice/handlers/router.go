package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	msgInvalidCSRF = "Invalid security token."
	msgForbidden   = "You do not have permission to access this section."
)

// NewRouter registers the dashboard routes and middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(h.sessions.Middleware)

	r.Get("/healthz", h.healthz)
	r.Get("/login", h.loginPage)
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin)
		r.Get("/", h.dashboard)
		r.Post("/logout", h.logout)

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth.RequireModule(models.ModuleOrders, h.denied))
			r.Get("/", h.ordersPage)
			r.Post("/", h.ordersAction)
		})
		r.Route("/warehouse", func(r chi.Router) {
			r.Use(auth.RequireModule(models.ModuleWarehouse, h.denied))
			r.Get("/", h.warehousePage)
			r.Post("/", h.warehouseAction)
		})
		r.Route("/personnel", func(r chi.Router) {
			r.Use(auth.RequireModule(models.ModulePersonnel, h.denied))
			r.Get("/", h.personnelPage)
			r.Post("/", h.personnelAction)
		})
		r.Route("/logs", func(r chi.Router) {
			r.Use(auth.RequireModule(models.ModuleLogs, h.denied))
			r.Get("/", h.logsPage)
			r.Post("/", h.logsAction)
		})
	})

	return r
}

// accessLog logs one line per request. 5xx at Error, 4xx at Warn.
func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		switch {
		case status >= 500:
			h.logger.Error("HTTP request", fields...)
		case status >= 400:
			h.logger.Warn("HTTP request", fields...)
		default:
			h.logger.Info("HTTP request", fields...)
		}
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.svc.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.svc.Health.Ping(ctx); err != nil {
			h.logger.Error("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "unavailable")
			return
		}
	}
	_, _ = io.WriteString(w, "ok")
}

// denied sends sessions without the module back to the dashboard.
func (h *Handler) denied(w http.ResponseWriter, r *http.Request) {
	h.setFlash(w, FlashError, msgForbidden)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// messages are the user-facing texts of one POST action.
type messages struct {
	success   string
	duplicate string
	notFound  string
	failure   string
}

// finish turns the outcome of a POST action into a flash message and a
// redirect to back. Unexpected errors are logged and shown as m.failure.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, back string, err error, m messages) {
	var validation *e.ValidationError
	switch {
	case err == nil:
		h.setFlash(w, FlashSuccess, m.success)
	case errors.As(err, &validation):
		h.setFlash(w, FlashError, validation.Message)
	case errors.Is(err, e.ErrInvalidCSRF):
		h.setFlash(w, FlashError, msgInvalidCSRF)
	case errors.Is(err, e.ErrForbidden):
		h.setFlash(w, FlashError, msgForbidden)
	case errors.Is(err, e.ErrDuplicateKey) && m.duplicate != "":
		h.setFlash(w, FlashError, m.duplicate)
	case errors.Is(err, e.ErrNotFound) && m.notFound != "":
		h.setFlash(w, FlashError, m.notFound)
	default:
		h.logger.Error("Action failed",
			zap.String("path", r.URL.Path),
			zap.String("action", r.PostFormValue("action")),
			zap.Error(err),
		)
		h.setFlash(w, FlashError, m.failure)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// postSession parses the form and checks its CSRF token. On failure the
// response is already written.
func (h *Handler) postSession(w http.ResponseWriter, r *http.Request, back string) (*auth.Session, bool) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return nil, false
	}
	if err := r.ParseForm(); err != nil {
		h.finish(w, r, back, e.Invalid("Malformed form submission."), messages{})
		return nil, false
	}
	if err := session.VerifyCSRF(r.PostFormValue("csrf_token")); err != nil {
		h.logger.Warn("Rejected form with invalid CSRF token",
			zap.String("path", r.URL.Path),
			zap.Uint("user_id", session.UserID),
		)
		h.finish(w, r, back, err, messages{})
		return nil, false
	}
	return session, true
}

var errUnknownAction = e.Invalid("Unknown action.")
