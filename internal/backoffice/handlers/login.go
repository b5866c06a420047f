package handlers

import (
	"errors"
	"net/http"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"go.uber.org/zap"
)

const msgBadCredentials = "Invalid username or password."

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", &view{Title: "Login"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.setFlash(w, FlashError, msgBadCredentials)
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	user, err := h.svc.Users.Authenticate(r.Context(),
		r.PostFormValue("username"), r.PostFormValue("password"), clientIP(r))
	if err != nil {
		if !errors.Is(err, e.ErrUnauthenticated) {
			h.logger.Error("Login failed", zap.Error(err))
		}
		h.setFlash(w, FlashError, msgBadCredentials)
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	if err := h.sessions.Issue(w, auth.NewSession(user)); err != nil {
		h.logger.Error("Failed to issue session", zap.Error(err), zap.Uint("user_id", user.ID))
		h.setFlash(w, FlashError, "Login is temporarily unavailable.")
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.postSession(w, r, "/")
	if !ok {
		return
	}
	h.svc.Users.Logout(r.Context(), session.Actor(clientIP(r)))
	h.sessions.Clear(w)
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	overview, err := h.svc.Dashboard.Overview(r.Context(), session)
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}
	h.render(w, r, "dashboard.html", &view{Title: "Dashboard", Active: "dashboard", Data: overview})
}

// fail answers a GET whose data could not be loaded.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, page string, err error) {
	h.logger.Error("Failed to load page", zap.String("page", page), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
