package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "backoffice_flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a status message shown once on the next page view.
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

func encodeFlash(f Flash) string {
	raw, _ := json.Marshal(f)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeFlash(value string) (*Flash, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, false
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil, false
	}
	return &f, true
}

func (h *Handler) setFlash(w http.ResponseWriter, kind FlashKind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encodeFlash(Flash{Kind: kind, Message: message}),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash message and clears it.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	f, ok := decodeFlash(cookie.Value)
	if !ok {
		return nil
	}
	return f
}
