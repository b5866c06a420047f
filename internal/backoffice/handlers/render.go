package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	"github.com/gartstein/backoffice/internal/backoffice/export"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login.html",
	"dashboard.html",
	"orders.html",
	"warehouse.html",
	"personnel.html",
	"logs.html",
}

var templateFuncs = template.FuncMap{
	"money":       money,
	"date":        formatDate,
	"datetime":    formatDateTime,
	"statuses":    func() []models.OrderStatus { return models.OrderStatuses },
	"statusClass": statusClass,
	"noticeClass": noticeClass,
	"same":        same,
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// view is the data every page template receives.
type view struct {
	Title   string
	Active  string
	Session *auth.Session
	Flash   *Flash
	Query   url.Values
	Pager   *pager
	Data    interface{}
}

type pager struct {
	Number  int
	Total   int
	PrevURL string
	NextURL string
}

func newPager(r *http.Request, number, total int) *pager {
	p := &pager{Number: number, Total: total}
	if number > 1 {
		p.PrevURL = pageURL(r, number-1)
	}
	if number < total {
		p.NextURL = pageURL(r, number+1)
	}
	return p
}

// pageURL keeps the current filters and replaces the page number.
func pageURL(r *http.Request, n int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(n))
	return r.URL.Path + "?" + q.Encode()
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, v *view) {
	t, ok := h.pages[name]
	if !ok {
		h.logger.Error("Unknown page template", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	v.Session, _ = auth.FromContext(r.Context())
	v.Flash = h.popFlash(w, r)
	v.Query = r.URL.Query()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		h.logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func money(v interface{}) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(2)
	case *decimal.Decimal:
		if d == nil {
			return ""
		}
		return d.StringFixed(2)
	case decimal.NullDecimal:
		if !d.Valid {
			return "-"
		}
		return d.Decimal.StringFixed(2)
	}
	return ""
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	}
	return ""
}

func formatDateTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(export.TimestampLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDateTime(*t)
	}
	return ""
}

// same reports whether the optional id ref points at id.
func same(ref *uint, id uint) bool {
	return ref != nil && *ref == id
}

func statusClass(s models.OrderStatus) string {
	switch s {
	case models.StatusPending:
		return "warning"
	case models.StatusProcessing:
		return "info"
	case models.StatusShipped:
		return "primary"
	case models.StatusDelivered:
		return "success"
	case models.StatusCancelled:
		return "error"
	}
	return "neutral"
}

func noticeClass(t models.CommunicationType) string {
	switch t {
	case models.CommunicationUrgent:
		return "error"
	case models.CommunicationWarning:
		return "warning"
	case models.CommunicationInfo:
		return "info"
	}
	return "neutral"
}
