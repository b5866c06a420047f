package handlers

import (
	"fmt"
	"net/http"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	"github.com/gartstein/backoffice/internal/backoffice/controller"
	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/export"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
	"go.uber.org/zap"
)

type logsData struct {
	Result        query.Result[models.LogEntry]
	Summary       *controller.LogSummary
	RetentionDays int
}

func (h *Handler) logsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := controller.LogFilter{
		Search:   q.Get("search"),
		UserID:   q.Get("user"),
		Action:   q.Get("action"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
	page := query.NewPage(q.Get("page"), h.opts.LogPageSize)

	data := logsData{RetentionDays: h.opts.LogRetentionDays}
	var err error
	if data.Result, err = h.svc.Logs.List(r.Context(), filter, page); err != nil {
		h.fail(w, r, "logs", err)
		return
	}
	if data.Summary, err = h.svc.Logs.Summary(r.Context()); err != nil {
		h.fail(w, r, "logs", err)
		return
	}

	h.render(w, r, "logs.html", &view{
		Title:  "Activity Log",
		Active: "logs",
		Pager:  newPager(r, page.Number, data.Result.TotalPages()),
		Data:   data,
	})
}

func (h *Handler) logsAction(w http.ResponseWriter, r *http.Request) {
	const back = "/logs"
	session, ok := h.postSession(w, r, back)
	if !ok {
		return
	}
	f := newForm(r.PostForm)

	switch r.PostFormValue("action") {
	case "clear_old_logs":
		days := f.int("days_to_keep", "Days to keep")
		if err := f.err(); err != nil {
			h.finish(w, r, back, err, messages{})
			return
		}
		h.clearOldLogs(w, r, session, days)

	case "export_logs":
		h.exportLogs(w, r, controller.ExportRequest{
			DateFrom: f.str("export_date_from"),
			DateTo:   f.str("export_date_to"),
			Format:   export.ParseFormat(f.str("format")),
		})

	default:
		h.finish(w, r, back, errUnknownAction, messages{})
	}
}

func (h *Handler) clearOldLogs(w http.ResponseWriter, r *http.Request, session *auth.Session, days int) {
	if !session.IsAdmin() {
		h.finish(w, r, "/logs", e.ErrForbidden, messages{})
		return
	}
	if days < 1 {
		days = h.opts.LogRetentionDays
	}
	removed, err := h.svc.Logs.Purge(r.Context(), session.Actor(clientIP(r)), days)
	h.finish(w, r, "/logs", err, messages{
		success: fmt.Sprintf("Deleted %d logs older than %d days.", removed, days),
		failure: "Error while clearing the logs.",
	})
}

// exportLogs streams the export as an attachment. Headers are committed by
// the first write, so a request rejected before any output still gets a
// flash message and a redirect.
func (h *Handler) exportLogs(w http.ResponseWriter, r *http.Request, req controller.ExportRequest) {
	out := &attachment{
		w:           w,
		filename:    req.Filename(),
		contentType: req.Format.ContentType(),
	}
	err := h.svc.Logs.Export(r.Context(), req, out)
	if err == nil {
		if !out.started {
			out.start()
		}
		return
	}
	if out.started {
		h.logger.Error("Log export aborted", zap.Error(err), zap.String("file", out.filename))
		return
	}
	h.finish(w, r, "/logs", err, messages{failure: "Error while exporting the logs."})
}

type attachment struct {
	w           http.ResponseWriter
	filename    string
	contentType string
	started     bool
}

func (a *attachment) start() {
	a.started = true
	header := a.w.Header()
	header.Set("Content-Type", a.contentType)
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.filename))
	a.w.WriteHeader(http.StatusOK)
}

func (a *attachment) Write(p []byte) (int, error) {
	if !a.started {
		a.start()
	}
	return a.w.Write(p)
}
