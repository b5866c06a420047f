package handlers

import (
	"net/http"

	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

type personnelData struct {
	Result  query.Result[models.Employee]
	Stats   *models.PersonnelStats
	Options *controller.PersonnelOptions
}

func (h *Handler) personnelPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := controller.PersonnelFilter{
		Search:     q.Get("search"),
		Department: q.Get("department"),
		Position:   q.Get("position"),
		ActiveOnly: q.Get("active_only"),
	}
	page := query.NewPage(q.Get("page"), h.opts.PageSize)

	var (
		data personnelData
		err  error
	)
	if data.Result, err = h.svc.Personnel.List(r.Context(), filter, page); err != nil {
		h.fail(w, r, "personnel", err)
		return
	}
	if data.Stats, err = h.svc.Personnel.Stats(r.Context()); err != nil {
		h.fail(w, r, "personnel", err)
		return
	}
	if data.Options, err = h.svc.Personnel.Options(r.Context()); err != nil {
		h.fail(w, r, "personnel", err)
		return
	}

	h.render(w, r, "personnel.html", &view{
		Title:  "Personnel",
		Active: "personnel",
		Pager:  newPager(r, page.Number, data.Result.TotalPages()),
		Data:   data,
	})
}

func (h *Handler) personnelAction(w http.ResponseWriter, r *http.Request) {
	const back = "/personnel"
	session, ok := h.postSession(w, r, back)
	if !ok {
		return
	}
	actor := session.Actor(clientIP(r))
	f := newForm(r.PostForm)
	ctx := r.Context()

	switch r.PostFormValue("action") {
	case "add_employee":
		employee := &models.Employee{
			EmployeeCode: f.str("employee_code"),
			FirstName:    f.str("first_name"),
			LastName:     f.str("last_name"),
			Email:        f.str("email"),
			Phone:        f.str("phone"),
			Position:     f.str("position"),
			Department:   f.str("department"),
			HireDate:     f.optionalDate("hire_date", "Hire date"),
			Salary:       f.optionalDecimal("salary", "Salary"),
			Notes:        f.str("notes"),
			UserID:       f.optionalID("user_id"),
		}
		err := f.err()
		if err == nil {
			_, err = h.svc.Personnel.Create(ctx, actor, employee)
		}
		h.finish(w, r, back, err, messages{
			success:   "Employee added successfully.",
			duplicate: "Employee code or email already exists.",
			failure:   "Error while adding the employee.",
		})

	case "update_employee":
		update := &models.EmployeeUpdate{
			ID:         f.id("employee_id"),
			FirstName:  f.str("first_name"),
			LastName:   f.str("last_name"),
			Email:      f.str("email"),
			Phone:      f.str("phone"),
			Position:   f.str("position"),
			Department: f.str("department"),
			Salary:     f.optionalDecimal("salary", "Salary"),
			Notes:      f.str("notes"),
			IsActive:   f.checked("is_active"),
		}
		err := f.err()
		if err == nil {
			err = h.svc.Personnel.Update(ctx, actor, update)
		}
		h.finish(w, r, back, err, messages{
			success:   "Employee updated successfully.",
			duplicate: "Employee code or email already exists.",
			notFound:  "Employee not found.",
			failure:   "Error while updating the employee.",
		})

	case "delete_employee":
		id := f.id("employee_id")
		err := f.err()
		if err == nil {
			err = h.svc.Personnel.Delete(ctx, actor, id)
		}
		h.finish(w, r, back, err, messages{
			success: "Employee deleted successfully.",
			failure: "Error while deleting the employee.",
		})

	default:
		h.finish(w, r, back, errUnknownAction, messages{})
	}
}
