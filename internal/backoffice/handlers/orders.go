package handlers

import (
	"net/http"

	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

type ordersData struct {
	Result    query.Result[models.Order]
	Stats     *models.OrderStats
	Assignees []models.User
}

func (h *Handler) ordersPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := controller.OrderFilter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
	page := query.NewPage(q.Get("page"), h.opts.PageSize)

	var (
		data ordersData
		err  error
	)
	if data.Result, err = h.svc.Orders.List(r.Context(), filter, page); err != nil {
		h.fail(w, r, "orders", err)
		return
	}
	if data.Stats, err = h.svc.Orders.Stats(r.Context()); err != nil {
		h.fail(w, r, "orders", err)
		return
	}
	if data.Assignees, err = h.svc.Orders.Assignees(r.Context()); err != nil {
		h.fail(w, r, "orders", err)
		return
	}

	h.render(w, r, "orders.html", &view{
		Title:  "Orders",
		Active: "orders",
		Pager:  newPager(r, page.Number, data.Result.TotalPages()),
		Data:   data,
	})
}

func (h *Handler) ordersAction(w http.ResponseWriter, r *http.Request) {
	const back = "/orders"
	session, ok := h.postSession(w, r, back)
	if !ok {
		return
	}
	actor := session.Actor(clientIP(r))
	f := newForm(r.PostForm)
	ctx := r.Context()

	switch r.PostFormValue("action") {
	case "add_order":
		order := &models.Order{
			OrderNumber:   f.str("order_number"),
			CustomerName:  f.str("customer_name"),
			CustomerEmail: f.str("customer_email"),
			CustomerPhone: f.str("customer_phone"),
			OrderDate:     f.date("order_date", "Order date"),
			DeliveryDate:  f.optionalDate("delivery_date", "Delivery date"),
			TotalAmount:   f.decimal("total_amount", "Total amount"),
			Notes:         f.str("notes"),
		}
		err := f.err()
		if err == nil {
			_, err = h.svc.Orders.Create(ctx, actor, order)
		}
		h.finish(w, r, back, err, messages{
			success:   "Order created successfully.",
			duplicate: "Order number already exists.",
			failure:   "Error while creating the order.",
		})

	case "update_order":
		update := &models.OrderUpdate{
			ID:            f.id("order_id"),
			CustomerName:  f.str("customer_name"),
			CustomerEmail: f.str("customer_email"),
			CustomerPhone: f.str("customer_phone"),
			OrderDate:     f.date("order_date", "Order date"),
			DeliveryDate:  f.optionalDate("delivery_date", "Delivery date"),
			TotalAmount:   f.decimal("total_amount", "Total amount"),
			Notes:         f.str("notes"),
		}
		err := f.err()
		if err == nil {
			err = h.svc.Orders.Update(ctx, actor, update)
		}
		h.finish(w, r, back, err, messages{
			success:   "Order updated successfully.",
			duplicate: "Order number already exists.",
			notFound:  "Order not found.",
			failure:   "Error while updating the order.",
		})

	case "update_status":
		id := f.id("order_id")
		assignedTo := f.optionalID("assigned_to")
		err := f.err()
		if err == nil {
			err = h.svc.Orders.UpdateStatus(ctx, actor, id, models.OrderStatus(f.str("new_status")), assignedTo)
		}
		h.finish(w, r, back, err, messages{
			success:  "Order status updated successfully.",
			notFound: "Order not found.",
			failure:  "Error while updating the order status.",
		})

	case "delete_order":
		id := f.id("order_id")
		err := f.err()
		if err == nil {
			err = h.svc.Orders.Delete(ctx, actor, id)
		}
		h.finish(w, r, back, err, messages{
			success: "Order deleted successfully.",
			failure: "Error while deleting the order.",
		})

	default:
		h.finish(w, r, back, errUnknownAction, messages{})
	}
}
