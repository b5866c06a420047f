package handlers

import (
	"net/http"

	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/gartstein/backoffice/internal/backoffice/query"
)

type warehouseData struct {
	Result     query.Result[models.WarehouseItem]
	Stats      *models.WarehouseStats
	Categories []string
	// Movements holds the latest ledger rows of the item named by ?item=.
	Movements []models.WarehouseMovement
	Item      uint
}

func (h *Handler) warehousePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := controller.WarehouseFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		LowStock: q.Get("low_stock"),
	}
	page := query.NewPage(q.Get("page"), h.opts.PageSize)

	var (
		data warehouseData
		err  error
	)
	if data.Result, err = h.svc.Warehouse.List(r.Context(), filter, page); err != nil {
		h.fail(w, r, "warehouse", err)
		return
	}
	if data.Stats, err = h.svc.Warehouse.Stats(r.Context()); err != nil {
		h.fail(w, r, "warehouse", err)
		return
	}
	if data.Categories, err = h.svc.Warehouse.Categories(r.Context()); err != nil {
		h.fail(w, r, "warehouse", err)
		return
	}
	if item := newForm(q).optionalID("item"); item != nil {
		data.Item = *item
		if data.Movements, err = h.svc.Warehouse.Movements(r.Context(), *item, movementsShown); err != nil {
			h.fail(w, r, "warehouse", err)
			return
		}
	}

	h.render(w, r, "warehouse.html", &view{
		Title:  "Warehouse",
		Active: "warehouse",
		Pager:  newPager(r, page.Number, data.Result.TotalPages()),
		Data:   data,
	})
}

func (h *Handler) warehouseAction(w http.ResponseWriter, r *http.Request) {
	const back = "/warehouse"
	session, ok := h.postSession(w, r, back)
	if !ok {
		return
	}
	actor := session.Actor(clientIP(r))
	f := newForm(r.PostForm)
	ctx := r.Context()

	switch r.PostFormValue("action") {
	case "add_product":
		item := &models.WarehouseItem{
			ProductCode: f.str("product_code"),
			ProductName: f.str("product_name"),
			Description: f.str("description"),
			Quantity:    f.int("quantity", "Quantity"),
			MinQuantity: f.int("min_quantity", "Minimum quantity"),
			UnitPrice:   f.decimal("unit_price", "Unit price"),
			Category:    f.str("category"),
			Location:    f.str("location"),
			Supplier:    f.str("supplier"),
		}
		err := f.err()
		if err == nil {
			_, err = h.svc.Warehouse.Create(ctx, actor, item)
		}
		h.finish(w, r, back, err, messages{
			success:   "Product added successfully.",
			duplicate: "Product code already exists.",
			failure:   "Error while adding the product.",
		})

	case "update_product":
		update := &models.WarehouseItemUpdate{
			ID:          f.id("product_id"),
			ProductName: f.str("product_name"),
			Description: f.str("description"),
			MinQuantity: f.int("min_quantity", "Minimum quantity"),
			UnitPrice:   f.decimal("unit_price", "Unit price"),
			Category:    f.str("category"),
			Location:    f.str("location"),
			Supplier:    f.str("supplier"),
		}
		err := f.err()
		if err == nil {
			err = h.svc.Warehouse.Update(ctx, actor, update)
		}
		h.finish(w, r, back, err, messages{
			success:  "Product updated successfully.",
			notFound: "Product not found.",
			failure:  "Error while updating the product.",
		})

	case "update_quantity":
		id := f.id("product_id")
		quantity := f.int("new_quantity", "New quantity")
		err := f.err()
		if err == nil {
			_, err = h.svc.Warehouse.UpdateQuantity(ctx, actor, id, quantity, f.str("reason"))
		}
		h.finish(w, r, back, err, messages{
			success:  "Quantity updated successfully.",
			notFound: "Product not found.",
			failure:  "Error while updating the quantity.",
		})

	case "delete_product":
		id := f.id("product_id")
		err := f.err()
		if err == nil {
			err = h.svc.Warehouse.Delete(ctx, actor, id)
		}
		h.finish(w, r, back, err, messages{
			success: "Product deleted successfully.",
			failure: "Error while deleting the product.",
		})

	default:
		h.finish(w, r, back, errUnknownAction, messages{})
	}
}
