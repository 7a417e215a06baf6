package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bloomedge/storefront/internal/catalog"
	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/order"
)

func (a *App) adminProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var p model.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	created, err := a.Catalog.AddProduct(p)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (a *App) adminProductHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/products/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodPut:
		var patch catalog.ProductPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		p, err := a.Catalog.UpdateProduct(id, patch)
		if errors.Is(err, catalog.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := a.Catalog.DeleteProduct(id); err != nil {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) adminCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var c model.Category
	if !decodeJSON(w, r, &c) {
		return
	}
	created, err := a.Catalog.AddCategory(c)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

func (a *App) adminCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/admin/categories/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if err := a.Catalog.DeleteCategory(id); err != nil {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) adminOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	WriteJSON(w, http.StatusOK, a.Orders.List())
}

type statusUpdateRequest struct {
	Status model.OrderStatus `json:"status"`
}

func (a *App) adminOrderHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodGet:
		o, ok := a.Orders.Get(id)
		if !ok {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		WriteJSON(w, http.StatusOK, o)
	case http.MethodPatch:
		var req statusUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		o, err := a.Orders.UpdateStatus(id, req.Status)
		if errors.Is(err, order.ErrNotFound) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, o)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) adminStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	WriteJSON(w, http.StatusOK, a.Orders.Stats())
}
