package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bloomedge/storefront/internal/cart"
	"github.com/bloomedge/storefront/internal/catalog"
	"github.com/bloomedge/storefront/internal/config"
	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/notify"
	"github.com/bloomedge/storefront/internal/order"
	"github.com/bloomedge/storefront/internal/pricing"
)

type App struct {
	Cfg     config.Config
	Catalog *catalog.Store
	Ledger  *cart.Ledger
	Orders  *order.Service
	Disp    *notify.Dispatcher
	started time.Time
}

func NewApp(cfg config.Config, cat *catalog.Store, ledger *cart.Ledger, orders *order.Service, disp *notify.Dispatcher) *App {
	return &App{Cfg: cfg, Catalog: cat, Ledger: ledger, Orders: orders, Disp: disp, started: time.Now()}
}

// cartView is the cart payload returned by every cart mutation.
type cartView struct {
	Items     []model.CartLine `json:"items"`
	Subtotal  float64          `json:"subtotal"`
	ItemCount int              `json:"item_count"`
}

func (a *App) cartView() cartView {
	lines := a.Ledger.Lines()
	if lines == nil {
		lines = []model.CartLine{}
	}
	return cartView{Items: lines, Subtotal: a.Ledger.Total(), ItemCount: a.Ledger.ItemCount()}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	f := catalog.ListFilter{
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
	}
	switch f.Sort {
	case "", "name", "price_asc", "price_desc":
	default:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "sort must be one of name, price_asc, price_desc")
		return
	}
	WriteJSON(w, http.StatusOK, a.Catalog.List(f))
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/products/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	p, ok := a.Catalog.Get(id)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (a *App) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	WriteJSON(w, http.StatusOK, a.Catalog.Categories())
}

func (a *App) cartHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, a.cartView())
	case http.MethodDelete:
		a.Ledger.Clear()
		WriteJSON(w, http.StatusOK, a.cartView())
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (a *App) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}
	p, ok := a.Catalog.Get(req.ProductID)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "unknown product")
		return
	}
	if p.Stock != nil && *p.Stock == 0 {
		WriteJSONError(w, http.StatusConflict, "out_of_stock", "")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be >= 1")
		return
	}
	a.Ledger.Add(p, req.Quantity)
	WriteJSON(w, http.StatusOK, a.cartView())
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (a *App) cartItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/cart/items/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req updateItemRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		a.Ledger.UpdateQuantity(id, req.Quantity)
		WriteJSON(w, http.StatusOK, a.cartView())
	case http.MethodDelete:
		a.Ledger.Remove(id)
		WriteJSON(w, http.StatusOK, a.cartView())
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

type checkoutRequest struct {
	Customer model.CustomerInfo `json:"customer"`
}

type checkoutResponse struct {
	Order  model.Order    `json:"order"`
	Totals pricing.Totals `json:"totals"`
}

func (a *App) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Customer.Email == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "customer.email is required")
		return
	}
	o, err := a.Orders.Place(a.Ledger, req.Customer)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			WriteJSONError(w, http.StatusConflict, "empty_cart", "add items before checking out")
			return
		}
		WriteJSONError(w, http.StatusInternalServerError, "order_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, checkoutResponse{
		Order:  o,
		Totals: pricing.Totals{Subtotal: o.Subtotal, Shipping: o.Shipping, Tax: o.Tax, Total: o.Total},
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	var enq, sent, failed uint64
	if a.Disp != nil {
		enq, sent, failed = a.Disp.Metrics()
	}
	stats := a.Orders.Stats()
	m := map[string]any{
		"cart_item_count":        a.Ledger.ItemCount(),
		"orders_total":           stats.TotalOrders,
		"notifications_enqueued": enq,
		"notifications_sent":     sent,
		"notifications_failed":   failed,
		"uptime_sec":             time.Since(a.started).Seconds(),
	}
	WriteJSON(w, http.StatusOK, m)
}
