package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bloomedge/storefront/internal/cart"
	"github.com/bloomedge/storefront/internal/catalog"
	"github.com/bloomedge/storefront/internal/config"
	"github.com/bloomedge/storefront/internal/model"
	"github.com/bloomedge/storefront/internal/order"
	"github.com/bloomedge/storefront/internal/storage"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func setupApp(t *testing.T) (*App, http.Handler) {
	t.Helper()
	cat := catalog.New()
	seed := []model.Product{
		{ID: "p-oats", Name: "Rolled Oats", Category: "Organic", Price: 15, SalePrice: f64(12.5), TaxPercentage: f64(5)},
		{ID: "p-milk", Name: "Fresh Milk", Category: "Dairy", Price: 3.5, ShippingCost: f64(0.5)},
		{ID: "p-gone", Name: "Sold Out", Category: "Dairy", Price: 2, Stock: i64(0)},
	}
	for _, p := range seed {
		if _, err := cat.AddProduct(p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	cfg := config.Config{AdminToken: "s3cret"}
	ledger := cart.New(storage.NewMemory(), "cart")
	orders := order.NewService(nil)
	app := NewApp(cfg, cat, ledger, orders, nil)
	return app, NewRouter(app)
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, r)
	return rr
}

func decodeCart(t *testing.T, rr *httptest.ResponseRecorder) cartView {
	t.Helper()
	var v cartView
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode cart view: %v", err)
	}
	return v
}

func TestListProducts(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var ps []model.Product
	if err := json.Unmarshal(rr.Body.Bytes(), &ps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ps) != 3 {
		t.Fatalf("expected 3 products, got %d", len(ps))
	}
}

func TestListProductsFiltered(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products?category=Dairy&sort=price_asc", "", nil)
	var ps []model.Product
	if err := json.Unmarshal(rr.Body.Bytes(), &ps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ps) != 2 || ps[0].ID != "p-gone" {
		t.Fatalf("unexpected filtered list: %+v", ps)
	}
}

func TestListProductsBadSort(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products?sort=rating", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetProduct(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/products/p-oats", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodGet, "/products/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCartAddAndView(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-oats","quantity":2}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	v := decodeCart(t, rr)
	if v.ItemCount != 2 {
		t.Fatalf("expected 2 units, got %d", v.ItemCount)
	}
	if v.Subtotal != 25 {
		t.Fatalf("expected sale-priced subtotal 25, got %v", v.Subtotal)
	}
	rr = doJSON(t, mux, http.MethodGet, "/cart", "", nil)
	v = decodeCart(t, rr)
	if len(v.Items) != 1 || v.Items[0].ID != "p-oats" {
		t.Fatalf("unexpected cart: %+v", v)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"nope"}`, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCartAddOutOfStock(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-gone"}`, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCartUpdateAndRemove(t *testing.T) {
	_, mux := setupApp(t)
	doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-oats","quantity":2}`, nil)
	rr := doJSON(t, mux, http.MethodPut, "/cart/items/p-oats", `{"quantity":5}`, nil)
	v := decodeCart(t, rr)
	if v.ItemCount != 5 {
		t.Fatalf("expected 5 units after update, got %d", v.ItemCount)
	}
	rr = doJSON(t, mux, http.MethodPut, "/cart/items/p-oats", `{"quantity":0}`, nil)
	v = decodeCart(t, rr)
	if len(v.Items) != 0 {
		t.Fatalf("quantity 0 must remove the line")
	}
	rr = doJSON(t, mux, http.MethodDelete, "/cart/items/p-oats", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("removing an absent line must not error, got %d", rr.Code)
	}
}

func TestCartClear(t *testing.T) {
	_, mux := setupApp(t)
	doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-oats"}`, nil)
	rr := doJSON(t, mux, http.MethodDelete, "/cart", "", nil)
	v := decodeCart(t, rr)
	if v.ItemCount != 0 || v.Subtotal != 0 {
		t.Fatalf("expected empty cart, got %+v", v)
	}
}

func TestCheckoutFlow(t *testing.T) {
	app, mux := setupApp(t)
	doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-milk","quantity":2}`, nil)
	rr := doJSON(t, mux, http.MethodPost, "/checkout", `{"customer":{"email":"a@example.com"}}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp checkoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.Subtotal != 7 || resp.Totals.Shipping != 1 || resp.Totals.Total != 8 {
		t.Fatalf("unexpected totals: %+v", resp.Totals)
	}
	if app.Ledger.ItemCount() != 0 {
		t.Fatalf("cart must be cleared after checkout")
	}
}

func TestCheckoutEmptyCartLeavesCartUntouched(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodPost, "/checkout", `{"customer":{"email":"a@example.com"}}`, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCheckoutRequiresEmail(t *testing.T) {
	_, mux := setupApp(t)
	doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-milk"}`, nil)
	rr := doJSON(t, mux, http.MethodPost, "/checkout", `{"customer":{}}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodGet, "/cart", "", nil)
	if v := decodeCart(t, rr); v.ItemCount != 1 {
		t.Fatalf("failed checkout must leave the cart intact")
	}
}

func TestAdminRequiresToken(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/admin/orders", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodGet, "/admin/orders", "", map[string]string{"Authorization": "Bearer wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodGet, "/admin/orders", "", map[string]string{"Authorization": "Bearer s3cret"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}

func TestAdminDisabledWithoutToken(t *testing.T) {
	app, _ := setupApp(t)
	app.Cfg.AdminToken = ""
	mux := NewRouter(app)
	rr := doJSON(t, mux, http.MethodGet, "/admin/orders", "", map[string]string{"Authorization": "Bearer anything"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when admin is disabled, got %d", rr.Code)
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	_, mux := setupApp(t)
	auth := map[string]string{"Authorization": "Bearer s3cret"}
	rr := doJSON(t, mux, http.MethodPost, "/admin/products", `{"name":"Eggs","category":"Dairy","price":4.1}`, auth)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var p model.Product
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rr = doJSON(t, mux, http.MethodPut, "/admin/products/"+p.ID, `{"salePrice":3.5}`, auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, mux, http.MethodDelete, "/admin/products/"+p.ID, "", auth)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	rr = doJSON(t, mux, http.MethodGet, "/products/"+p.ID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("deleted product still served: %d", rr.Code)
	}
}

func TestAdminOrderStatusUpdate(t *testing.T) {
	_, mux := setupApp(t)
	auth := map[string]string{"Authorization": "Bearer s3cret"}
	doJSON(t, mux, http.MethodPost, "/cart/items", `{"product_id":"p-milk"}`, nil)
	rr := doJSON(t, mux, http.MethodPost, "/checkout", `{"customer":{"email":"a@example.com"}}`, nil)
	var resp checkoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rr = doJSON(t, mux, http.MethodPatch, "/admin/orders/"+resp.Order.ID, `{"status":"shipped"}`, auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var o model.Order
	if err := json.Unmarshal(rr.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.Status != model.StatusShipped {
		t.Fatalf("status not updated: %+v", o)
	}
	rr = doJSON(t, mux, http.MethodPatch, "/admin/orders/"+resp.Order.ID, `{"status":"levitating"}`, auth)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rr.Code)
	}
}

func TestOpenAPIServed(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/openapi.yaml", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("openapi:")) {
		t.Fatalf("expected openapi content")
	}
}

func TestDocsServed(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/docs", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "swagger-ui") {
		t.Fatalf("expected swagger-ui in docs body")
	}
}

func TestHealthzOK(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodGet, "/healthz", "", map[string]string{"X-Request-Id": "abc-123"})
	if got := rr.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	rr = doJSON(t, mux, http.MethodGet, "/healthz", "", nil)
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id generated")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := setupApp(t)
	rr := doJSON(t, mux, http.MethodDelete, "/products", "", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	_, mux := setupApp(t)
	r := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader("product_id=p-oats"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, r)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}
}
