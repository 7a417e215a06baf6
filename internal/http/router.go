package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", app.listProductsHandler)
	mux.HandleFunc("/products/", app.getProductHandler)
	mux.HandleFunc("/categories", app.listCategoriesHandler)
	mux.HandleFunc("/cart", app.cartHandler)
	mux.HandleFunc("/cart/items", app.addCartItemHandler)
	mux.HandleFunc("/cart/items/", app.cartItemHandler)
	mux.HandleFunc("/checkout", app.checkoutHandler)

	admin := http.NewServeMux()
	admin.HandleFunc("/admin/products", app.adminProductsHandler)
	admin.HandleFunc("/admin/products/", app.adminProductHandler)
	admin.HandleFunc("/admin/categories", app.adminCategoriesHandler)
	admin.HandleFunc("/admin/categories/", app.adminCategoryHandler)
	admin.HandleFunc("/admin/orders", app.adminOrdersHandler)
	admin.HandleFunc("/admin/orders/", app.adminOrderHandler)
	admin.HandleFunc("/admin/stats", app.adminStatsHandler)
	mux.Handle("/admin/", WithAdmin(app.Cfg.AdminToken, admin))

	mux.HandleFunc("/healthz", app.healthHandler)
	mux.HandleFunc("/debug/metrics", app.metricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}
