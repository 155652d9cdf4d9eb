package main

import (
	"log"
	"net/http"
	"time"

	"shopfront/account"
	"shopfront/loader"
	"shopfront/orders"
	"shopfront/product"
	"shopfront/session"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

func SetupRoutes(mux *http.ServeMux, db *sqlx.DB, sm *scs.SessionManager) {
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return session.RequireAuth(sm, db, h)
	}

	mux.HandleFunc("POST /register", account.RegisterHandler(db))
	mux.HandleFunc("POST /login", account.LoginHandler(db, sm))
	mux.HandleFunc("POST /logout", account.LogoutHandler(sm))
	mux.HandleFunc("GET /me", auth(account.MeHandler()))
	mux.HandleFunc("POST /password", auth(account.ChangePasswordHandler(db)))

	mux.HandleFunc("GET /products", auth(product.ListProductsHandler(db)))
	mux.HandleFunc("POST /products", auth(product.CreateProductHandler(db)))
	mux.HandleFunc("POST /products/import", auth(loader.ImportProductsHandler(db)))

	mux.HandleFunc("POST /order", auth(orders.CreateOrderHandler(db)))
	mux.HandleFunc("GET /my_orders", auth(orders.MyOrdersHandler(db)))
	mux.HandleFunc("GET /admin_orders", auth(orders.AdminOrdersHandler(db)))
	mux.HandleFunc("POST /update_order_status/{id}", auth(orders.UpdateOrderStatusHandler(db)))
	mux.HandleFunc("GET /edit_order_items/{id}", auth(orders.GetOrderItemsHandler(db)))
	mux.HandleFunc("POST /edit_order_items/{id}", auth(orders.EditOrderItemsHandler(db)))
}

// newHandler はルーティングにセッションとリクエストログを被せます。
func newHandler(db *sqlx.DB, sm *scs.SessionManager) http.Handler {
	mux := http.NewServeMux()
	SetupRoutes(mux, db, sm)
	return logRequest(sm.LoadAndSave(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
