package orders

import (
	"net/http"
	"strconv"
	"strings"

	"shopfront/model"
	"shopfront/session"
	"shopfront/webutil"

	"github.com/jmoiron/sqlx"
)

// parseCreateForm は product_ids / quantities の並列リストを読み取ります。
// 数量が空欄の組はスキップします (未選択の商品)。
func parseCreateForm(r *http.Request) (CreateInput, error) {
	if err := r.ParseForm(); err != nil {
		return CreateInput{}, model.NewValidationError("form", "could not parse form: %v", err)
	}
	ids := r.PostForm["product_ids"]
	qtys := r.PostForm["quantities"]
	if len(ids) != len(qtys) {
		return CreateInput{}, model.NewValidationError("quantities", "got %d quantities for %d products", len(qtys), len(ids))
	}

	in := CreateInput{PaymentMethod: r.PostForm.Get("payment_method")}
	for i := range ids {
		qtyStr := strings.TrimSpace(qtys[i])
		if qtyStr == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(ids[i]), 10, 64)
		if err != nil {
			return CreateInput{}, model.NewValidationError("product_ids", "%q is not a product id", ids[i])
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return CreateInput{}, model.NewValidationError("quantities", "%q is not a quantity", qtys[i])
		}
		in.ProductIDs = append(in.ProductIDs, id)
		in.Quantities = append(in.Quantities, qty)
	}
	return in, nil
}

// parseQuantityForm は quantity_<product_id> フィールドを集めます。空欄は未送信として扱います。
func parseQuantityForm(r *http.Request) (map[int64]int, error) {
	if err := r.ParseForm(); err != nil {
		return nil, model.NewValidationError("form", "could not parse form: %v", err)
	}
	quantities := make(map[int64]int)
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, "quantity_") || len(values) == 0 {
			continue
		}
		productID, err := strconv.ParseInt(strings.TrimPrefix(key, "quantity_"), 10, 64)
		if err != nil {
			return nil, model.NewValidationError(key, "unknown field")
		}
		v := strings.TrimSpace(values[0])
		if v == "" {
			continue
		}
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, model.NewValidationError(key, "%q is not a quantity", v)
		}
		quantities[productID] = qty
	}
	return quantities, nil
}

func orderIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("id", "invalid order id")
	}
	return id, nil
}

// CreateOrderHandler POST /order
func CreateOrderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())

		in, err := parseCreateForm(r)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}

		order, err := Create(db, user.ID, in)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusCreated, order)
	}
}

// MyOrdersHandler GET /my_orders
func MyOrdersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())
		orders, err := ListForUser(db, user.ID)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, orders)
	}
}

// AdminOrdersHandler GET /admin_orders
func AdminOrdersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())
		orders, err := ListAll(db, user.Role)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler POST /update_order_status/{id}
func UpdateOrderStatusHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())
		orderID, err := orderIDFromPath(r)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}

		order, err := SetStatus(db, orderID, r.FormValue("status"), user.Role)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, order)
	}
}

// GetOrderItemsHandler GET /edit_order_items/{id}
func GetOrderItemsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())
		orderID, err := orderIDFromPath(r)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}

		order, err := GetForOwner(db, orderID, user.ID)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, order)
	}
}

// EditOrderItemsHandler POST /edit_order_items/{id}
func EditOrderItemsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())
		orderID, err := orderIDFromPath(r)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		quantities, err := parseQuantityForm(r)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}

		order, err := EditQuantities(db, orderID, user.ID, quantities)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, order)
	}
}
