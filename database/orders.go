package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopfront/model"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, reference, user_id, status, payment_method, created_at`

func InsertOrderInTx(tx *sqlx.Tx, o *model.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO orders (reference, user_id, status, payment_method, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`
	err := tx.Get(&o.ID, tx.Rebind(q), o.Reference, o.UserID, o.Status, o.PaymentMethod, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("InsertOrderInTx (user: %d) failed: %w", o.UserID, err)
	}
	return nil
}

// InsertOrderProductsInTx は明細行をまとめて登録します。各行の ID は書き戻されます。
func InsertOrderProductsInTx(tx *sqlx.Tx, orderID int64, items []model.OrderProduct) error {
	const q = `
		INSERT INTO order_products (order_id, product_id, quantity, unit_price)
		VALUES (?, ?, ?, ?)
		RETURNING id`
	query := tx.Rebind(q)

	for i := range items {
		items[i].OrderID = orderID
		if err := tx.Get(&items[i].ID, query, orderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice); err != nil {
			return fmt.Errorf("failed to insert line item for order %d product %d: %w", orderID, items[i].ProductID, err)
		}
	}
	return nil
}

func GetOrderByID(dbtx DBTX, id int64) (*model.Order, error) {
	var o model.Order
	err := dbtx.Get(&o, dbtx.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	items, err := GetOrderProductsByOrderIDs(dbtx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o.WithTotal(), nil
}

func GetOrdersByUser(dbtx DBTX, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := dbtx.Select(&orders, dbtx.Rebind(`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %d: %w", userID, err)
	}
	return attachOrderProducts(dbtx, orders)
}

func GetAllOrders(dbtx DBTX) ([]model.Order, error) {
	var orders []model.Order
	err := dbtx.Select(&orders, `SELECT `+orderColumns+` FROM orders ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return attachOrderProducts(dbtx, orders)
}

func attachOrderProducts(dbtx DBTX, orders []model.Order) ([]model.Order, error) {
	if len(orders) == 0 {
		return []model.Order{}, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemsByOrder, err := GetOrderProductsByOrderIDs(dbtx, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		orders[i].WithTotal()
	}
	return orders, nil
}

// GetOrderProductsByOrderIDs は明細行を商品名付きで取得し、注文 ID ごとにまとめます。
func GetOrderProductsByOrderIDs(dbtx DBTX, orderIDs []int64) (map[int64][]model.OrderProduct, error) {
	result := make(map[int64][]model.OrderProduct)
	if len(orderIDs) == 0 {
		return result, nil
	}

	q, args, err := sqlx.In(`
		SELECT
			op.id, op.order_id, op.product_id, p.name AS product_name,
			op.quantity, op.unit_price
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id IN (?)
		ORDER BY op.order_id, op.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build line item query: %w", err)
	}

	var items []model.OrderProduct
	if err := dbtx.Select(&items, dbtx.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	for _, item := range items {
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	return result, nil
}

func UpdateOrderStatusInTx(tx *sqlx.Tx, orderID int64, status string) error {
	return execOneRow(tx, `UPDATE orders SET status = ? WHERE id = ?`, fmt.Sprintf("order %d", orderID), status, orderID)
}

func UpdateOrderProductQuantityInTx(tx *sqlx.Tx, itemID int64, quantity int) error {
	return execOneRow(tx, `UPDATE order_products SET quantity = ? WHERE id = ?`, fmt.Sprintf("line item %d", itemID), quantity, itemID)
}
