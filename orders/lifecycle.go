// Package orders は注文のライフサイクルを扱います。
// 注文作成、管理者によるステータス変更、注文者による数量変更、一覧取得。
// 更新系はすべて1トランザクションで実行します。
package orders

import (
	"fmt"
	"log"
	"strings"

	"shopfront/access"
	"shopfront/database"
	"shopfront/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CreateInput struct {
	ProductIDs    []int64 `form:"product_ids" validate:"min=1,dive,gt=0"`
	Quantities    []int   `form:"quantities" validate:"min=1,eqfield=ProductIDs,dive,min=1,max=1000000"`
	PaymentMethod string  `form:"payment_method" validate:"max=50"`
}

// Create は userID の注文を作成します。ヘッダと明細は1トランザクションで登録し、
// 各明細には注文時点の商品価格を記録します。
func Create(db *sqlx.DB, userID int64, in CreateInput) (*model.Order, error) {
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if err := model.ValidateStruct(in); err != nil {
		return nil, err
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.DefaultPaymentMethod
	}

	order := &model.Order{
		Reference:     uuid.NewString(),
		UserID:        userID,
		Status:        model.StatusOrderPlaced,
		PaymentMethod: paymentMethod,
	}

	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		if _, err := database.GetUserByID(tx, userID); err != nil {
			return err
		}

		products, err := database.GetProductsByIDsMap(tx, in.ProductIDs)
		if err != nil {
			return err
		}

		items := make([]model.OrderProduct, 0, len(in.ProductIDs))
		for i, productID := range in.ProductIDs {
			p, ok := products[productID]
			if !ok {
				return model.NewValidationError("product_ids", "product %d does not exist", productID)
			}
			items = append(items, model.OrderProduct{
				ProductID:   productID,
				ProductName: p.Name,
				Quantity:    in.Quantities[i],
				UnitPrice:   p.Price,
			})
		}

		if err := database.InsertOrderInTx(tx, order); err != nil {
			return err
		}
		if err := database.InsertOrderProductsInTx(tx, order.ID, items); err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	log.Printf("INFO: Order %d (%s) placed by user %d with %d items", order.ID, order.Reference, userID, len(order.Items))
	return order.WithTotal(), nil
}

// SetStatus は管理者のみ実行できます。権限チェックは注文の存在確認より先に行います。
func SetStatus(db *sqlx.DB, orderID int64, newStatus string, requesterRole model.Role) (*model.Order, error) {
	if err := access.RequireAdmin(requesterRole, access.UpdateOrderStatus); err != nil {
		return nil, err
	}
	status := strings.TrimSpace(newStatus)
	if err := model.ValidateVar("status", status, "required,max=50"); err != nil {
		return nil, err
	}

	var updated *model.Order
	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		if err := database.UpdateOrderStatusInTx(tx, orderID, status); err != nil {
			return err
		}
		o, err := database.GetOrderByID(tx, orderID)
		if err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}

	log.Printf("INFO: Order %d status set to %q", orderID, status)
	return updated, nil
}

// EditQuantities は quantities に含まれる商品の明細数量を上書きします。値のない明細はそのまま。
// 存在確認と所有者チェックを数量の検証より先に行います。
func EditQuantities(db *sqlx.DB, orderID, requesterID int64, quantities map[int64]int) (*model.Order, error) {
	var updated *model.Order
	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		o, err := database.GetOrderByID(tx, orderID)
		if err != nil {
			return err
		}
		if err := access.RequireOwner(requesterID, access.EditOrderItems, o); err != nil {
			return err
		}
		for productID, q := range quantities {
			if err := model.ValidateVar(fmt.Sprintf("quantity_%d", productID), q, model.QuantityRule); err != nil {
				return err
			}
		}

		for i, item := range o.Items {
			q, ok := quantities[item.ProductID]
			if !ok || q == item.Quantity {
				continue
			}
			if err := database.UpdateOrderProductQuantityInTx(tx, item.ID, q); err != nil {
				return err
			}
			o.Items[i].Quantity = q
		}
		updated = o.WithTotal()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("edit order %d quantities: %w", orderID, err)
	}
	return updated, nil
}

func Get(db *sqlx.DB, orderID int64) (*model.Order, error) {
	return database.GetOrderByID(db, orderID)
}

// GetForOwner は requesterID が注文者の場合のみ注文を返します。
func GetForOwner(db *sqlx.DB, orderID, requesterID int64) (*model.Order, error) {
	o, err := Get(db, orderID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(requesterID, access.ViewOrder, o); err != nil {
		return nil, err
	}
	return o, nil
}

func ListForUser(db *sqlx.DB, userID int64) ([]model.Order, error) {
	return database.GetOrdersByUser(db, userID)
}

func ListAll(db *sqlx.DB, requesterRole model.Role) ([]model.Order, error) {
	if err := access.RequireAdmin(requesterRole, access.ViewAllOrders); err != nil {
		return nil, err
	}
	return database.GetAllOrders(db)
}
