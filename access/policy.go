// Package access は注文操作の可否を判定します。
// 管理者向けの操作はロールで、それ以外は注文の所有者かどうかで判定します。
package access

import (
	"fmt"

	"shopfront/model"
)

type Capability int

const (
	UpdateOrderStatus Capability = iota
	ViewAllOrders
	EditOrderItems
	ViewOrder
)

func (c Capability) String() string {
	switch c {
	case UpdateOrderStatus:
		return "update order status"
	case ViewAllOrders:
		return "view all orders"
	case EditOrderItems:
		return "edit order items"
	case ViewOrder:
		return "view order"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

func (c Capability) adminOnly() bool {
	return c == UpdateOrderStatus || c == ViewAllOrders
}

type Decision int

const (
	Allow Decision = iota
	DenyRole
	DenyOwnership
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Err は拒否の場合に model.ErrForbidden をラップしたエラーを返します。
func (d Decision) Err(c Capability) error {
	switch d {
	case Allow:
		return nil
	case DenyRole:
		return fmt.Errorf("%s requires the admin role: %w", c, model.ErrForbidden)
	default:
		return fmt.Errorf("%s requires owning the order: %w", c, model.ErrForbidden)
	}
}

// Subject は判定対象のリクエスト元です。
type Subject struct {
	UserID int64
	Role   model.Role
}

func SubjectOf(u *model.User) Subject {
	return Subject{UserID: u.ID, Role: u.Role}
}

// Check は1つの操作を判定します。管理者専用の操作では order は nil でも構いません。
func Check(s Subject, c Capability, order *model.Order) Decision {
	if c.adminOnly() {
		if s.Role.IsAdmin() {
			return Allow
		}
		return DenyRole
	}
	if order == nil || order.UserID != s.UserID {
		return DenyOwnership
	}
	return Allow
}

func RequireAdmin(role model.Role, c Capability) error {
	return Check(Subject{Role: role}, c, nil).Err(c)
}

func RequireOwner(userID int64, c Capability, order *model.Order) error {
	return Check(Subject{UserID: userID}, c, order).Err(c)
}
