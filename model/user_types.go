package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole は保存済みの文字列を Role に変換します。未知の値はエラー。
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// BirthDate は "2006-01-02" 形式の文字列で保持します。
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Email        string    `db:"email" json:"email"`
	Street       string    `db:"street" json:"street"`
	City         string    `db:"city" json:"city"`
	State        string    `db:"state" json:"state"`
	PostalCode   string    `db:"postal_code" json:"postalCode"`
	Phone        string    `db:"phone" json:"phone"`
	BirthDate    string    `db:"birth_date" json:"birthDate"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
