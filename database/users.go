package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopfront/model"

	"github.com/jmoiron/sqlx"
)

const userColumns = `
	id, username, password_hash, role, email,
	street, city, state, postal_code, phone, birth_date, created_at
`

func InsertUserInTx(tx *sqlx.Tx, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO users (
			username, password_hash, role, email,
			street, city, state, postal_code, phone, birth_date, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := tx.Get(&u.ID, tx.Rebind(q),
		u.Username, u.PasswordHash, string(u.Role), u.Email,
		u.Street, u.City, u.State, u.PostalCode, u.Phone, u.BirthDate, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertUserInTx (username: %s) failed: %w", u.Username, err)
	}
	return nil
}

// CheckUserConflict は username / email の重複をフィールド名で返します。重複なしなら空文字。
func CheckUserConflict(dbtx DBTX, username, email string) (string, error) {
	var exists int
	err := dbtx.Get(&exists, dbtx.Rebind(`SELECT 1 FROM users WHERE username = ? LIMIT 1`), username)
	switch {
	case err == nil:
		return "username", nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("CheckUserConflict failed: %w", err)
	}

	err = dbtx.Get(&exists, dbtx.Rebind(`SELECT 1 FROM users WHERE email = ? LIMIT 1`), email)
	switch {
	case err == nil:
		return "email", nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("CheckUserConflict failed: %w", err)
	}
	return "", nil
}

func GetUserByID(dbtx DBTX, id int64) (*model.User, error) {
	var u model.User
	err := dbtx.Get(&u, dbtx.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

func GetUserByUsername(dbtx DBTX, username string) (*model.User, error) {
	var u model.User
	err := dbtx.Get(&u, dbtx.Rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &u, nil
}

func UpdatePasswordHashInTx(tx *sqlx.Tx, userID int64, hash string) error {
	return execOneRow(tx, `UPDATE users SET password_hash = ? WHERE id = ?`, fmt.Sprintf("user %d", userID), hash, userID)
}

func UpdateUserRoleInTx(tx *sqlx.Tx, username string, role model.Role) error {
	return execOneRow(tx, `UPDATE users SET role = ? WHERE username = ?`, fmt.Sprintf("user %q", username), string(role), username)
}

// execOneRow は UPDATE を実行し、対象行がなければ ErrNotFound を返します。
func execOneRow(tx *sqlx.Tx, q, what string, args ...interface{}) error {
	res, err := tx.Exec(tx.Rebind(q), args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for %s: %w", what, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return nil
}
