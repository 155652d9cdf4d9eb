// Package dbtest はテスト用に、スキーマ適用済みの使い捨て SQLite DB を開きます。
package dbtest

import (
	"path/filepath"
	"testing"

	"shopfront/database"
	"shopfront/loader"
	"shopfront/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "shopfront_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, loader.InitDatabase(db, "", ""))
	return db
}

// CreateUser はパスワードのハッシュ化を通さずにユーザーを直接登録します。
func CreateUser(t testing.TB, db *sqlx.DB, username string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		Email:        username + "@example.com",
		BirthDate:    "1990-01-01",
	}
	require.NoError(t, database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.InsertUserInTx(tx, u)
	}))
	return u
}

func CreateProduct(t testing.TB, db *sqlx.DB, name, price string) *model.Product {
	t.Helper()
	parsed, err := model.ParsePrice(price)
	require.NoError(t, err)
	p := &model.Product{Name: name, Price: parsed}
	require.NoError(t, database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.InsertProductInTx(tx, p)
	}))
	return p
}
