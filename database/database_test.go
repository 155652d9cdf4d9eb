package database_test

import (
	"errors"
	"testing"

	"shopfront/database"
	"shopfront/dbtest"
	"shopfront/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := database.Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestUserLookups(t *testing.T) {
	db := dbtest.Open(t)
	u := dbtest.CreateUser(t, db, "alice", model.RoleAdmin)

	byID, err := database.GetUserByID(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, model.RoleAdmin, byID.Role)

	byName, err := database.GetUserByUsername(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = database.GetUserByID(db, 9999)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = database.GetUserByUsername(db, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCheckUserConflict(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.CreateUser(t, db, "alice", model.RoleUser)

	field, err := database.CheckUserConflict(db, "alice", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "username", field)

	field, err = database.CheckUserConflict(db, "bob", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "email", field)

	field, err = database.CheckUserConflict(db, "bob", "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, field)
}

func TestUniqueUsernameEnforcedBySchema(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.CreateUser(t, db, "alice", model.RoleUser)

	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.InsertUserInTx(tx, &model.User{
			Username: "alice", PasswordHash: "x", Role: model.RoleUser, Email: "other@example.com",
		})
	})
	assert.Error(t, err)
}

func TestUpdateMissingRowsReportNotFound(t *testing.T) {
	db := dbtest.Open(t)

	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.UpdatePasswordHashInTx(tx, 42, "hash")
	})
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.UpdateOrderStatusInTx(tx, 42, "shipped")
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	boom := errors.New("boom")

	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		p := &model.Product{Name: "Ghost", Price: decimal.NewFromInt(1)}
		if err := database.InsertProductInTx(tx, p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	products, err := database.GetAllProducts(db)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := dbtest.Open(t)

	assert.Panics(t, func() {
		_ = database.WithTx(db, func(tx *sqlx.Tx) error {
			p := &model.Product{Name: "Ghost", Price: decimal.NewFromInt(1)}
			if err := database.InsertProductInTx(tx, p); err != nil {
				return err
			}
			panic("boom")
		})
	})

	products, err := database.GetAllProducts(db)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProducts(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.CreateProduct(t, db, "A", "1.25")
	b := dbtest.CreateProduct(t, db, "B", "0")

	all, err := database.GetAllProducts(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Name)
	assert.True(t, all[0].Price.Equal(decimal.RequireFromString("1.25")))

	got, err := database.GetProductByID(db, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.IsZero())

	_, err = database.GetProductByID(db, 9999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	m, err := database.GetProductsByIDsMap(db, []int64{a.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, m, 1)
	assert.Contains(t, m, a.ID)

	empty, err := database.GetProductsByIDsMap(db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	u := dbtest.CreateUser(t, db, "alice", model.RoleUser)
	p := dbtest.CreateProduct(t, db, "Widget", "2.50")

	o := &model.Order{Reference: "ref-1", UserID: u.ID, Status: model.StatusOrderPlaced, PaymentMethod: "cash"}
	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		if err := database.InsertOrderInTx(tx, o); err != nil {
			return err
		}
		return database.InsertOrderProductsInTx(tx, o.ID, []model.OrderProduct{
			{ProductID: p.ID, Quantity: 4, UnitPrice: p.Price},
		})
	})
	require.NoError(t, err)

	got, err := database.GetOrderByID(db, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.Reference)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Widget", got.Items[0].ProductName)
	assert.Equal(t, "10", got.Total.String())

	err = database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.UpdateOrderProductQuantityInTx(tx, got.Items[0].ID, 1)
	})
	require.NoError(t, err)

	list, err := database.GetAllOrders(db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2.5", list[0].Total.String())

	none, err := database.GetOrdersByUser(db, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQuantityCheckConstraint(t *testing.T) {
	db := dbtest.Open(t)
	u := dbtest.CreateUser(t, db, "alice", model.RoleUser)
	p := dbtest.CreateProduct(t, db, "Widget", "1")

	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		o := &model.Order{Reference: "ref-q", UserID: u.ID, Status: model.StatusOrderPlaced, PaymentMethod: "cash"}
		if err := database.InsertOrderInTx(tx, o); err != nil {
			return err
		}
		return database.InsertOrderProductsInTx(tx, o.ID, []model.OrderProduct{
			{ProductID: p.ID, Quantity: 0, UnitPrice: p.Price},
		})
	})
	assert.Error(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM orders"))
	assert.Zero(t, count)
}
