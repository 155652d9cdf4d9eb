package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopfront/model"

	"github.com/jmoiron/sqlx"
)

func InsertProductInTx(tx *sqlx.Tx, p *model.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO products (name, price, description, created_at) VALUES (?, ?, ?, ?) RETURNING id`
	if err := tx.Get(&p.ID, tx.Rebind(q), p.Name, p.Price, p.Description, p.CreatedAt); err != nil {
		return fmt.Errorf("InsertProductInTx (name: %s) failed: %w", p.Name, err)
	}
	return nil
}

func GetAllProducts(dbtx DBTX) ([]model.Product, error) {
	var products []model.Product
	err := dbtx.Select(&products, "SELECT id, name, price, description, created_at FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

func GetProductByID(dbtx DBTX, id int64) (*model.Product, error) {
	var p model.Product
	err := dbtx.Get(&p, dbtx.Rebind("SELECT id, name, price, description, created_at FROM products WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

// GetProductsByIDsMap は指定 ID の商品をマップで返します。存在しない ID は含まれません。
func GetProductsByIDsMap(dbtx DBTX, ids []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product)
	if len(ids) == 0 {
		return result, nil
	}

	q, args, err := sqlx.In("SELECT id, name, price, description, created_at FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build product query: %w", err)
	}
	var products []model.Product
	if err := dbtx.Select(&products, dbtx.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}
