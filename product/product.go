package product

import (
	"fmt"
	"strings"

	"shopfront/database"
	"shopfront/model"

	"github.com/jmoiron/sqlx"
)

type CreateInput struct {
	Name        string `form:"name" validate:"required,max=150"`
	Price       string `form:"price" validate:"required"`
	Description string `form:"description" validate:"max=250"`
}

// Create は商品を登録します。価格は 0 以上、小数2桁までの10進数文字列。
func Create(db *sqlx.DB, in CreateInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)
	if err := model.ValidateStruct(in); err != nil {
		return nil, err
	}
	price, err := model.ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	p := &model.Product{Name: in.Name, Price: price, Description: in.Description}
	err = database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.InsertProductInTx(tx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func List(db *sqlx.DB) ([]model.Product, error) {
	products, err := database.GetAllProducts(db)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}
