package loader

import (
	"fmt"
	"io"
	"log"
	"os"

	"shopfront/database"
	"shopfront/model"
	"shopfront/parsers"
	"shopfront/product"

	"github.com/jmoiron/sqlx"
)

type LoadResult struct {
	Inserted int      `json:"inserted"`
	Skipped  []string `json:"skipped"`
}

func LoadProductsFile(db *sqlx.DB, path, charset string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()
	return LoadProducts(db, f, charset)
}

// LoadProducts は商品CSVを1トランザクションで登録します。
// 名前や価格が不正な行はスキップして Skipped に理由を残します。DBエラーは全体をロールバックします。
func LoadProducts(db *sqlx.DB, r io.Reader, charset string) (*LoadResult, error) {
	records, err := parsers.ParseProductCSV(r, charset)
	if err != nil {
		return nil, model.NewValidationError("file", "%v", err)
	}

	result := &LoadResult{Skipped: []string{}}
	err = database.WithTx(db, func(tx *sqlx.Tx) error {
		for _, rec := range records {
			in := product.CreateInput{Name: rec.Name, Price: rec.Price, Description: rec.Description}
			if err := model.ValidateStruct(in); err != nil {
				result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %v", rec.Line, err))
				continue
			}
			price, err := model.ParsePrice(rec.Price)
			if err != nil {
				result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %v", rec.Line, err))
				continue
			}

			p := &model.Product{Name: rec.Name, Price: price, Description: rec.Description}
			if err := database.InsertProductInTx(tx, p); err != nil {
				return err
			}
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, s := range result.Skipped {
		log.Printf("WARN: product import skipped %s", s)
	}
	log.Printf("Inserted %d rows into products", result.Inserted)
	return result, nil
}
