package loader

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"

	"shopfront/database"

	"github.com/jmoiron/sqlx"
)

var (
	//go:embed schema_sqlite.sql
	sqliteSchema string
	//go:embed schema_postgres.sql
	postgresSchema string
)

// InitDatabase はスキーマを適用し、商品テーブルが空であれば seedPath の商品CSVをロードします。
func InitDatabase(db *sqlx.DB, seedPath, seedCharset string) error {
	log.Println("Applying database schema...")
	if err := applySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Schema applied successfully.")

	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		log.Printf("WARN: %s not found, skipping product seed.", seedPath)
		return nil
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM products"); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		log.Printf("INFO: %d products already present, skipping seed.", count)
		return nil
	}

	log.Printf("Loading %s...", seedPath)
	result, err := LoadProductsFile(db, seedPath, seedCharset)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", seedPath, err)
	}
	log.Printf("Loaded %s: %d products, %d skipped.", seedPath, result.Inserted, len(result.Skipped))
	return nil
}

func schemaFor(driver string) (string, error) {
	switch driver {
	case database.DriverSQLite:
		return sqliteSchema, nil
	case database.DriverPostgres:
		return postgresSchema, nil
	}
	return "", fmt.Errorf("no schema for driver %q", driver)
}

// applySchema はスキーマを文単位で実行します。
func applySchema(db *sqlx.DB) error {
	schema, err := schemaFor(db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
