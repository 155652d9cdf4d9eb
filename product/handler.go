package product

import (
	"net/http"

	"shopfront/webutil"

	"github.com/jmoiron/sqlx"
)

// ListProductsHandler GET /products
func ListProductsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := List(db)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, products)
	}
}

// CreateProductHandler POST /products
func CreateProductHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := Create(db, CreateInput{
			Name:        r.FormValue("name"),
			Price:       r.FormValue("price"),
			Description: r.FormValue("description"),
		})
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusCreated, p)
	}
}
