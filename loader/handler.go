package loader

import (
	"log"
	"net/http"

	"shopfront/webutil"

	"github.com/jmoiron/sqlx"
)

// ImportProductsHandler は multipart の "file" を商品CSVとして取り込みます。"charset" で文字コードを指定できます。
func ImportProductsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			webutil.WriteJSONError(w, "could not read CSV file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		result, err := LoadProducts(db, file, r.FormValue("charset"))
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		log.Printf("INFO: Imported %d products via upload.", result.Inserted)

		webutil.WriteJSON(w, http.StatusOK, result)
	}
}
