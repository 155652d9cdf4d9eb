package webutil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"shopfront/model"
)

// ErrUnauthorized はログインが必要、または認証情報が誤っている場合に使います。
var ErrUnauthorized = errors.New("authentication required")

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// ヘルパー関数: エラーをJSONで返す
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, map[string]string{"message": message})
}

// WriteError はエラーの種類をステータスコードに変換します。想定外のエラーはログに出し、詳細は返しません。
func WriteError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteJSONError(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnauthorized):
		WriteJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, model.ErrForbidden):
		WriteJSONError(w, "access denied", http.StatusForbidden)
	case errors.Is(err, model.ErrNotFound):
		WriteJSONError(w, "not found", http.StatusNotFound)
	default:
		log.Printf("ERROR: %v", err)
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
