package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は検索したレコードが存在しない場合に返します。
	ErrNotFound = errors.New("record not found")

	// ErrForbidden はロールまたは所有者の条件を満たさない場合に返します。
	ErrForbidden = errors.New("access denied")
)

// ValidationError は1フィールドの入力不正・不足を表します。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
