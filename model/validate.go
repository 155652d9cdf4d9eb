package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// QuantityRule は明細数量の共通ルールです (order_products.quantity は INTEGER)。
const QuantityRule = "min=1,max=1000000"

var validate = newValidator()

// エラーのフィールド名には form タグ (フォームのフィールド名) を使います。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct は validate タグで入力構造体を検証し、最初の違反を *ValidationError で返します。
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return fromValidatorError("", err)
	}
	return nil
}

// ValidateVar は単一の値を検証します。field はエラーに載せるフィールド名。
func ValidateVar(field string, value interface{}, rule string) error {
	if err := validate.Var(value, rule); err != nil {
		return fromValidatorError(field, err)
	}
	return nil
}

func fromValidatorError(field string, err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err
	}
	fe := ves[0]
	if field == "" {
		field = fe.Field()
	}
	return &ValidationError{Field: field, Message: validationMessage(fe)}
}

func validationMessage(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return fmt.Sprintf("%q is not an email address", fe.Value())
	case "datetime":
		return fmt.Sprintf("%q must be in YYYY-MM-DD format", fe.Value())
	case "eqfield":
		if isList {
			return fmt.Sprintf("must have as many entries as %s", fe.Param())
		}
		return fmt.Sprintf("must match %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		switch {
		case isText:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("needs at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		switch {
		case isText:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("allows at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return fmt.Sprintf("failed the %s check", fe.Tag())
}
