package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email     string `form:"email" validate:"required,email"`
	BirthDate string `form:"birth_date" validate:"required,datetime=2006-01-02"`
	Nickname  string `validate:"max=5"`
}

type lineForm struct {
	IDs        []int64 `form:"ids" validate:"min=1,dive,gt=0"`
	Quantities []int   `form:"quantities" validate:"min=1,eqfield=IDs,dive,min=1,max=1000000"`
}

func TestValidateStructUsesFormNames(t *testing.T) {
	cases := []struct {
		name  string
		in    signupForm
		field string
	}{
		{"missing email", signupForm{BirthDate: "1990-01-01"}, "email"},
		{"bare at sign", signupForm{Email: "@", BirthDate: "1990-01-01"}, "email"},
		{"no domain", signupForm{Email: "a@", BirthDate: "1990-01-01"}, "email"},
		{"space in local part", signupForm{Email: "a b@c", BirthDate: "1990-01-01"}, "email"},
		{"bad date", signupForm{Email: "a@example.com", BirthDate: "01/02/1990"}, "birth_date"},
		{"no form tag", signupForm{Email: "a@example.com", BirthDate: "1990-01-01", Nickname: "toolong"}, "Nickname"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.NotEmpty(t, ve.Message)
		})
	}

	assert.NoError(t, ValidateStruct(signupForm{Email: "a@example.com", BirthDate: "1990-01-01"}))
}

func TestValidateStructLists(t *testing.T) {
	assert.NoError(t, ValidateStruct(lineForm{IDs: []int64{1, 2}, Quantities: []int{1, 3}}))

	for name, in := range map[string]lineForm{
		"empty":          {},
		"length differs": {IDs: []int64{1}, Quantities: []int{1, 2}},
		"zero quantity":  {IDs: []int64{1}, Quantities: []int{0}},
		"huge quantity":  {IDs: []int64{1}, Quantities: []int{1000001}},
		"zero id":        {IDs: []int64{0}, Quantities: []int{1}},
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, IsValidation(ValidateStruct(in)))
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("quantity_3", 5, QuantityRule))

	err := ValidateVar("quantity_3", 0, QuantityRule)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity_3", ve.Field)
	assert.Equal(t, "must be at least 1", ve.Message)

	err = ValidateVar("status", "", "required,max=50")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is required", ve.Message)
}
