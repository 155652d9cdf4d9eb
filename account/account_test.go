package account

import (
	"strings"
	"testing"

	"shopfront/database"
	"shopfront/dbtest"
	"shopfront/model"
	"shopfront/webutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	hashCost = bcrypt.MinCost
}

func validInput() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Password:  "s3cret",
		Email:     " Alice@Example.com ",
		City:      "Springfield",
		BirthDate: "1990-04-01",
	}
}

func TestRegister(t *testing.T) {
	db := dbtest.Open(t)

	u, err := Register(db, validInput())
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	stored, err := database.GetUserByUsername(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Springfield", stored.City)
	assert.Equal(t, "1990-04-01", stored.BirthDate)
}

func TestRegisterValidation(t *testing.T) {
	db := dbtest.Open(t)

	cases := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = " " }, "username"},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "password"},
		{"long password", func(in *RegisterInput) { in.Password = string(make([]byte, 73)) }, "password"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email"},
		{"bare at sign", func(in *RegisterInput) { in.Email = "@" }, "email"},
		{"email without domain", func(in *RegisterInput) { in.Email = "a@" }, "email"},
		{"email with space", func(in *RegisterInput) { in.Email = "a b@c" }, "email"},
		{"long username", func(in *RegisterInput) { in.Username = strings.Repeat("u", 151) }, "username"},
		{"long postal code", func(in *RegisterInput) { in.PostalCode = strings.Repeat("9", 21) }, "postal_code"},
		{"bad birth date", func(in *RegisterInput) { in.BirthDate = "01/04/1990" }, "birth_date"},
		{"missing birth date", func(in *RegisterInput) { in.BirthDate = "" }, "birth_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, err := Register(db, in)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM users"))
	assert.Zero(t, count)
}

func TestRegisterDuplicates(t *testing.T) {
	db := dbtest.Open(t)
	_, err := Register(db, validInput())
	require.NoError(t, err)

	sameName := validInput()
	sameName.Email = "other@example.com"
	_, err = Register(db, sameName)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "username", ve.Field)

	sameEmail := validInput()
	sameEmail.Username = "alice2"
	sameEmail.Email = "ALICE@example.com"
	_, err = Register(db, sameEmail)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}

func TestAuthenticate(t *testing.T) {
	db := dbtest.Open(t)
	_, err := Register(db, validInput())
	require.NoError(t, err)

	u, err := Authenticate(db, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = Authenticate(db, "alice", "wrong")
	assert.ErrorIs(t, err, webutil.ErrUnauthorized)

	_, err = Authenticate(db, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	db := dbtest.Open(t)
	u, err := Register(db, validInput())
	require.NoError(t, err)

	failures := []ChangePasswordInput{
		{Current: "wrong", New: "n3w", Confirm: "n3w"},
		{Current: "s3cret", New: "n3w", Confirm: "different"},
		{Current: "s3cret", New: "", Confirm: ""},
		{Current: "", New: "n3w", Confirm: "n3w"},
	}
	for _, in := range failures {
		err := ChangePassword(db, u.ID, in)
		assert.ErrorIs(t, err, ErrIncorrectInformation)
	}

	_, err = Authenticate(db, "alice", "s3cret")
	require.NoError(t, err, "failed attempts must not change the password")

	require.NoError(t, ChangePassword(db, u.ID, ChangePasswordInput{Current: "s3cret", New: "n3w", Confirm: "n3w"}))

	_, err = Authenticate(db, "alice", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(db, "alice", "n3w")
	assert.NoError(t, err)
}

func TestRegisterAs(t *testing.T) {
	db := dbtest.Open(t)

	u, err := RegisterAs(db, validInput(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	stored, err := database.GetUserByUsername(db, "alice")
	require.NoError(t, err)
	assert.True(t, stored.Role.IsAdmin())

	in := validInput()
	in.Username = "bob"
	in.Email = "bob@example.com"
	_, err = RegisterAs(db, in, model.Role("root"))
	assert.True(t, model.IsValidation(err))
	_, err = database.GetUserByUsername(db, "bob")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSetRole(t *testing.T) {
	db := dbtest.Open(t)
	_, err := Register(db, validInput())
	require.NoError(t, err)

	require.NoError(t, SetRole(db, "alice", model.RoleAdmin))
	u, err := database.GetUserByUsername(db, "alice")
	require.NoError(t, err)
	assert.True(t, u.Role.IsAdmin())

	assert.ErrorIs(t, SetRole(db, "nobody", model.RoleAdmin), model.ErrNotFound)
	assert.True(t, model.IsValidation(SetRole(db, "alice", model.Role("root"))))
}
