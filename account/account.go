package account

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"shopfront/database"
	"shopfront/model"
	"shopfront/webutil"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", webutil.ErrUnauthorized)

	// どの確認で失敗したかは返さない
	ErrIncorrectInformation = model.NewValidationError("password", "incorrect information")
)

// bcrypt のコスト。テストでは下げます。
var hashCost = bcrypt.DefaultCost

// bcrypt は72バイトを超える入力を扱えない
const maxPasswordBytes = 72

type RegisterInput struct {
	Username   string `form:"username" validate:"required,max=150"`
	Password   string `form:"password" validate:"required"`
	Email      string `form:"email" validate:"required,email,max=255"`
	Street     string `form:"street" validate:"max=255"`
	City       string `form:"city" validate:"max=100"`
	State      string `form:"state" validate:"max=100"`
	PostalCode string `form:"postal_code" validate:"max=20"`
	Phone      string `form:"phone" validate:"max=50"`
	BirthDate  string `form:"birth_date" validate:"required,datetime=2006-01-02"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Phone = strings.TrimSpace(in.Phone)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
}

func (in RegisterInput) validate() error {
	if err := model.ValidateStruct(in); err != nil {
		return err
	}
	// validator の max は文字数なのでバイト数はここで見る
	if len(in.Password) > maxPasswordBytes {
		return model.NewValidationError("password", "must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// Register は一般ユーザーを登録します。
func Register(db *sqlx.DB, in RegisterInput) (*model.User, error) {
	return RegisterAs(db, in, model.RoleUser)
}

// RegisterAs は指定ロールでユーザーを登録します。username / email の重複は ValidationError。
func RegisterAs(db *sqlx.DB, in RegisterInput, role model.Role) (*model.User, error) {
	if _, err := model.ParseRole(string(role)); err != nil {
		return nil, model.NewValidationError("role", "%v", err)
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &model.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         role,
		Email:        in.Email,
		Street:       in.Street,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Phone:        in.Phone,
		BirthDate:    in.BirthDate,
	}

	err = database.WithTx(db, func(tx *sqlx.Tx) error {
		field, err := database.CheckUserConflict(tx, u.Username, u.Email)
		if err != nil {
			return err
		}
		if field != "" {
			return model.NewValidationError(field, "is already registered")
		}
		return database.InsertUserInTx(tx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	log.Printf("INFO: Registered user %d (%s, %s)", u.ID, u.Username, u.Role)
	return u, nil
}

func Authenticate(db *sqlx.DB, username, password string) (*model.User, error) {
	u, err := database.GetUserByUsername(db, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password for user %d: %w", u.ID, err)
	}
	return u, nil
}

type ChangePasswordInput struct {
	Current string `form:"current_password" validate:"required"`
	New     string `form:"new_password" validate:"required"`
	Confirm string `form:"confirm_password" validate:"eqfield=New"`
}

// ChangePassword は現在のパスワードが一致し、新パスワードと確認が一致した場合のみ更新します。
// 失敗理由は区別せず ErrIncorrectInformation を返します。
func ChangePassword(db *sqlx.DB, userID int64, in ChangePasswordInput) error {
	if err := model.ValidateStruct(in); err != nil || len(in.New) > maxPasswordBytes {
		return ErrIncorrectInformation
	}

	return database.WithTx(db, func(tx *sqlx.Tx) error {
		u, err := database.GetUserByID(tx, userID)
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Current)); err != nil {
			return ErrIncorrectInformation
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.New), hashCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		return database.UpdatePasswordHashInTx(tx, userID, string(hash))
	})
}

// SetRole はユーザーのロールを変更します (CLI の管理者昇格用)。
func SetRole(db *sqlx.DB, username string, role model.Role) error {
	if _, err := model.ParseRole(string(role)); err != nil {
		return model.NewValidationError("role", "%v", err)
	}
	err := database.WithTx(db, func(tx *sqlx.Tx) error {
		return database.UpdateUserRoleInTx(tx, username, role)
	})
	if err != nil {
		return fmt.Errorf("set role for %q: %w", username, err)
	}
	log.Printf("INFO: User %q role set to %s", username, role)
	return nil
}
