package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shopfront/database"
	"shopfront/model"
	"shopfront/webutil"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

const userIDKey = "authenticatedUserID"

type ctxKey struct{}

func NewManager(lifetime time.Duration) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = lifetime
	sm.Cookie.Name = "shopfront_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// Login はセッショントークンを更新してからユーザーIDを保存します。
func Login(sm *scs.SessionManager, r *http.Request, userID int64) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	sm.Put(r.Context(), userIDKey, userID)
	return nil
}

func Logout(sm *scs.SessionManager, r *http.Request) error {
	return sm.Destroy(r.Context())
}

// RequireAuth はログイン中のユーザーをリクエストのコンテキストに載せます。未ログインなら 401。
func RequireAuth(sm *scs.SessionManager, db *sqlx.DB, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := sm.GetInt64(r.Context(), userIDKey)
		if userID == 0 {
			webutil.WriteError(w, webutil.ErrUnauthorized)
			return
		}

		user, err := database.GetUserByID(db, userID)
		if errors.Is(err, model.ErrNotFound) {
			// ユーザーが消えている場合はセッションを破棄
			sm.Remove(r.Context(), userIDKey)
			webutil.WriteError(w, webutil.ErrUnauthorized)
			return
		}
		if err != nil {
			webutil.WriteError(w, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	}
}

// CurrentUser は RequireAuth が載せたユーザーを返します。RequireAuth の外では nil。
func CurrentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(ctxKey{}).(*model.User)
	return u
}
