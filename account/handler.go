package account

import (
	"net/http"

	"shopfront/session"
	"shopfront/webutil"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

// RegisterHandler POST /register
func RegisterHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := RegisterInput{
			Username:   r.FormValue("username"),
			Password:   r.FormValue("password"),
			Email:      r.FormValue("email"),
			Street:     r.FormValue("street"),
			City:       r.FormValue("city"),
			State:      r.FormValue("state"),
			PostalCode: r.FormValue("postal_code"),
			Phone:      r.FormValue("phone"),
			BirthDate:  r.FormValue("birth_date"),
		}

		u, err := Register(db, in)
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusCreated, u)
	}
}

// LoginHandler POST /login
func LoginHandler(db *sqlx.DB, sm *scs.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := Authenticate(db, r.FormValue("username"), r.FormValue("password"))
		if err != nil {
			webutil.WriteError(w, err)
			return
		}
		if err := session.Login(sm, r, u.ID); err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, u)
	}
}

// LogoutHandler POST /logout
func LogoutHandler(sm *scs.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := session.Logout(sm, r); err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// MeHandler GET /me
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		webutil.WriteJSON(w, http.StatusOK, session.CurrentUser(r.Context()))
	}
}

// ChangePasswordHandler POST /password
func ChangePasswordHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := session.CurrentUser(r.Context())
		in := ChangePasswordInput{
			Current: r.FormValue("current_password"),
			New:     r.FormValue("new_password"),
			Confirm: r.FormValue("confirm_password"),
		}
		if err := ChangePassword(db, user.ID, in); err != nil {
			webutil.WriteError(w, err)
			return
		}
		webutil.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
	}
}
