package auth

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/slotbook/internal/internaltypes"
)

const adminUser = "admin"

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

// Verify checks admin basic-auth credentials against a bcrypt hash. An empty
// hash disables admin access entirely.
func Verify(hash, user, pw string) error {
	if hash == "" {
		return internaltypes.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(adminUser)) != 1 {
		return internaltypes.ErrUnauthorized
	}
	if !CheckPassword(hash, pw) {
		return internaltypes.ErrUnauthorized
	}
	return nil
}

// RequireAdmin guards next with HTTP basic auth for the "admin" user.
func RequireAdmin(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pw, ok := r.BasicAuth()
			if !ok || Verify(hash, user, pw) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="slotbook admin"`)
				http.Error(w, internaltypes.ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
