package controllers

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/qintermediary/exchangeflow/internal/config"
)

type AuthController struct{}

// RequireAuth checks the X-API-Key header against the configured bcrypt
// hash. When no hash is configured the API runs open, which is the normal
// mode for local development and the test suite.
func (ac *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := config.GetSystemSettingString(config.API_KEY_HASH)
		if hash == "" {
			next(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
