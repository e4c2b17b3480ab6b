package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rameshdebur/filebucket/internal/response"
)

// AdminPINHeader carries the master admin PIN on admin requests.
const AdminPINHeader = "X-Admin-Pin"

// AdminRole is the "role" claim of an admin session token.
const AdminRole = "admin"

// RequireAdmin accepts either the master PIN in X-Admin-Pin or a Bearer JWT
// signed with jwtSecret whose role claim is admin.
func RequireAdmin(masterPIN, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pin := r.Header.Get(AdminPINHeader); pin != "" {
				if SecretEqual(pin, masterPIN) {
					next.ServeHTTP(w, r)
					return
				}
				response.Unauthorized(w, "invalid admin PIN")
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w, "admin credentials required")
				return
			}
			if !validAdminToken(token, jwtSecret) {
				response.Unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCronSecret guards the purge trigger with a Bearer secret. An empty
// secret leaves the endpoint open, for deployments where the scheduler sits
// on a private network.
func RequireCronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				token, ok := bearerToken(r)
				if !ok || !SecretEqual(token, secret) {
					response.Unauthorized(w, "unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecretEqual compares two secrets in constant time.
func SecretEqual(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func validAdminToken(raw, secret string) bool {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == AdminRole
}
