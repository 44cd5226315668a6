// Package middleware содержит HTTP middleware фермерского магазина.
package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	sessionCookieName = "admin_session"
	sessionTTL        = 12 * time.Hour
)

// AuthMiddleware защищает административные маршруты подписанным cookie сессии.
// Общий пароль администратора проверяется один раз при входе, дальше
// авторизация идёт по HMAC-подписанному cookie с ограниченным сроком жизни.
type AuthMiddleware struct {
	secretKey     []byte
	adminPassword string
}

// NewAuthMiddleware создаёт middleware с секретом подписи и паролем администратора.
func NewAuthMiddleware(secret, adminPassword string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey:     key,
		adminPassword: adminPassword,
	}
}

// CheckPassword сверяет введённый пароль с паролем администратора.
func (a *AuthMiddleware) CheckPassword(password string) bool {
	if a.adminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.adminPassword)) == 1
}

// Middleware проверяет cookie сессии администратора.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if !a.parseCookie(cookie.Value) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie устанавливает подписанный cookie сессии администратора.
func (a *AuthMiddleware) SetSessionCookie(w http.ResponseWriter) {
	expires := time.Now().Add(sessionTTL)
	value := a.signExpiry(expires.Unix())

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (a *AuthMiddleware) signExpiry(expiresUnix int64) string {
	expStr := strconv.FormatInt(expiresUnix, 10)
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(expStr))
	signature := mac.Sum(nil)
	return expStr + "." + hex.EncodeToString(signature)
}

func (a *AuthMiddleware) parseCookie(cookieValue string) bool {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return false
	}

	expStr := parts[0]
	signature := parts[1]

	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(expStr))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return false
	}

	expiresUnix, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return false
	}

	return time.Now().Unix() < expiresUnix
}
