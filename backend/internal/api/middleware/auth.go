package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"jobvacancies/backend/pkg/utils"
)

// ClientClaims claims JWT клиента API
type ClientClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// ContextKey тип для ключей контекста
type ContextKey string

const (
	ClientKey    ContextKey = "client"
	RequestIDKey ContextKey = "request_id"

	// ScopeWrite право изменять хранилище вакансий
	ScopeWrite = "vacancies:write"
)

// AuthMiddleware проверяет Bearer JWT, подписанный secret (HS256)
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.WriteError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := ValidateToken(secret, parts[1])
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if claims.Scope != ScopeWrite {
				utils.WriteForbidden(w)
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext получение клиента (subject токена) из контекста
func GetClientFromContext(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKey).(string); ok {
		return client
	}
	return ""
}

// GenerateJWTToken выпускает токен клиента с правом записи
func GenerateJWTToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &ClientClaims{
		Scope: ScopeWrite,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken валидация токена
func ValidateToken(secret, tokenString string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}

// CORSMiddleware middleware для CORS
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Обработка preflight запросов
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
