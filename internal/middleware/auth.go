package middleware

import (
	"context"
	"net/http"
	"strings"

	"library/internal/auth"
	"library/internal/models"
)

type contextKey string

const (
	accountIDKey contextKey = "account_id"
	roleKey      contextKey = "role"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID string
	Role      models.Role
}

func AccountIDFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(accountIDKey).(string)
	return accountID, ok && accountID != ""
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	accountID, ok := AccountIDFromContext(ctx)
	if !ok {
		return Principal{}, false
	}
	role, _ := ctx.Value(roleKey).(models.Role)
	return Principal{AccountID: accountID, Role: role}, true
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, p.AccountID)
	return context.WithValue(ctx, roleKey, p.Role)
}

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(secret, strings.TrimSpace(parts[1]))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := ContextWithPrincipal(r.Context(), Principal{AccountID: claims.AccountID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
