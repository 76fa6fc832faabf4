package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/solacelabs/solace-backend/internal/model/user"
	"github.com/solacelabs/solace-backend/internal/service/auth"
	"github.com/solacelabs/solace-backend/internal/store"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

// Auth verifies the bearer token on each request and loads the account it
// belongs to. Browser streaming clients cannot set headers, so a token query
// parameter is accepted as a fallback.
func Auth(tokens *auth.Service, users *store.Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			claims, err := tokens.VerifyToken(tokenString)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			account, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "unknown account")
				return
			}
			if !account.IsActive {
				utils.RespondError(w, http.StatusForbidden, "account disabled")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserFrom returns the authenticated account stored by Auth.
func UserFrom(ctx context.Context) (*user.User, bool) {
	account, ok := ctx.Value(userContextKey).(*user.User)
	return account, ok
}

// WithUser injects an account into ctx the way Auth does. Intended for tests.
func WithUser(ctx context.Context, account *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, account)
}
