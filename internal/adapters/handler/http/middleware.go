package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type contextKey string

const WalletKey contextKey = "wallet"

const accessTokenCookie = "access_token"

// Authenticator accepts a bearer token or the access_token cookie and puts
// the wallet address it was issued for on the request context.
func Authenticator(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(accessTokenCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				writeError(w, r, domain.ErrUnauthorized)
				return
			}

			wallet, err := auth.ParseToken(token)
			if err != nil {
				writeError(w, r, domain.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), WalletKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func walletFrom(r *http.Request) (string, bool) {
	wallet, ok := r.Context().Value(WalletKey).(string)
	return wallet, ok && wallet != ""
}
