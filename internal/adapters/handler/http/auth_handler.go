package http

import (
	"encoding/json"
	"net/http"

	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type AuthHandler struct {
	authService    ports.AuthService
	cookieDomain   string
	cookieSameSite http.SameSite
}

func NewAuthHandler(authService ports.AuthService, cookieDomain string, cookieSameSite http.SameSite) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		cookieDomain:   cookieDomain,
		cookieSameSite: cookieSameSite,
	}
}

type connectRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type connectResponse struct {
	AccessToken   string `json:"access_token"`
	WalletAddress string `json:"wallet_address"`
}

// Connect godoc
// @Summary      Connects a wallet
// @Description  Issues an access token for the given wallet address. The token is returned in the body and as the `access_token` cookie. Wallet ownership is not verified.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body connectRequest true "Wallet address"
// @Success      200 {object} connectResponse
// @Failure      400 {object} errorResponse
// @Router       /auth/connect [post]
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	token, err := h.authService.Connect(r.Context(), req.WalletAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}

	wallet, err := h.authService.ParseToken(token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setAccessTokenCookie(w, token)
	writeJSON(w, http.StatusOK, connectResponse{AccessToken: token, WalletAddress: wallet})
}

// Disconnect godoc
// @Summary      Disconnects the wallet
// @Description  Clears the access token cookie
// @Tags         auth
// @Success      204
// @Router       /auth/disconnect [post]
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", Domain: h.cookieDomain})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   24 * 60 * 60,
	})
}
