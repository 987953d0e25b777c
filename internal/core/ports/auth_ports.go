package ports

import "context"

type AuthService interface {
	// Connect issues an access token for a wallet address. Ownership of the
	// wallet is not proven.
	Connect(ctx context.Context, walletAddress string) (string, error)
	ParseToken(token string) (string, error)
}
