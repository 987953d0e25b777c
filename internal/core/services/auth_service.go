package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

const accessTokenTTL = 24 * time.Hour

type authService struct {
	jwtSecret []byte
	clock     ports.Clock
	logger    *slog.Logger
}

func NewAuthService(jwtSecret string, clock ports.Clock, logger *slog.Logger) ports.AuthService {
	logger = resolveLogger(logger)
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set", "event", "auth_insecure_secret")
	}
	return &authService{
		jwtSecret: []byte(jwtSecret),
		clock:     resolveClock(clock),
		logger:    logger,
	}
}

func (s *authService) Connect(ctx context.Context, walletAddress string) (string, error) {
	wallet, err := domain.NormalizeWallet(walletAddress)
	if err != nil {
		return "", err
	}

	token, err := s.generateAccessToken(wallet)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("wallet connected", "event", "wallet_connected", "wallet", wallet)
	return token, nil
}

func (s *authService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	wallet, err := domain.NormalizeWallet(sub)
	if err != nil {
		return "", errors.Join(domain.ErrUnauthorized, err)
	}
	return wallet, nil
}

func (s *authService) generateAccessToken(wallet string) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub": wallet,
		"exp": now.Add(accessTokenTTL).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
