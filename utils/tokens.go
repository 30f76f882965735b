package utils

import (
	"context"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	accessTokenMaxAge  = 24 * time.Hour
	refreshTokenMaxAge = 365 * 24 * time.Hour
)

// AccessToken carries the authenticated user's document ID as hex.
type AccessToken struct {
	ID string `json:"ID"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CreateTokenPair signs a fresh access/refresh pair and records the refresh
// token in Redis so rotation can invalidate it on first use.
func CreateTokenPair(ctx context.Context, userID string, rdb *redis.Client) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), accessTokenMaxAge)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), refreshTokenMaxAge)

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: userID})
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokenSigner.Sign(jwt.Claims{Subject: userID})
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	if err := rdb.Set(ctx, string(refreshToken), "true", refreshTokenMaxAge+5*time.Minute).Err(); err != nil {
		return nil, err
	}

	return &tokenPair, nil
}
