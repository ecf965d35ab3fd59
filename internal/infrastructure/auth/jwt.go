package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/honeynil/bank-ledger/internal/infrastructure/redis"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
)

const issuer = "bank-ledger"

// TokenManager issues and verifies HS256 operator tokens. With a cache
// attached, revoked token ids are kept there until the token expires.
type TokenManager struct {
	secret  []byte
	revoked redis.RedisClient
	now     func() time.Time
}

func NewTokenManager(secret string, revoked redis.RedisClient) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not set")
	}
	return &TokenManager{secret: []byte(secret), revoked: revoked, now: time.Now}, nil
}

func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: token subject is required", pkgerrors.ErrInvalidInput)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: token ttl must be positive", pkgerrors.ErrInvalidInput)
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Parse(ctx context.Context, tokenStr string) (*models.TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrUnauthorized, err)
	}

	if m.revoked != nil && claims.ID != "" {
		_, err := m.revoked.Get(ctx, revokedKey(claims.ID))
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: token revoked", pkgerrors.ErrUnauthorized)
		case !stderrors.Is(err, redis.ErrKeyNotFound):
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
	}

	out := &models.TokenClaims{ID: claims.ID, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// Revoke marks a valid token as revoked until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, tokenStr string) error {
	if m.revoked == nil {
		return fmt.Errorf("token revocation needs REDIS_ADDR")
	}
	claims, err := m.Parse(ctx, tokenStr)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revoked.Set(ctx, revokedKey(claims.ID), claims.Subject, ttl)
}

func revokedKey(id string) string {
	return redis.Key("revoked", id)
}
