package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

// ErrInvalidToken covers bad signature, malformed payload and expiry alike;
// callers must not be able to tell which one happened.
var ErrInvalidToken = errors.New("invalid or expired token")

type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(actorID uuid.UUID, role types.Role) (string, error)
	Verify(tokenString string) (uuid.UUID, types.Role, error)
	TTL() time.Duration
}

type tokenService struct {
	log       *logger.Logger
	secretKey string
	ttl       time.Duration
}

func NewTokenService(log *logger.Logger, secretKey string, ttl time.Duration) TokenService {
	return &tokenService{
		log:       log.With("service", "TokenService"),
		secretKey: secretKey,
		ttl:       ttl,
	}
}

func (ts *tokenService) Issue(actorID uuid.UUID, role types.Role) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ts.secretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (ts *tokenService) Verify(tokenString string) (uuid.UUID, types.Role, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(ts.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}
	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	// Legacy tokens may carry roles the current enumeration does not know;
	// the resolver owns the fallback, so the raw value passes through.
	return actorID, types.Role(claims.Role), nil
}

func (ts *tokenService) TTL() time.Duration {
	return ts.ttl
}
