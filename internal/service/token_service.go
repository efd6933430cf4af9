package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/turmas-api/internal/models"
)

// ErrInvalidToken indicates an access token that fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid access token")

// TokenClaims are the claims of an access token. ID carries the session token.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService signs and verifies access tokens bound to a session.
type TokenService interface {
	Issue(session models.Session) (string, error)
	Parse(token string) (*TokenClaims, error)
}

type tokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService constructs an HS256 token service.
func NewTokenService(secret, issuer string) TokenService {
	return &tokenService{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (s *tokenService) Issue(session models.Session) (string, error) {
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.Token,
			Subject:   session.User.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAtTime()),
		},
		Role: string(session.User.Type),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Parse(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
