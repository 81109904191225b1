package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSecret is returned when the validator has no signing secret
	ErrMissingSecret = errors.New("jwt secret is required")
)

// Claims is the token payload
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`

	// Scope is a space separated list, as in OAuth2 access tokens
	Scope string `json:"scope,omitempty"`
}

// Principal is the authenticated caller
type Principal struct {
	Subject   string
	Email     string
	Scopes    []string
	Issuer    string
	ExpiresAt time.Time
}

// HMACValidator validates HS256 tokens
type HMACValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewHMACValidator creates a validator. issuer may be empty.
func NewHMACValidator(secret, issuer string) (*HMACValidator, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &HMACValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// ValidateToken parses and verifies tokenString
func (v *HMACValidator) ValidateToken(_ context.Context, tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	p := &Principal{
		Subject: claims.Subject,
		Email:   claims.Email,
		Scopes:  strings.Fields(claims.Scope),
		Issuer:  claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Sign issues a token for subject. Used by the CLI and tests to mint
// service tokens.
func Sign(secret, subject, issuer string, ttl time.Duration, scopes ...string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: strings.Join(scopes, " "),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
