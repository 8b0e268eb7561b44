// Package auth issues and verifies the signed session tokens. Identity values
// can only be produced here, from a verified access token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"quizhub/internal/util"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	minSecretLength = 32
)

var (
	ErrInvalidToken     = errors.New("invalid jwt token")
	ErrTokenExpired     = errors.New("jwt token expired")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// Claims is the JWT payload.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity is the authenticated principal of a request.
type Identity struct {
	userID    string
	tokenID   string
	expiresAt time.Time
}

func (i Identity) UserID() string       { return i.userID }
func (i Identity) TokenID() string      { return i.tokenID }
func (i Identity) ExpiresAt() time.Time { return i.expiresAt }

// IsZero reports whether the identity was never authenticated.
func (i Identity) IsZero() bool { return i.userID == "" }

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret key must be at least %d bytes long", minSecretLength)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue signs a new token of the given type for the user.
func (m *TokenManager) Issue(userID, tokenType string) (string, *Claims, error) {
	var ttl time.Duration
	switch tokenType {
	case TokenTypeAccess:
		ttl = m.accessTTL
	case TokenTypeRefresh:
		ttl = m.refreshTTL
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidTokenType, tokenType)
	}

	now := m.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.NewULID(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature and time claims of a token of any type.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseRefresh accepts only refresh tokens.
func (m *TokenManager) ParseRefresh(tokenString string) (*Claims, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidTokenType, TokenTypeRefresh, claims.TokenType)
	}
	return claims, nil
}

// Authenticate verifies an access token and returns the identity it carries.
func (m *TokenManager) Authenticate(tokenString string) (Identity, error) {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return Identity{}, err
	}
	if claims.TokenType != TokenTypeAccess {
		return Identity{}, fmt.Errorf("%w: expected %s, got %s", ErrInvalidTokenType, TokenTypeAccess, claims.TokenType)
	}
	identity := Identity{userID: claims.UserID, tokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.expiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// TokenSnippet shortens a token for logging.
func TokenSnippet(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
