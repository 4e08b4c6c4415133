package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Token types carried in the typ claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const issuer = "go-inventory-ledger"

// Claims represents the JWT claims structure
type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RoleCode     string    `json:"role_code"`
	Privileges   []string  `json:"privileges,omitempty"`
	TokenVersion string    `json:"token_version"`
	Type         string    `json:"typ"`
	jwt.RegisteredClaims
}

// Subject is the identity a token is issued for.
type Subject struct {
	UserID       uuid.UUID
	Email        string
	Name         string
	RoleCode     string
	Privileges   []string
	TokenVersion string
}

type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Manager signs and verifies HS256 tokens with one secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GeneratePair issues an access token and a refresh token for sub.
func (m *Manager) GeneratePair(sub Subject) (*TokenPair, error) {
	access, expiresAt, err := m.GenerateToken(TypeAccess, sub)
	if err != nil {
		return nil, err
	}
	// refresh tokens carry no privileges; they are reloaded on refresh
	refreshSub := sub
	refreshSub.Privileges = nil
	refresh, _, err := m.GenerateToken(TypeRefresh, refreshSub)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// GenerateToken creates a signed token of the given type.
func (m *Manager) GenerateToken(tokenType string, sub Subject) (string, time.Time, error) {
	ttl := m.accessTTL
	if tokenType == TypeRefresh {
		ttl = m.refreshTTL
	}
	now := m.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		UserID:       sub.UserID,
		Email:        sub.Email,
		Name:         sub.Name,
		RoleCode:     sub.RoleCode,
		Privileges:   sub.Privileges,
		TokenVersion: sub.TokenVersion,
		Type:         tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken parses a token and checks its signature, expiry and type.
func (m *Manager) ValidateToken(tokenString, expectedType string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != expectedType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
