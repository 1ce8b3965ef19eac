// Package token issues and verifies RS256-signed bearer tokens.
package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("token key is not configured")

	shapeRegex = regexp.MustCompile(`^\S+\.\S+\.\S+$`)
)

// Claims is the payload carried by every issued token. Subject holds the user id.
type Claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.StandardClaims
}

// Identity is what gets signed into a token.
type Identity struct {
	Subject string
	Name    string
	Email   string
	IsAdmin bool
}

// Issued is a signed token plus its expiry, nil when the token never expires.
type Issued struct {
	Token     string
	ExpiresAt *time.Time
}

// Manager signs tokens with a private key and verifies them with the
// matching public key. Either key may be absent when only one side is needed.
type Manager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
	now        func() time.Time
}

// NewManager parses PEM key material. A ttl of zero issues non-expiring tokens.
func NewManager(privatePEM, publicPEM []byte, ttl time.Duration) (*Manager, error) {
	m := &Manager{ttl: ttl, now: time.Now}

	if len(privatePEM) > 0 {
		key, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		m.privateKey = key
	}

	if len(publicPEM) > 0 {
		key, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		m.publicKey = key
	}

	return m, nil
}

// Issue signs a token for id using RS256.
func (m *Manager) Issue(id Identity) (*Issued, error) {
	if m.privateKey == nil {
		return nil, ErrMissingKey
	}

	now := m.now()
	claims := Claims{
		Name:    id.Name,
		Email:   id.Email,
		IsAdmin: id.IsAdmin,
		StandardClaims: jwt.StandardClaims{
			Subject:  id.Subject,
			IssuedAt: now.Unix(),
		},
	}

	issued := &Issued{}
	if m.ttl > 0 {
		exp := now.Add(m.ttl)
		claims.ExpiresAt = exp.Unix()
		issued.ExpiresAt = &exp
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	issued.Token = signed
	return issued, nil
}

// Verify checks the RS256 signature and standard time claims and returns the payload.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if m.publicKey == nil {
		return nil, ErrMissingKey
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, ErrInvalidToken
		}
		return m.publicKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidShape reports whether s looks like a three-part compact token.
func ValidShape(s string) bool {
	return shapeRegex.MatchString(s)
}
