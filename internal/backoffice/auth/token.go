// Package auth keeps the dashboard session in a signed JWT cookie and guards
// HTTP routes by login and module permission.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the logged-in user as carried by the session token.
type Session struct {
	UserID    uint            `json:"uid"`
	Username  string          `json:"username"`
	Role      models.Role     `json:"role"`
	Modules   []models.Module `json:"modules,omitempty"`
	CSRFToken string          `json:"csrf"`
}

type claims struct {
	Session
	jwt.RegisteredClaims
}

// NewSession starts a session for user with a fresh CSRF token.
func NewSession(user *models.User) Session {
	s := Session{UserID: user.ID, CSRFToken: uuid.NewString()}
	s.refresh(user)
	return s
}

// refresh copies the current name, role and modules of user into s.
func (s *Session) refresh(user *models.User) {
	s.Username = user.Username
	s.Role = user.Role
	s.Modules = nil
	for _, p := range user.Permissions {
		s.Modules = append(s.Modules, p.Module)
	}
}

// HasModule reports whether the session may open module m. Admins may open
// every module.
func (s *Session) HasModule(m models.Module) bool {
	if s.Role == models.RoleAdmin {
		return true
	}
	for _, granted := range s.Modules {
		if granted == m {
			return true
		}
	}
	return false
}

func (s *Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// VerifyCSRF compares token with the session's CSRF token in constant time.
func (s *Session) VerifyCSRF(token string) error {
	if token == "" || s.CSRFToken == "" {
		return e.ErrInvalidCSRF
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) != 1 {
		return e.ErrInvalidCSRF
	}
	return nil
}

// Actor identifies the session user as the author of an operation from ip.
func (s *Session) Actor(ip string) models.Actor {
	return models.UserActor(s.UserID, ip)
}

// GenerateToken signs s with HS256. The token expires after ttl.
func GenerateToken(s Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(s.UserID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of tokenString and returns
// its session. Every failure matches ErrUnauthenticated.
func ParseToken(tokenString, secret string) (*Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrUnauthenticated, err)
	}
	if !token.Valid || c.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token claims", e.ErrUnauthenticated)
	}
	return &c.Session, nil
}
