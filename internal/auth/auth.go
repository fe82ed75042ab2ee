// server/internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"motohub-api-server/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("username must be 3-30 characters of letters, digits or underscore")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrReservedEmail      = errors.New("emails in the login domain are reserved for usernames")
)

const MinPasswordLength = 6

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens and hashes passwords.
type Service struct {
	secret []byte
	ttl    time.Duration
	cost   int
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, cost: bcrypt.DefaultCost}
}

// WithHashCost is used by tests to keep bcrypt fast.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

// Hashing
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs an HS256 token for the user.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a token string, with or without the "Bearer " prefix.
func (s *Service) ParseToken(tokenString string) (*JWTClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// NormalizeLogin rewrites a bare username to username@domain. Identifiers that
// contain "@" are returned unchanged.
func NormalizeLogin(identifier, domain string) string {
	if strings.Contains(identifier, "@") {
		return identifier
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return ""
	}
	return identifier + "@" + domain
}

// CheckReservedEmail rejects an explicit email in the username domain unless it
// is the address the given username already maps to. Otherwise the owner of a
// bare username could be shadowed at login.
func CheckReservedEmail(email, username, domain string) error {
	if domain == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.HasSuffix(email, "@"+strings.ToLower(domain)) {
		return nil
	}
	if username != "" && email == strings.ToLower(NormalizeLogin(username, domain)) {
		return nil
	}
	return ErrReservedEmail
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ErrInvalidEmail
	}
	return nil
}
