// Package auth implements sign-up, sign-in and session verification.
// Sessions are stateless HS256 tokens; the Session value is threaded
// explicitly through handlers rather than held in process-wide state.
package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"vibeledger/internal/log"
)

// Session identifies an authenticated user for the duration of one
// request. It is created on sign-in and torn down by clearing the cookie
// on sign-out.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}

type Service struct {
	users    UserStore
	secret   []byte
	lifetime time.Duration
	logger   *log.Logger
}

func NewService(users UserStore, secret string, lifetime time.Duration, logger *log.Logger) *Service {
	if lifetime == 0 {
		lifetime = 24 * time.Hour
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		lifetime: lifetime,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

const minPasswordLen = 8

// Lifetime reports how long issued sessions stay valid.
func (s *Service) Lifetime() time.Duration {
	return s.lifetime
}

// SignUp registers a new account and returns a signed session token, so
// a fresh user lands directly on the dashboard.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (string, Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", Session{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return "", Session{}, fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, minPasswordLen)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, User{
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  strings.TrimSpace(displayName),
	})
	if err != nil {
		return "", Session{}, err
	}

	s.logger.InfoContext(ctx, "user registered",
		log.FieldOperation, log.OpSignUp, log.FieldOwner, user.ID, log.FieldEmail, user.Email)
	return s.issueToken(user)
}

// SignIn authenticates credentials and returns a signed session token.
// Failures collapse to ErrInvalidLogin so callers cannot probe for
// registered addresses.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, Session, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", Session{}, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", Session{}, ErrInvalidLogin
	}

	s.logger.InfoContext(ctx, "user signed in",
		log.FieldOperation, log.OpSignIn, log.FieldOwner, user.ID, log.FieldEmail, user.Email)
	return s.issueToken(user)
}

// Verify parses and validates a session token.
func (s *Service) Verify(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, ErrNoSession
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		ExpiresAt:   expires,
	}, nil
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(user User) (string, Session, error) {
	expires := time.Now().Add(s.lifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: user.Email,
		Name:  user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		ExpiresAt:   expires,
	}, nil
}
