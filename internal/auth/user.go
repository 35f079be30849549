package auth

import (
	"context"
	"errors"
	"time"
)

// User is an account holder. PasswordHash is a bcrypt digest; the clear
// password never leaves the sign-in/sign-up handlers.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password too short")
	ErrInvalidLogin = errors.New("invalid email or password")
	ErrNoSession    = errors.New("no active session")
)

// UserStore is the persistence port the auth service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
}
