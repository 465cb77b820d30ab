package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Authenticate(ctx context.Context, rawToken string) (*TokenClaims, error)
	CurrentUser(ctx context.Context, userID snowflake.ID) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type CreateUserRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// TokenClaims is the authenticated identity carried by a bearer token.
type TokenClaims struct {
	UserID snowflake.ID
	Role   string
}
