package dto

import (
	"time"

	"github.com/noah-isme/turmas-api/internal/models"
)

// RegisterRequest creates a professor or student account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Type     string `json:"type" validate:"required,oneof=professor aluno"`
}

// LoginRequest carries the credentials of an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes the caller's own profile. NewPassword requires CurrentPassword.
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email           *string `json:"email" validate:"omitempty,email,max=254"`
	CurrentPassword string  `json:"current_password" validate:"required_with=NewPassword"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=6,max=72"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse hides the password hash.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Type:      string(user.Type),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// SessionUserResponse is the user snapshot taken at login.
type SessionUserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

// SessionResponse describes the active session.
type SessionResponse struct {
	User      SessionUserResponse `json:"user"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// NewSessionResponse maps a stored session. The session token is never echoed.
func NewSessionResponse(session models.Session) SessionResponse {
	return SessionResponse{
		User: SessionUserResponse{
			ID:    session.User.ID,
			Name:  session.User.Name,
			Email: session.User.Email,
			Type:  string(session.User.Type),
		},
		ExpiresAt: session.ExpiresAtTime().UTC(),
	}
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	ExpiresAt   time.Time           `json:"expires_at"`
	User        SessionUserResponse `json:"user"`
}
