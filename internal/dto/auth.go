package dto

import (
	"time"

	"quizhub/internal/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse carries a freshly issued token pair.
// @Description Access and refresh tokens
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginResponse is returned by password and OAuth login.
type LoginResponse struct {
	User   UserProfileResponse `json:"user"`
	Tokens TokenResponse       `json:"tokens"`
}

// AuthCheckResponse reports the caller's session state.
// @Description Session state; never an error
type AuthCheckResponse struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	UserID          string `json:"user_id,omitempty"`
	UserName        string `json:"user_name,omitempty"`
	UserImage       string `json:"user_image,omitempty"`
}

func NewAuthCheckResponse(user *domain.User) AuthCheckResponse {
	if user == nil {
		return AuthCheckResponse{}
	}
	return AuthCheckResponse{
		IsAuthenticated: true,
		UserID:          user.ID,
		UserName:        user.Name,
		UserImage:       user.Image,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
