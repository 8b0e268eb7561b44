package dto

import (
	"time"

	"quizhub/internal/domain"
)

// UserProfileResponse represents a user's profile
// @Description User profile information
type UserProfileResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Image         string    `json:"image,omitempty"`
	OAuthProvider string    `json:"oauth_provider,omitempty"`
	HasPassword   bool      `json:"has_password"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewUserProfileResponse(user *domain.User) UserProfileResponse {
	return UserProfileResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Image:         user.Image,
		OAuthProvider: user.OAuthProvider,
		HasPassword:   user.HasPassword(),
		CreatedAt:     user.CreatedAt,
	}
}

// UpdateProfileRequest is the body of PUT /users/me. Omitted fields are unchanged.
// @Description Profile update; at least one field is required
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email" validate:"omitempty,email,max=255"`
	Password        *string `json:"password" validate:"omitempty,min=6,max=72"`
	CurrentPassword string  `json:"current_password"`
}

// IsEmpty reports whether no field would change.
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil
}

// Pagination carries limit/page query parameters.
type Pagination struct {
	Limit  int `query:"limit"`
	Page   int `query:"page"`
	Offset int `query:"-"`
}

// PaginationInfo describes the page returned.
type PaginationInfo struct {
	Limit      int `json:"limit"`
	Page       int `json:"page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

func NewPaginationInfo(p Pagination, total int) PaginationInfo {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PaginationInfo{Limit: p.Limit, Page: p.Page, TotalItems: total, TotalPages: pages}
}

// AttemptSummary is one row of the attempt history.
type AttemptSummary struct {
	ID             string    `json:"id"`
	QuizID         int64     `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewAttemptSummary(a *domain.Attempt) AttemptSummary {
	return AttemptSummary{
		ID:             a.ID,
		QuizID:         a.QuizID,
		QuizTitle:      a.QuizTitle,
		Score:          a.Score,
		CorrectCount:   a.CorrectCount,
		TotalQuestions: a.TotalQuestions,
		CreatedAt:      a.CreatedAt,
	}
}

// UserAttemptsResponse is a page of the caller's attempts, newest first.
// @Description Paginated attempt history
type UserAttemptsResponse struct {
	Attempts   []AttemptSummary `json:"attempts"`
	Pagination PaginationInfo   `json:"pagination"`
}
