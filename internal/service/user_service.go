package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/logger"
	"quizhub/internal/repository"

	"go.uber.org/zap"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	GetProfile(ctx context.Context, identity auth.Identity) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, identity auth.Identity, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	ListAttempts(ctx context.Context, identity auth.Identity, pagination dto.Pagination) (*dto.UserAttemptsResponse, error)
}

type userServiceImpl struct {
	userRepo    domain.UserRepository
	attemptRepo domain.AttemptRepository
	cost        int
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository, attemptRepo domain.AttemptRepository, bcryptCost int) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		cost:        bcryptCost,
	}
}

func (s *userServiceImpl) currentUser(ctx context.Context, identity auth.Identity) (*domain.User, error) {
	if identity.IsZero() {
		return nil, domain.NewUnauthorizedError("authentication required")
	}
	user, err := s.userRepo.GetUserByID(ctx, identity.UserID())
	if err != nil {
		return nil, domain.NewStorageError("failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(identity.UserID())
	}
	return user, nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, identity auth.Identity) (*dto.UserProfileResponse, error) {
	user, err := s.currentUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserProfileResponse(user)
	return &resp, nil
}

// UpdateProfile applies the fields present in req. Changing the password
// requires the current one and is refused for accounts without a password.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, identity auth.Identity, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	if req.IsEmpty() {
		return nil, domain.ValidationErrors{{
			Field:   "body",
			Code:    domain.CodeMissingField,
			Message: "at least one of name, email or password is required",
		}}
	}

	user, err := s.currentUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ValidationErrors{domain.NewMissingFieldError("name")}
		}
		user.Name = name
	}
	if req.Email != nil {
		user.Email = domain.NormalizeEmail(*req.Email)
	}
	if req.Password != nil {
		if !user.HasPassword() {
			return nil, domain.NewForbiddenError("password cannot be changed for an account without one")
		}
		if req.CurrentPassword == "" {
			return nil, domain.ValidationErrors{domain.NewMissingFieldError("current_password")}
		}
		if !checkPassword(user.PasswordHash, req.CurrentPassword) {
			return nil, domain.ValidationErrors{{
				Field:   "current_password",
				Code:    domain.CodeInvalidFormat,
				Message: "current password is incorrect",
			}}
		}
		hash, err := hashPassword(*req.Password, s.cost)
		if err != nil {
			return nil, domain.NewInternalError("failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.NewConflictError("email is already registered").WithContext("field", "email")
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.NewUserNotFoundError(user.ID)
		default:
			return nil, domain.NewStorageError("failed to update user", err)
		}
	}

	logger.Get().Info("user profile updated", zap.String("user_id", user.ID), zap.Bool("password_changed", req.Password != nil))
	resp := dto.NewUserProfileResponse(user)
	return &resp, nil
}

// ListAttempts returns a page of the caller's attempts, newest first.
func (s *userServiceImpl) ListAttempts(ctx context.Context, identity auth.Identity, pagination dto.Pagination) (*dto.UserAttemptsResponse, error) {
	if identity.IsZero() {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	attempts, total, err := s.attemptRepo.ListAttemptsByUser(ctx, identity.UserID(), pagination.Limit, pagination.Offset)
	if err != nil {
		return nil, domain.NewStorageError("failed to list attempts", err)
	}

	resp := &dto.UserAttemptsResponse{
		Attempts:   make([]dto.AttemptSummary, 0, len(attempts)),
		Pagination: dto.NewPaginationInfo(pagination, total),
	}
	for i := range attempts {
		resp.Attempts = append(resp.Attempts, dto.NewAttemptSummary(&attempts[i]))
	}
	return resp, nil
}
