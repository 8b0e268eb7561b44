package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func newUserFixture() (*MockUserRepository, *MockAttemptRepository, UserService) {
	userRepo := new(MockUserRepository)
	attemptRepo := new(MockAttemptRepository)
	return userRepo, attemptRepo, NewUserService(userRepo, attemptRepo, bcrypt.MinCost)
}

func TestGetProfile(t *testing.T) {
	userRepo, _, svc := newUserFixture()
	userRepo.On("GetUserByID", mock.Anything, "user-1").Return(domain.NewUser("user-1", "Budi", "budi@example.com"), nil)
	userRepo.On("GetUserByID", mock.Anything, "ghost").Return(nil, nil)

	profile, err := svc.GetProfile(context.Background(), testIdentity(t, "user-1"))
	require.NoError(t, err)
	assert.Equal(t, "Budi", profile.Name)

	_, err = svc.GetProfile(context.Background(), testIdentity(t, "ghost"))
	assert.True(t, domain.HasCode(err, domain.CodeUserNotFound))

	_, err = svc.GetProfile(context.Background(), auth.Identity{})
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
}

func TestUpdateProfile_RequiresAField(t *testing.T) {
	_, _, svc := newUserFixture()
	_, err := svc.UpdateProfile(context.Background(), testIdentity(t, "user-1"), &dto.UpdateProfileRequest{})

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
}

func TestUpdateProfile_NameAndEmail(t *testing.T) {
	userRepo, _, svc := newUserFixture()
	userRepo.On("GetUserByID", mock.Anything, "user-1").Return(domain.NewUser("user-1", "Budi", "budi@example.com"), nil)
	userRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Budi S" && u.Email == "budi.s@example.com"
	})).Return(nil)

	profile, err := svc.UpdateProfile(context.Background(), testIdentity(t, "user-1"), &dto.UpdateProfileRequest{
		Name: strPtr(" Budi S "), Email: strPtr("Budi.S@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "budi.s@example.com", profile.Email)
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	userRepo, _, svc := newUserFixture()
	userRepo.On("GetUserByID", mock.Anything, "user-1").Return(domain.NewUser("user-1", "Budi", "budi@example.com"), nil)
	userRepo.On("UpdateUser", mock.Anything, mock.Anything).Return(fmt.Errorf("failed to update user: %w", repository.ErrDuplicate))

	_, err := svc.UpdateProfile(context.Background(), testIdentity(t, "user-1"), &dto.UpdateProfileRequest{Email: strPtr("taken@example.com")})
	assert.True(t, domain.HasCode(err, domain.CodeConflict))
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	userRepo, _, svc := newUserFixture()
	user := userWithPassword(t, "user-1", "budi@example.com", "secret1")
	oldHash := user.PasswordHash
	userRepo.On("GetUserByID", mock.Anything, "user-1").Return(user, nil)
	userRepo.On("UpdateUser", mock.Anything, mock.Anything).Return(nil)
	identity := testIdentity(t, "user-1")

	_, err := svc.UpdateProfile(context.Background(), identity, &dto.UpdateProfileRequest{Password: strPtr("newsecret")})
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "current_password", errs[0].Field)

	_, err = svc.UpdateProfile(context.Background(), identity, &dto.UpdateProfileRequest{
		Password: strPtr("newsecret"), CurrentPassword: "wrong",
	})
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "current password is incorrect", errs[0].Message)

	_, err = svc.UpdateProfile(context.Background(), identity, &dto.UpdateProfileRequest{
		Password: strPtr("newsecret"), CurrentPassword: "secret1",
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.True(t, checkPassword(user.PasswordHash, "newsecret"))
}

func TestUpdateProfile_OAuthOnlyCannotSetPassword(t *testing.T) {
	userRepo, _, svc := newUserFixture()
	userRepo.On("GetUserByID", mock.Anything, "user-2").Return(domain.NewUser("user-2", "Sari", "sari@example.com"), nil)

	_, err := svc.UpdateProfile(context.Background(), testIdentity(t, "user-2"), &dto.UpdateProfileRequest{
		Password: strPtr("newsecret"), CurrentPassword: "x",
	})
	assert.True(t, domain.HasCode(err, domain.CodeForbidden))
	userRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestListAttempts(t *testing.T) {
	_, attemptRepo, svc := newUserFixture()
	attempts := []domain.Attempt{
		{ID: "01ARZ3NDEKTSV4RRFFQ69G5FB1", QuizID: 1, QuizTitle: "Kuis Pancasila", Score: 100},
		{ID: "01ARZ3NDEKTSV4RRFFQ69G5FB0", QuizID: 1, QuizTitle: "Kuis Pancasila", Score: 50},
	}
	attemptRepo.On("ListAttemptsByUser", mock.Anything, "user-1", 2, 2).Return(attempts, 5, nil)

	resp, err := svc.ListAttempts(context.Background(), testIdentity(t, "user-1"), dto.Pagination{Limit: 2, Page: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, resp.Attempts, 2)
	assert.Equal(t, "Kuis Pancasila", resp.Attempts[0].QuizTitle)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, 5, resp.Pagination.TotalItems)
}

func TestListAttempts_StorageError(t *testing.T) {
	_, attemptRepo, svc := newUserFixture()
	attemptRepo.On("ListAttemptsByUser", mock.Anything, "user-1", 10, 0).Return(nil, 0, errors.New("timeout"))

	_, err := svc.ListAttempts(context.Background(), testIdentity(t, "user-1"), dto.Pagination{Limit: 10, Page: 1})
	assert.True(t, domain.HasCode(err, domain.CodeStorage))
}
