package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quizhub/internal/auth"
	"quizhub/internal/cache"
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/logger"
	"quizhub/internal/repository"
	"quizhub/internal/util"

	"go.uber.org/zap"
)

const invalidCredentialsMessage = "invalid email or password"

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserProfileResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, identity auth.Identity) error
	CheckSession(ctx context.Context, token string) dto.AuthCheckResponse
	OAuthLoginURL(state string) (string, error)
	HandleOAuthCallback(ctx context.Context, code string) (*dto.LoginResponse, error)
}

type authServiceImpl struct {
	userRepo  domain.UserRepository
	tokens    *auth.TokenManager
	cache     domain.Cache
	oauth     OAuthProvider
	cost      int
	dummyHash string
}

// NewAuthService creates a new instance of AuthService. oauth may be nil
// when no provider is configured.
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	cache domain.Cache,
	oauth OAuthProvider,
	bcryptCost int,
) (AuthService, error) {
	// Compared against for unknown emails so both failure paths cost the same.
	dummyHash, err := hashPassword("quizhub-timing-equalizer", bcryptCost)
	if err != nil {
		return nil, err
	}
	return &authServiceImpl{
		userRepo:  userRepo,
		tokens:    tokens,
		cache:     cache,
		oauth:     oauth,
		cost:      bcryptCost,
		dummyHash: dummyHash,
	}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserProfileResponse, error) {
	hash, err := hashPassword(req.Password, s.cost)
	if err != nil {
		return nil, domain.NewInternalError("failed to hash password", err)
	}

	user := domain.NewUser(util.NewULID(), req.Name, req.Email)
	user.PasswordHash = hash
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewConflictError("email is already registered").WithContext("field", "email")
		}
		return nil, domain.NewStorageError("failed to create user", err)
	}

	logger.Get().Info("user registered", zap.String("user_id", user.ID))
	resp := dto.NewUserProfileResponse(user)
	return &resp, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		return nil, domain.NewStorageError("failed to look up user", err)
	}
	if user == nil || !user.HasPassword() {
		checkPassword(s.dummyHash, req.Password)
		return nil, domain.NewUnauthorizedError(invalidCredentialsMessage)
	}
	if !checkPassword(user.PasswordHash, req.Password) {
		logger.Get().Warn("password login failed", zap.String("user_id", user.ID))
		return nil, domain.NewUnauthorizedError(invalidCredentialsMessage)
	}

	tokens, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("user logged in", zap.String("user_id", user.ID))
	return &dto.LoginResponse{User: dto.NewUserProfileResponse(user), Tokens: *tokens}, nil
}

func (s *authServiceImpl) issuePair(userID string) (*dto.TokenResponse, error) {
	access, claims, err := s.tokens.Issue(userID, auth.TokenTypeAccess)
	if err != nil {
		return nil, domain.NewInternalError("failed to create access token", err)
	}
	refresh, _, err := s.tokens.Issue(userID, auth.TokenTypeRefresh)
	if err != nil {
		return nil, domain.NewInternalError("failed to create refresh token", err)
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// Authenticate verifies an access token and rejects revoked ones. A failing
// revocation store is logged and does not block the request.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	identity, err := s.tokens.Authenticate(token)
	if err != nil {
		logger.Get().Debug("token rejected", zap.String("token_snippet", auth.TokenSnippet(token)), zap.Error(err))
		return auth.Identity{}, domain.NewUnauthorizedError("invalid or expired token")
	}

	if s.cache != nil && identity.TokenID() != "" {
		_, err := s.cache.Get(ctx, cache.RevokedTokenKey(identity.TokenID()))
		switch {
		case err == nil:
			return auth.Identity{}, domain.NewUnauthorizedError("token has been revoked")
		case !errors.Is(err, domain.ErrCacheMiss):
			logger.Get().Warn("token revocation check failed", zap.String("user_id", identity.UserID()), zap.Error(err))
		}
	}
	return identity, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		logger.Get().Warn("refresh token rejected", zap.String("refresh_token_snippet", auth.TokenSnippet(refreshToken)), zap.Error(err))
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.NewStorageError("failed to look up user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(claims.UserID)
	}

	tokens, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("JWT token refreshed", zap.String("user_id", user.ID))
	return tokens, nil
}

// Logout revokes the access token until it would have expired anyway.
func (s *authServiceImpl) Logout(ctx context.Context, identity auth.Identity) error {
	if identity.IsZero() || identity.TokenID() == "" || s.cache == nil {
		return nil
	}
	ttl := time.Until(identity.ExpiresAt())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, cache.RevokedTokenKey(identity.TokenID()), identity.UserID(), ttl); err != nil {
		return domain.NewInternalError("failed to revoke token", err)
	}
	logger.Get().Info("user logged out", zap.String("user_id", identity.UserID()))
	return nil
}

func (s *authServiceImpl) CheckSession(ctx context.Context, token string) dto.AuthCheckResponse {
	if strings.TrimSpace(token) == "" {
		return dto.AuthCheckResponse{}
	}
	identity, err := s.Authenticate(ctx, token)
	if err != nil {
		return dto.AuthCheckResponse{}
	}
	user, err := s.userRepo.GetUserByID(ctx, identity.UserID())
	if err != nil {
		logger.Get().Warn("session check lookup failed", zap.String("user_id", identity.UserID()), zap.Error(err))
		return dto.AuthCheckResponse{}
	}
	return dto.NewAuthCheckResponse(user)
}

func (s *authServiceImpl) OAuthLoginURL(state string) (string, error) {
	if s.oauth == nil {
		return "", domain.NewNotFoundError(ErrOAuthNotConfigured.Error())
	}
	return s.oauth.AuthCodeURL(state), nil
}

// HandleOAuthCallback signs in the provider account, linking it to an
// existing user with the same email or creating a new one.
func (s *authServiceImpl) HandleOAuthCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	if s.oauth == nil {
		return nil, domain.NewNotFoundError(ErrOAuthNotConfigured.Error())
	}
	profile, err := s.oauth.FetchProfile(ctx, code)
	if err != nil {
		logger.Get().Warn("oauth callback failed", zap.String("provider", s.oauth.Name()), zap.Error(err))
		return nil, domain.NewError(domain.CodeUnauthorized, "oauth login failed", err)
	}

	user, err := s.resolveOAuthUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{User: dto.NewUserProfileResponse(user), Tokens: *tokens}, nil
}

func (s *authServiceImpl) resolveOAuthUser(ctx context.Context, profile *OAuthProfile) (*domain.User, error) {
	appLogger := logger.Get()

	user, err := s.userRepo.GetUserByOAuth(ctx, profile.Provider, profile.Subject)
	if err != nil {
		return nil, domain.NewStorageError("failed to look up oauth user", err)
	}
	if user != nil {
		if profile.Image != "" && profile.Image != user.Image {
			user.Image = profile.Image
			user.UpdatedAt = time.Now().UTC()
			if err := s.userRepo.UpdateUser(ctx, user); err != nil {
				appLogger.Warn("failed to refresh oauth profile image", zap.String("user_id", user.ID), zap.Error(err))
			}
		}
		appLogger.Info("user logged in via oauth", zap.String("user_id", user.ID), zap.String("provider", profile.Provider))
		return user, nil
	}

	if profile.Email == "" {
		return nil, domain.NewUnauthorizedError("oauth account has no verified email")
	}

	user, err = s.userRepo.GetUserByEmail(ctx, domain.NormalizeEmail(profile.Email))
	if err != nil {
		return nil, domain.NewStorageError("failed to look up user", err)
	}
	if user != nil {
		user.OAuthProvider = profile.Provider
		user.OAuthSubject = profile.Subject
		if user.Image == "" {
			user.Image = profile.Image
		}
		user.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, domain.NewConflictError("oauth account is linked to another user")
			}
			return nil, domain.NewStorageError("failed to link oauth account", err)
		}
		appLogger.Info("oauth account linked", zap.String("user_id", user.ID), zap.String("provider", profile.Provider))
		return user, nil
	}

	name := profile.Name
	if name == "" {
		name = strings.SplitN(profile.Email, "@", 2)[0]
	}
	user = domain.NewUser(util.NewULID(), name, profile.Email)
	user.Image = profile.Image
	user.OAuthProvider = profile.Provider
	user.OAuthSubject = profile.Subject
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewConflictError("account already exists")
		}
		return nil, domain.NewStorageError("failed to create user", err)
	}
	appLogger.Info("new user created via oauth", zap.String("user_id", user.ID), zap.String("provider", profile.Provider))
	return user, nil
}
