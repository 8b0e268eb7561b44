package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizhub/internal/auth"
	"quizhub/internal/config"
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/handler"
	"quizhub/internal/middleware"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret-key-0123456789abcdef"

// ManualMockQuizService is a manual mock for service.QuizService
type ManualMockQuizService struct {
	ListQuizzesFunc      func(ctx context.Context) (*dto.QuizListResponse, error)
	GetQuizFunc          func(ctx context.Context, quizID int64) (*dto.QuizResponse, error)
	GetQuizQuestionsFunc func(ctx context.Context, quizID int64) (*dto.QuizQuestionsResponse, error)
	CreateQuizFunc       func(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error)
	ReplaceQuizFunc      func(ctx context.Context, quizID int64, req *dto.QuizRequest) (*dto.QuizResponse, error)
	DeleteQuizFunc       func(ctx context.Context, quizID int64) error
}

func (m *ManualMockQuizService) ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx)
	}
	panic("ListQuizzesFunc not implemented")
}

func (m *ManualMockQuizService) GetQuiz(ctx context.Context, quizID int64) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, quizID)
	}
	panic("GetQuizFunc not implemented")
}

func (m *ManualMockQuizService) GetQuizQuestions(ctx context.Context, quizID int64) (*dto.QuizQuestionsResponse, error) {
	if m.GetQuizQuestionsFunc != nil {
		return m.GetQuizQuestionsFunc(ctx, quizID)
	}
	panic("GetQuizQuestionsFunc not implemented")
}

func (m *ManualMockQuizService) CreateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, req)
	}
	panic("CreateQuizFunc not implemented")
}

func (m *ManualMockQuizService) ReplaceQuiz(ctx context.Context, quizID int64, req *dto.QuizRequest) (*dto.QuizResponse, error) {
	if m.ReplaceQuizFunc != nil {
		return m.ReplaceQuizFunc(ctx, quizID, req)
	}
	panic("ReplaceQuizFunc not implemented")
}

func (m *ManualMockQuizService) DeleteQuiz(ctx context.Context, quizID int64) error {
	if m.DeleteQuizFunc != nil {
		return m.DeleteQuizFunc(ctx, quizID)
	}
	panic("DeleteQuizFunc not implemented")
}

// ManualMockAttemptService is a manual mock for service.AttemptService
type ManualMockAttemptService struct {
	SubmitFunc           func(ctx context.Context, identity auth.Identity, quizID int64, answers []domain.SubmittedAnswer) (*dto.SubmitResponse, error)
	GetAttemptDetailFunc func(ctx context.Context, identity auth.Identity, attemptID string) (*dto.AttemptDetailResponse, error)
}

func (m *ManualMockAttemptService) Submit(ctx context.Context, identity auth.Identity, quizID int64, answers []domain.SubmittedAnswer) (*dto.SubmitResponse, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, identity, quizID, answers)
	}
	panic("SubmitFunc not implemented")
}

func (m *ManualMockAttemptService) GetAttemptDetail(ctx context.Context, identity auth.Identity, attemptID string) (*dto.AttemptDetailResponse, error) {
	if m.GetAttemptDetailFunc != nil {
		return m.GetAttemptDetailFunc(ctx, identity, attemptID)
	}
	panic("GetAttemptDetailFunc not implemented")
}

// ManualMockAuthService is a manual mock for service.AuthService
type ManualMockAuthService struct {
	RegisterFunc            func(ctx context.Context, req *dto.RegisterRequest) (*dto.UserProfileResponse, error)
	LoginFunc               func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	AuthenticateFunc        func(ctx context.Context, token string) (auth.Identity, error)
	RefreshFunc             func(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	LogoutFunc              func(ctx context.Context, identity auth.Identity) error
	CheckSessionFunc        func(ctx context.Context, token string) dto.AuthCheckResponse
	OAuthLoginURLFunc       func(state string) (string, error)
	HandleOAuthCallbackFunc func(ctx context.Context, code string) (*dto.LoginResponse, error)
}

func (m *ManualMockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserProfileResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	panic("RegisterFunc not implemented")
}

func (m *ManualMockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	panic("LoginFunc not implemented")
}

func (m *ManualMockAuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	panic("AuthenticateFunc not implemented")
}

func (m *ManualMockAuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	panic("RefreshFunc not implemented")
}

func (m *ManualMockAuthService) Logout(ctx context.Context, identity auth.Identity) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, identity)
	}
	panic("LogoutFunc not implemented")
}

func (m *ManualMockAuthService) CheckSession(ctx context.Context, token string) dto.AuthCheckResponse {
	if m.CheckSessionFunc != nil {
		return m.CheckSessionFunc(ctx, token)
	}
	panic("CheckSessionFunc not implemented")
}

func (m *ManualMockAuthService) OAuthLoginURL(state string) (string, error) {
	if m.OAuthLoginURLFunc != nil {
		return m.OAuthLoginURLFunc(state)
	}
	panic("OAuthLoginURLFunc not implemented")
}

func (m *ManualMockAuthService) HandleOAuthCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	if m.HandleOAuthCallbackFunc != nil {
		return m.HandleOAuthCallbackFunc(ctx, code)
	}
	panic("HandleOAuthCallbackFunc not implemented")
}

// ManualMockUserService is a manual mock for service.UserService
type ManualMockUserService struct {
	GetProfileFunc    func(ctx context.Context, identity auth.Identity) (*dto.UserProfileResponse, error)
	UpdateProfileFunc func(ctx context.Context, identity auth.Identity, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	ListAttemptsFunc  func(ctx context.Context, identity auth.Identity, pagination dto.Pagination) (*dto.UserAttemptsResponse, error)
}

func (m *ManualMockUserService) GetProfile(ctx context.Context, identity auth.Identity) (*dto.UserProfileResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, identity)
	}
	panic("GetProfileFunc not implemented")
}

func (m *ManualMockUserService) UpdateProfile(ctx context.Context, identity auth.Identity, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, identity, req)
	}
	panic("UpdateProfileFunc not implemented")
}

func (m *ManualMockUserService) ListAttempts(ctx context.Context, identity auth.Identity, pagination dto.Pagination) (*dto.UserAttemptsResponse, error) {
	if m.ListAttemptsFunc != nil {
		return m.ListAttemptsFunc(ctx, identity, pagination)
	}
	panic("ListAttemptsFunc not implemented")
}

// tokenAuthenticator verifies tokens with a real token manager.
type tokenAuthenticator struct {
	tokens *auth.TokenManager
}

func (a *tokenAuthenticator) Authenticate(_ context.Context, token string) (auth.Identity, error) {
	identity, err := a.tokens.Authenticate(token)
	if err != nil {
		return auth.Identity{}, domain.NewUnauthorizedError("invalid or expired token")
	}
	return identity, nil
}

type testAuth struct {
	tokens        *auth.TokenManager
	authenticator *tokenAuthenticator
}

func newTestAuth(t *testing.T) *testAuth {
	t.Helper()
	tokens, err := auth.NewTokenManager(testSecret, time.Minute, time.Hour)
	require.NoError(t, err)
	return &testAuth{tokens: tokens, authenticator: &tokenAuthenticator{tokens: tokens}}
}

// bearer issues an access token for userID and returns the header value.
func (a *testAuth) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := a.tokens.Issue(userID, auth.TokenTypeAccess)
	require.NoError(t, err)
	return middleware.BearerSchema + token
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

func newRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dst), string(body))
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type services struct {
	quiz    *ManualMockQuizService
	attempt *ManualMockAttemptService
	auth    *ManualMockAuthService
	user    *ManualMockUserService
	server  config.ServerConfig
}

// setupApp mounts the real routes over the mocks. Unset mocks panic when called.
func setupApp(t *testing.T, s services) (*fiber.App, *testAuth) {
	t.Helper()
	if s.quiz == nil {
		s.quiz = &ManualMockQuizService{}
	}
	if s.attempt == nil {
		s.attempt = &ManualMockAttemptService{}
	}
	if s.auth == nil {
		s.auth = &ManualMockAuthService{}
	}
	if s.user == nil {
		s.user = &ManualMockUserService{}
	}

	ta := newTestAuth(t)
	v := validation.NewValidator()
	app := newTestApp()
	handler.RegisterRoutes(app, handler.Handlers{
		Quiz:          handler.NewQuizHandler(s.quiz, v),
		Attempt:       handler.NewAttemptHandler(s.attempt),
		Auth:          handler.NewAuthHandler(s.auth, s.server, v),
		User:          handler.NewUserHandler(s.user, v),
		Authenticator: ta.authenticator,
		Validation:    middleware.NewValidationMiddleware(v),
	})
	return app, ta
}
