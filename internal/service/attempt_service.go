package service

import (
	"context"

	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/logger"
	"quizhub/internal/util"

	"go.uber.org/zap"
)

// AttemptService scores submissions and presents stored attempts.
type AttemptService interface {
	Submit(ctx context.Context, identity auth.Identity, quizID int64, answers []domain.SubmittedAnswer) (*dto.SubmitResponse, error)
	GetAttemptDetail(ctx context.Context, identity auth.Identity, attemptID string) (*dto.AttemptDetailResponse, error)
}

type attemptServiceImpl struct {
	loader      *AnswerKeyLoader
	attemptRepo domain.AttemptRepository
	quizRepo    domain.QuizRepository
	txManager   domain.TransactionManager
}

func NewAttemptService(
	loader *AnswerKeyLoader,
	attemptRepo domain.AttemptRepository,
	quizRepo domain.QuizRepository,
	txManager domain.TransactionManager,
) AttemptService {
	return &attemptServiceImpl{
		loader:      loader,
		attemptRepo: attemptRepo,
		quizRepo:    quizRepo,
		txManager:   txManager,
	}
}

// Submit scores the answers against the quiz's key and records the attempt
// for the authenticated user. Nothing is read before the identity is checked.
func (s *attemptServiceImpl) Submit(ctx context.Context, identity auth.Identity, quizID int64, answers []domain.SubmittedAnswer) (*dto.SubmitResponse, error) {
	if identity.IsZero() {
		return nil, domain.NewUnauthorizedError("authentication required to submit a quiz")
	}

	key, err := s.loader.LoadByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	score := domain.CalculateScore(key, answers)
	attempt := domain.NewAttempt(util.NewULID(), identity.UserID(), quizID, score, answers)
	attempt.QuizTitle = key.QuizTitle

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.attemptRepo.CreateAttempt(txCtx, attempt)
	})
	if err != nil {
		logger.Get().Error("failed to record attempt",
			zap.String("user_id", identity.UserID()),
			zap.Int64("quiz_id", quizID),
			zap.Error(err))
		return nil, domain.NewStorageError("failed to record quiz attempt", err)
	}

	logger.Get().Info("quiz attempt recorded",
		zap.String("attempt_id", attempt.ID),
		zap.String("user_id", attempt.UserID),
		zap.Int64("quiz_id", quizID),
		zap.Int("score", attempt.Score),
		zap.Int("correct", attempt.CorrectCount),
		zap.Int("total", attempt.TotalQuestions))
	return dto.NewSubmitResponse(attempt), nil
}

// GetAttemptDetail re-joins an attempt with its quiz. Only the owner may view it.
func (s *attemptServiceImpl) GetAttemptDetail(ctx context.Context, identity auth.Identity, attemptID string) (*dto.AttemptDetailResponse, error) {
	if identity.IsZero() {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	attempt, err := s.attemptRepo.FindAttempt(ctx, attemptID)
	if err != nil {
		return nil, domain.NewStorageError("failed to load attempt", err)
	}
	if attempt == nil {
		return nil, domain.NewAttemptNotFoundError(attemptID)
	}
	if attempt.UserID != identity.UserID() {
		return nil, domain.NewForbiddenError("attempt belongs to another user")
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewStorageError("failed to load quiz for attempt", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(attempt.QuizID)
	}
	if attempt.QuizTitle == "" {
		attempt.QuizTitle = quiz.Title
	}

	return dto.NewAttemptDetailResponse(attempt, domain.ReviewAttempt(quiz, attempt.Answers)), nil
}
