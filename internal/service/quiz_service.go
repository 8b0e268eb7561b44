package service

import (
	"context"
	"errors"
	"time"

	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/logger"

	"go.uber.org/zap"
)

// QuizService manages the quiz catalog.
type QuizService interface {
	ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error)
	GetQuiz(ctx context.Context, quizID int64) (*dto.QuizResponse, error)
	GetQuizQuestions(ctx context.Context, quizID int64) (*dto.QuizQuestionsResponse, error)
	CreateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error)
	ReplaceQuiz(ctx context.Context, quizID int64, req *dto.QuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, quizID int64) error
}

type quizServiceImpl struct {
	repo      domain.QuizRepository
	txManager domain.TransactionManager
	loader    *AnswerKeyLoader
	txTimeout time.Duration
}

func NewQuizService(
	repo domain.QuizRepository,
	txManager domain.TransactionManager,
	loader *AnswerKeyLoader,
	txTimeout time.Duration,
) QuizService {
	return &quizServiceImpl{
		repo:      repo,
		txManager: txManager,
		loader:    loader,
		txTimeout: txTimeout,
	}
}

// asServiceError keeps domain errors and wraps anything else as a storage failure.
func asServiceError(message string, err error) error {
	var domainErr *domain.DomainError
	var validationErrs domain.ValidationErrors
	if errors.As(err, &domainErr) || errors.As(err, &validationErrs) {
		return err
	}
	return domain.NewStorageError(message, err)
}

func (s *quizServiceImpl) ListQuizzes(ctx context.Context) (*dto.QuizListResponse, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.NewStorageError("failed to list quizzes", err)
	}
	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizResponse, 0, len(quizzes))}
	for i := range quizzes {
		resp.Quizzes = append(resp.Quizzes, dto.NewQuizResponse(&quizzes[i], false))
	}
	return resp, nil
}

func (s *quizServiceImpl) getQuiz(ctx context.Context, quizID int64) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewStorageError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return quiz, nil
}

// GetQuiz returns the authoring view, with correctness flags.
func (s *quizServiceImpl) GetQuiz(ctx context.Context, quizID int64) (*dto.QuizResponse, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewQuizResponse(quiz, true)
	return &resp, nil
}

// GetQuizQuestions returns the play view, without correctness flags.
func (s *quizServiceImpl) GetQuizQuestions(ctx context.Context, quizID int64) (*dto.QuizQuestionsResponse, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return &dto.QuizQuestionsResponse{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		Questions: dto.NewQuestionResponses(quiz.Questions, false),
	}, nil
}

func (s *quizServiceImpl) CreateQuiz(ctx context.Context, req *dto.QuizRequest) (*dto.QuizResponse, error) {
	quiz := req.ToDomain()
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.CreateQuiz(txCtx, quiz)
	})
	if err != nil {
		return nil, domain.NewStorageError("failed to create quiz", err)
	}

	logger.Get().Info("quiz created", zap.Int64("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	resp := dto.NewQuizResponse(quiz, true)
	return &resp, nil
}

// ReplaceQuiz rewrites the quiz header and swaps its whole question set in
// one transaction bounded by the configured timeout.
func (s *quizServiceImpl) ReplaceQuiz(ctx context.Context, quizID int64, req *dto.QuizRequest) (*dto.QuizResponse, error) {
	quiz := req.ToDomain()
	quiz.ID = quizID
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	txCtx := ctx
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	err := s.txManager.WithTransaction(txCtx, func(txCtx context.Context) error {
		found, err := s.repo.UpdateQuiz(txCtx, quiz)
		if err != nil {
			return err
		}
		if !found {
			return domain.NewQuizNotFoundError(quizID)
		}
		if err := s.repo.DeleteQuestions(txCtx, quizID); err != nil {
			return err
		}
		return s.repo.InsertQuestions(txCtx, quizID, quiz.Questions)
	})
	if err != nil {
		return nil, asServiceError("failed to replace quiz", err)
	}
	s.loader.Invalidate(ctx, quizID)

	logger.Get().Info("quiz replaced", zap.Int64("quiz_id", quizID), zap.Int("questions", len(quiz.Questions)))
	return s.GetQuiz(ctx, quizID)
}

func (s *quizServiceImpl) DeleteQuiz(ctx context.Context, quizID int64) error {
	found, err := s.repo.DeleteQuiz(ctx, quizID)
	if err != nil {
		return domain.NewStorageError("failed to delete quiz", err)
	}
	if !found {
		return domain.NewQuizNotFoundError(quizID)
	}
	s.loader.Invalidate(ctx, quizID)
	logger.Get().Info("quiz deleted", zap.Int64("quiz_id", quizID))
	return nil
}
