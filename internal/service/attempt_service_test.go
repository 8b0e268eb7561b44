package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub/internal/adapter"
	"quizhub/internal/auth"
	"quizhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type attemptFixture struct {
	quizRepo    *MockQuizRepository
	attemptRepo *MockAttemptRepository
	txManager   *MockTransactionManager
	service     AttemptService
}

func newAttemptFixture() *attemptFixture {
	f := &attemptFixture{
		quizRepo:    new(MockQuizRepository),
		attemptRepo: new(MockAttemptRepository),
		txManager:   new(MockTransactionManager),
	}
	loader := NewAnswerKeyLoader(f.quizRepo, adapter.NewNoopCache(), time.Minute)
	f.service = NewAttemptService(loader, f.attemptRepo, f.quizRepo, f.txManager)
	return f
}

func TestSubmit_ScoresAndRecords(t *testing.T) {
	tests := []struct {
		name        string
		answers     []domain.SubmittedAnswer
		wantCorrect int
		wantScore   int
	}{
		{"one of two correct", []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}, {QuestionID: 2, ChoiceID: 3}}, 1, 50},
		{"partial submission uses key size", []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}}, 1, 50},
		{"all correct", []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}, {QuestionID: 2, ChoiceID: 4}}, 2, 100},
		{"none correct", []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 2}, {QuestionID: 2, ChoiceID: 3}}, 0, 0},
		{"foreign question ignored", []domain.SubmittedAnswer{{QuestionID: 77, ChoiceID: 1}, {QuestionID: 2, ChoiceID: 4}}, 1, 50},
		{"no answers", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture()
			identity := testIdentity(t, "user-1")

			f.quizRepo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)
			f.txManager.On("WithTransaction", mock.Anything).Return(nil)
			f.attemptRepo.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a *domain.Attempt) bool {
				return a.UserID == "user-1" && a.QuizID == 1 && a.Score == tt.wantScore &&
					a.CorrectCount == tt.wantCorrect && a.TotalQuestions == 2
			})).Return(nil).Once()

			resp, err := f.service.Submit(context.Background(), identity, 1, tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, resp.Score)
			assert.Equal(t, tt.wantScore, resp.Percentage)
			assert.Equal(t, tt.wantCorrect, resp.CorrectCount)
			assert.Equal(t, 2, resp.TotalQuestions)
			assert.Equal(t, "Kuis Pancasila", resp.QuizTitle)
			assert.Len(t, resp.AttemptID, 26)
			f.attemptRepo.AssertExpectations(t)
		})
	}
}

func TestSubmit_UnauthenticatedDoesNoWork(t *testing.T) {
	f := newAttemptFixture()

	_, err := f.service.Submit(context.Background(), auth.Identity{}, 1, []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}})
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
	f.quizRepo.AssertNotCalled(t, "GetQuizByID", mock.Anything, mock.Anything)
	f.attemptRepo.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
}

func TestSubmit_UnknownQuiz(t *testing.T) {
	f := newAttemptFixture()
	f.quizRepo.On("GetQuizByID", mock.Anything, int64(9)).Return(nil, nil)

	_, err := f.service.Submit(context.Background(), testIdentity(t, "user-1"), 9, nil)
	assert.True(t, domain.HasCode(err, domain.CodeQuizNotFound))
	f.attemptRepo.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
}

func TestSubmit_QuizDeletedBeforeInsert(t *testing.T) {
	f := newAttemptFixture()
	f.quizRepo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	fkErr := errors.New("insert or update on table \"quiz_attempts\" violates foreign key constraint")
	f.attemptRepo.On("CreateAttempt", mock.Anything, mock.Anything).Return(fkErr)

	resp, err := f.service.Submit(context.Background(), testIdentity(t, "user-1"), 1,
		[]domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}})
	assert.Nil(t, resp)
	assert.True(t, domain.HasCode(err, domain.CodeStorage))
	assert.ErrorIs(t, err, fkErr)
}

func TestSubmit_IdenticalSubmissionsCreateDistinctAttempts(t *testing.T) {
	f := newAttemptFixture()
	f.quizRepo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	f.attemptRepo.On("CreateAttempt", mock.Anything, mock.Anything).Return(nil).Twice()

	identity := testIdentity(t, "user-1")
	answers := []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}}
	first, err := f.service.Submit(context.Background(), identity, 1, answers)
	require.NoError(t, err)
	second, err := f.service.Submit(context.Background(), identity, 1, answers)
	require.NoError(t, err)

	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	f.attemptRepo.AssertNumberOfCalls(t, "CreateAttempt", 2)
}

func TestGetAttemptDetail(t *testing.T) {
	stored := &domain.Attempt{
		ID:             "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		UserID:         "user-1",
		QuizID:         1,
		QuizTitle:      "Kuis Pancasila",
		Score:          50,
		CorrectCount:   1,
		TotalQuestions: 2,
		Answers:        []domain.SubmittedAnswer{{QuestionID: 1, ChoiceID: 1}, {QuestionID: 2, ChoiceID: 3}},
	}

	t.Run("owner sees per-question review", func(t *testing.T) {
		f := newAttemptFixture()
		f.attemptRepo.On("FindAttempt", mock.Anything, stored.ID).Return(stored, nil)
		f.quizRepo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)

		detail, err := f.service.GetAttemptDetail(context.Background(), testIdentity(t, "user-1"), stored.ID)
		require.NoError(t, err)
		require.Len(t, detail.Questions, 2)
		assert.True(t, detail.Questions[0].IsCorrect)
		assert.False(t, detail.Questions[1].IsCorrect)
		assert.Equal(t, int64(4), *detail.Questions[1].CorrectChoiceID)
		assert.Equal(t, int64(3), *detail.Questions[1].SelectedChoiceID)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		f := newAttemptFixture()
		f.attemptRepo.On("FindAttempt", mock.Anything, stored.ID).Return(stored, nil)

		_, err := f.service.GetAttemptDetail(context.Background(), testIdentity(t, "user-2"), stored.ID)
		assert.True(t, domain.HasCode(err, domain.CodeForbidden))
	})

	t.Run("missing attempt", func(t *testing.T) {
		f := newAttemptFixture()
		f.attemptRepo.On("FindAttempt", mock.Anything, "01ARZ3NDEKTSV4RRFFQ69G5FAW").Return(nil, nil)

		_, err := f.service.GetAttemptDetail(context.Background(), testIdentity(t, "user-1"), "01ARZ3NDEKTSV4RRFFQ69G5FAW")
		assert.True(t, domain.HasCode(err, domain.CodeAttemptNotFound))
	})
}
