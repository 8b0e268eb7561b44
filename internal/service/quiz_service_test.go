package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub/internal/cache"
	"quizhub/internal/domain"
	"quizhub/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quizFixture struct {
	repo      *MockQuizRepository
	txManager *MockTransactionManager
	cache     *MockCache
	service   QuizService
}

func newQuizFixture() *quizFixture {
	f := &quizFixture{
		repo:      new(MockQuizRepository),
		txManager: new(MockTransactionManager),
		cache:     new(MockCache),
	}
	loader := NewAnswerKeyLoader(f.repo, f.cache, time.Minute)
	f.service = NewQuizService(f.repo, f.txManager, loader, 5*time.Second)
	return f
}

func sampleQuizRequest() *dto.QuizRequest {
	return &dto.QuizRequest{
		Title:       "Kuis Pancasila",
		Description: "Kuis dasar kewarganegaraan",
		Questions: []dto.QuestionRequest{{
			Text: "Apa lambang sila pertama?",
			Choices: []dto.ChoiceRequest{
				{Text: "Bintang", IsCorrect: true},
				{Text: "Pohon Beringin"},
				{Text: "Padi dan Kapas"},
				{Text: "Rantai"},
			},
		}},
	}
}

func TestListQuizzes(t *testing.T) {
	f := newQuizFixture()
	f.repo.On("ListQuizzes", mock.Anything).Return([]domain.Quiz{{ID: 1, Title: "A", QuestionCount: 3}}, nil)

	resp, err := f.service.ListQuizzes(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Quizzes, 1)
	assert.Equal(t, 3, resp.Quizzes[0].QuestionCount)
	assert.Nil(t, resp.Quizzes[0].Questions)
}

func TestGetQuizQuestions_HidesCorrectness(t *testing.T) {
	f := newQuizFixture()
	f.repo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)

	resp, err := f.service.GetQuizQuestions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, resp.Questions, 2)
	for _, q := range resp.Questions {
		for _, c := range q.Choices {
			assert.Nil(t, c.IsCorrect)
		}
	}
}

func TestGetQuiz_NotFound(t *testing.T) {
	f := newQuizFixture()
	f.repo.On("GetQuizByID", mock.Anything, int64(5)).Return(nil, nil)

	_, err := f.service.GetQuiz(context.Background(), 5)
	assert.True(t, domain.HasCode(err, domain.CodeQuizNotFound))
}

func TestCreateQuiz(t *testing.T) {
	f := newQuizFixture()
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	f.repo.On("CreateQuiz", mock.Anything, mock.AnythingOfType("*domain.Quiz")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Quiz).ID = 42 }).
		Return(nil)

	resp, err := f.service.CreateQuiz(context.Background(), sampleQuizRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, 1, resp.QuestionCount)
}

func TestCreateQuiz_RequiresCorrectChoice(t *testing.T) {
	f := newQuizFixture()
	req := sampleQuizRequest()
	req.Questions[0].Choices[0].IsCorrect = false

	_, err := f.service.CreateQuiz(context.Background(), req)
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "questions[0].choices", errs[0].Field)
	f.txManager.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestReplaceQuiz(t *testing.T) {
	f := newQuizFixture()
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	f.repo.On("UpdateQuiz", mock.Anything, mock.AnythingOfType("*domain.Quiz")).Return(true, nil)
	f.repo.On("DeleteQuestions", mock.Anything, int64(1)).Return(nil)
	f.repo.On("InsertQuestions", mock.Anything, int64(1), mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, cache.AnswerKeyKey(1)).Return(nil).Once()
	f.repo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)

	resp, err := f.service.ReplaceQuiz(context.Background(), 1, sampleQuizRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	f.cache.AssertExpectations(t)
}

func TestReplaceQuiz_TransactionCarriesDeadline(t *testing.T) {
	f := newQuizFixture()
	f.txManager.On("WithTransaction", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil)
	f.repo.On("UpdateQuiz", mock.Anything, mock.Anything).Return(false, nil)

	_, err := f.service.ReplaceQuiz(context.Background(), 8, sampleQuizRequest())
	assert.True(t, domain.HasCode(err, domain.CodeQuizNotFound))
	f.repo.AssertNotCalled(t, "DeleteQuestions", mock.Anything, mock.Anything)
	f.txManager.AssertExpectations(t)
}

func TestReplaceQuiz_InsertFailureIsStorageError(t *testing.T) {
	f := newQuizFixture()
	f.txManager.On("WithTransaction", mock.Anything).Return(nil)
	f.repo.On("UpdateQuiz", mock.Anything, mock.Anything).Return(true, nil)
	f.repo.On("DeleteQuestions", mock.Anything, int64(1)).Return(nil)
	f.repo.On("InsertQuestions", mock.Anything, int64(1), mock.Anything).Return(errors.New("ORA-12899"))

	_, err := f.service.ReplaceQuiz(context.Background(), 1, sampleQuizRequest())
	assert.True(t, domain.HasCode(err, domain.CodeStorage))
	f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteQuiz(t *testing.T) {
	f := newQuizFixture()
	f.repo.On("DeleteQuiz", mock.Anything, int64(1)).Return(true, nil)
	f.repo.On("DeleteQuiz", mock.Anything, int64(2)).Return(false, nil)
	f.cache.On("Delete", mock.Anything, cache.AnswerKeyKey(1)).Return(nil).Once()

	require.NoError(t, f.service.DeleteQuiz(context.Background(), 1))
	err := f.service.DeleteQuiz(context.Background(), 2)
	assert.True(t, domain.HasCode(err, domain.CodeQuizNotFound))
	f.cache.AssertExpectations(t)
}
