package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"quizhub/internal/adapter"
	"quizhub/internal/cache"
	"quizhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnswerKeyLoader_LoadFromDatabaseAndCache(t *testing.T) {
	repo := new(MockQuizRepository)
	mockCache := new(MockCache)
	loader := NewAnswerKeyLoader(repo, mockCache, 10*time.Minute)
	key := cache.AnswerKeyKey(1)

	mockCache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss).Once()
	repo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil).Once()
	mockCache.On("Set", mock.Anything, key, mock.AnythingOfType("string"), 10*time.Minute).Return(nil).Once()

	answerKey, err := loader.Load(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Kuis Pancasila", answerKey.QuizTitle)
	assert.Equal(t, map[int64]int64{1: 1, 2: 4}, answerKey.Correct)

	repo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestAnswerKeyLoader_CacheHitSkipsDatabase(t *testing.T) {
	repo := new(MockQuizRepository)
	mockCache := new(MockCache)
	loader := NewAnswerKeyLoader(repo, mockCache, time.Minute)

	cached, err := json.Marshal(domain.BuildAnswerKey(1, "Kuis Pancasila", twoQuestionQuiz().Questions))
	require.NoError(t, err)
	mockCache.On("Get", mock.Anything, cache.AnswerKeyKey(1)).Return(string(cached), nil)

	answerKey, err := loader.LoadByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), answerKey.Correct[2])
	repo.AssertNotCalled(t, "GetQuizByID", mock.Anything, mock.Anything)
}

func TestAnswerKeyLoader_CacheFailureFallsThrough(t *testing.T) {
	repo := new(MockQuizRepository)
	mockCache := new(MockCache)
	loader := NewAnswerKeyLoader(repo, mockCache, time.Minute)

	mockCache.On("Get", mock.Anything, mock.Anything).Return("", errors.New("redis down"))
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	repo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil)

	answerKey, err := loader.LoadByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, answerKey.TotalQuestions())
}

func TestAnswerKeyLoader_Errors(t *testing.T) {
	repo := new(MockQuizRepository)
	loader := NewAnswerKeyLoader(repo, adapter.NewNoopCache(), time.Minute)

	_, err := loader.Load(context.Background(), "abc")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidInput))

	_, err = loader.Load(context.Background(), "0")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidInput))

	_, err = loader.LoadByID(context.Background(), -4)
	assert.True(t, domain.HasCode(err, domain.CodeInvalidInput))

	repo.On("GetQuizByID", mock.Anything, int64(99)).Return(nil, nil)
	_, err = loader.LoadByID(context.Background(), 99)
	assert.True(t, domain.HasCode(err, domain.CodeQuizNotFound))

	repo.On("GetQuizByID", mock.Anything, int64(5)).Return(nil, errors.New("connection refused"))
	_, err = loader.LoadByID(context.Background(), 5)
	assert.True(t, domain.HasCode(err, domain.CodeStorage))
}

func TestAnswerKeyLoader_EmptyQuizYieldsEmptyKey(t *testing.T) {
	repo := new(MockQuizRepository)
	loader := NewAnswerKeyLoader(repo, adapter.NewNoopCache(), time.Minute)
	repo.On("GetQuizByID", mock.Anything, int64(3)).Return(&domain.Quiz{ID: 3, Title: "Empty"}, nil)

	answerKey, err := loader.LoadByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, answerKey.TotalQuestions())
}

func TestAnswerKeyLoader_ConcurrentLoads(t *testing.T) {
	repo := new(MockQuizRepository)
	loader := NewAnswerKeyLoader(repo, adapter.NewNoopCache(), time.Minute)
	repo.On("GetQuizByID", mock.Anything, int64(1)).
		After(50*time.Millisecond).
		Return(twoQuestionQuiz(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answerKey, err := loader.LoadByID(context.Background(), 1)
			assert.NoError(t, err)
			assert.Equal(t, 2, answerKey.TotalQuestions())
		}()
	}
	wg.Wait()

	calls := 0
	for _, c := range repo.Calls {
		if c.Method == "GetQuizByID" {
			calls++
		}
	}
	assert.GreaterOrEqual(t, calls, 1)
	assert.Less(t, calls, 8)
}

func TestAnswerKeyLoader_Invalidate(t *testing.T) {
	mockCache := new(MockCache)
	loader := NewAnswerKeyLoader(new(MockQuizRepository), mockCache, time.Minute)
	mockCache.On("Delete", mock.Anything, cache.AnswerKeyKey(7)).Return(errors.New("ignored")).Once()

	loader.Invalidate(context.Background(), 7)
	mockCache.AssertExpectations(t)
}

func TestAnswerKeyLoader_InvalidateDuringLoadSkipsCacheWrite(t *testing.T) {
	repo := new(MockQuizRepository)
	mockCache := new(MockCache)
	loader := NewAnswerKeyLoader(repo, mockCache, time.Minute)
	key := cache.AnswerKeyKey(1)

	started := make(chan struct{})
	release := make(chan struct{})
	mockCache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss)
	mockCache.On("Delete", mock.Anything, key).Return(nil).Once()
	repo.On("GetQuizByID", mock.Anything, int64(1)).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(twoQuestionQuiz(), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := loader.LoadByID(context.Background(), 1)
		done <- err
	}()

	<-started
	loader.Invalidate(context.Background(), 1)
	close(release)
	require.NoError(t, <-done)

	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestAnswerKeyLoader_LoadAfterInvalidateCaches(t *testing.T) {
	repo := new(MockQuizRepository)
	mockCache := new(MockCache)
	loader := NewAnswerKeyLoader(repo, mockCache, time.Minute)
	key := cache.AnswerKeyKey(1)

	mockCache.On("Delete", mock.Anything, key).Return(nil).Once()
	mockCache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss).Once()
	repo.On("GetQuizByID", mock.Anything, int64(1)).Return(twoQuestionQuiz(), nil).Once()
	mockCache.On("Set", mock.Anything, key, mock.AnythingOfType("string"), time.Minute).Return(nil).Once()

	loader.Invalidate(context.Background(), 1)
	_, err := loader.LoadByID(context.Background(), 1)
	require.NoError(t, err)
	mockCache.AssertExpectations(t)
}
