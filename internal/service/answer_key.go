package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"quizhub/internal/cache"
	"quizhub/internal/domain"
	"quizhub/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyLoader resolves a quiz id to its answer key, caching keys behind
// domain.Cache. Concurrent misses for one quiz share a single database read.
type AnswerKeyLoader struct {
	quizRepo domain.QuizRepository
	cache    domain.Cache
	ttl      time.Duration
	group    singleflight.Group

	mu          sync.Mutex
	generations map[int64]uint64
}

func NewAnswerKeyLoader(quizRepo domain.QuizRepository, cache domain.Cache, ttl time.Duration) *AnswerKeyLoader {
	return &AnswerKeyLoader{
		quizRepo:    quizRepo,
		cache:       cache,
		ttl:         ttl,
		generations: make(map[int64]uint64),
	}
}

// generation changes every time the quiz is invalidated.
func (l *AnswerKeyLoader) generation(quizID int64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generations[quizID]
}

// Load parses a raw identifier from a path or body and loads its key.
func (l *AnswerKeyLoader) Load(ctx context.Context, rawQuizID string) (*domain.AnswerKey, error) {
	quizID, err := domain.ParseQuizID(rawQuizID)
	if err != nil {
		return nil, err
	}
	return l.LoadByID(ctx, quizID)
}

// LoadByID returns the key of an existing quiz. A quiz without questions
// yields an empty key.
func (l *AnswerKeyLoader) LoadByID(ctx context.Context, quizID int64) (*domain.AnswerKey, error) {
	if quizID <= 0 {
		return nil, domain.NewInvalidInputError("invalid quiz id: " + strconv.FormatInt(quizID, 10)).
			WithContext("field", "quiz id")
	}

	cacheKey := cache.AnswerKeyKey(quizID)
	if key, ok := l.fromCache(ctx, cacheKey); ok {
		return key, nil
	}

	v, err, shared := l.group.Do(cacheKey, func() (interface{}, error) {
		readCtx := context.WithoutCancel(ctx)
		gen := l.generation(quizID)
		quiz, err := l.quizRepo.GetQuizByID(readCtx, quizID)
		if err != nil {
			return nil, domain.NewStorageError("failed to load answer key", err)
		}
		if quiz == nil {
			return nil, domain.NewQuizNotFoundError(quizID)
		}

		key := domain.BuildAnswerKey(quiz.ID, quiz.Title, quiz.Questions)
		// An invalidation during the read means the rows may predate the edit.
		if l.generation(quizID) == gen {
			l.store(readCtx, cacheKey, key)
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug("answer key load shared", zap.Int64("quiz_id", quizID))
	}
	return v.(*domain.AnswerKey), nil
}

// Invalidate drops the cached key after the quiz was replaced or deleted.
// Loads already in flight are detached and will not write their result back.
func (l *AnswerKeyLoader) Invalidate(ctx context.Context, quizID int64) {
	cacheKey := cache.AnswerKeyKey(quizID)
	l.mu.Lock()
	l.generations[quizID]++
	l.mu.Unlock()
	l.group.Forget(cacheKey)

	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, cacheKey); err != nil {
		logger.Get().Warn("failed to invalidate answer key", zap.Int64("quiz_id", quizID), zap.Error(err))
	}
}

func (l *AnswerKeyLoader) fromCache(ctx context.Context, cacheKey string) (*domain.AnswerKey, bool) {
	if l.cache == nil {
		return nil, false
	}
	raw, err := l.cache.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("answer key cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		return nil, false
	}

	var key domain.AnswerKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		logger.Get().Warn("discarding malformed cached answer key", zap.String("key", cacheKey), zap.Error(err))
		return nil, false
	}
	if key.Correct == nil {
		key.Correct = map[int64]int64{}
	}
	return &key, true
}

func (l *AnswerKeyLoader) store(ctx context.Context, cacheKey string, key *domain.AnswerKey) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(key)
	if err != nil {
		logger.Get().Error("failed to marshal answer key", zap.String("key", cacheKey), zap.Error(err))
		return
	}
	if err := l.cache.Set(ctx, cacheKey, string(data), l.ttl); err != nil {
		logger.Get().Warn("answer key cache write failed", zap.String("key", cacheKey), zap.Error(err))
	}
}
