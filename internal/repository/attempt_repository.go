package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizhub/internal/domain"
	"quizhub/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.Attempt, answers []models.AttemptAnswer) *domain.Attempt {
	if m == nil {
		return nil
	}
	attempt := &domain.Attempt{
		ID:             m.ID,
		UserID:         m.UserID,
		QuizID:         m.QuizID,
		QuizTitle:      m.QuizTitle,
		Score:          m.Score,
		CorrectCount:   m.CorrectCount,
		TotalQuestions: m.TotalQuestions,
		CreatedAt:      m.CreatedAt,
		Answers:        make([]domain.SubmittedAnswer, 0, len(answers)),
	}
	for _, a := range answers {
		attempt.Answers = append(attempt.Answers, domain.SubmittedAnswer{QuestionID: a.QuestionID, ChoiceID: a.ChoiceID})
	}
	return attempt
}

const attemptSelect = `SELECT a.id, a.user_id, a.quiz_id, a.score, a.correct_count, a.total_questions, a.created_at, z.title
	          FROM quiz_attempts a JOIN quizzes z ON z.id = a.quiz_id`

// CreateAttempt inserts the attempt row and its answers. Callers run it in a
// transaction so a failed answer insert leaves no attempt behind.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	exec := GetExecutor(ctx, r.db)

	query := exec.Rebind(`INSERT INTO quiz_attempts (id, user_id, quiz_id, score, correct_count, total_questions, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query,
		attempt.ID, attempt.UserID, attempt.QuizID, attempt.Score,
		attempt.CorrectCount, attempt.TotalQuestions, attempt.CreatedAt); err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	answerQuery := exec.Rebind(`INSERT INTO attempt_answers (attempt_id, question_id, choice_id) VALUES (?, ?, ?)`)
	for _, a := range attempt.Answers {
		if _, err := exec.ExecContext(ctx, answerQuery, attempt.ID, a.QuestionID, a.ChoiceID); err != nil {
			return fmt.Errorf("failed to store answer for question %d: %w", a.QuestionID, err)
		}
	}
	return nil
}

// FindAttempt returns the attempt with its answers, or (nil, nil) when absent.
func (r *sqlxAttemptRepository) FindAttempt(ctx context.Context, attemptID string) (*domain.Attempt, error) {
	exec := GetExecutor(ctx, r.db)

	var m models.Attempt
	err := exec.QueryRowxContext(ctx, exec.Rebind(attemptSelect+` WHERE a.id = ?`), attemptID).Scan(m.ScanTargets()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt %s: %w", attemptID, err)
	}

	rows, err := exec.QueryxContext(ctx,
		exec.Rebind(`SELECT attempt_id, question_id, choice_id FROM attempt_answers WHERE attempt_id = ? ORDER BY question_id`),
		attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers of attempt %s: %w", attemptID, err)
	}
	defer rows.Close()

	var answers []models.AttemptAnswer
	for rows.Next() {
		var a models.AttemptAnswer
		if err := rows.Scan(&a.AttemptID, &a.QuestionID, &a.ChoiceID); err != nil {
			return nil, fmt.Errorf("failed to scan attempt answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempt answers: %w", err)
	}
	return toDomainAttempt(&m, answers), nil
}

// ListAttemptsByUser returns one page of the user's attempts, newest first,
// and the user's total attempt count. Answers are not loaded.
func (r *sqlxAttemptRepository) ListAttemptsByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Attempt, int, error) {
	exec := GetExecutor(ctx, r.db)

	var total int
	if err := exec.GetContext(ctx, &total,
		exec.Rebind(`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = ?`), userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	attempts := make([]domain.Attempt, 0)
	if total == 0 {
		return attempts, 0, nil
	}

	query := exec.Rebind(attemptSelect + ` WHERE a.user_id = ?
	          ORDER BY a.created_at DESC, a.id DESC
	          OFFSET ? ROWS FETCH NEXT ? ROWS ONLY`)
	rows, err := exec.QueryxContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Attempt
		if err := rows.Scan(m.ScanTargets()...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, *toDomainAttempt(&m, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attempts: %w", err)
	}
	return attempts, total, nil
}
