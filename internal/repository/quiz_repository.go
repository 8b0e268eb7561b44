package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizhub/internal/domain"
	"quizhub/internal/repository/models"
	"quizhub/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description.String,
		QuestionCount: m.QuestionCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// groupQuestionRows folds the flat join rows, ordered by question then
// choice id, into questions with their choices.
func groupQuestionRows(rows []models.QuestionChoice) []domain.Question {
	questions := make([]domain.Question, 0)
	index := make(map[int64]int)
	for _, r := range rows {
		i, ok := index[r.QuestionID]
		if !ok {
			questions = append(questions, domain.Question{
				ID:       r.QuestionID,
				QuizID:   r.QuizID,
				Text:     r.QuestionText,
				Position: r.Position,
				Choices:  []domain.Choice{},
			})
			i = len(questions) - 1
			index[r.QuestionID] = i
		}
		if r.ChoiceID.Valid {
			questions[i].Choices = append(questions[i].Choices, domain.Choice{
				ID:         r.ChoiceID.Int64,
				QuestionID: r.QuestionID,
				Text:       r.ChoiceText.String,
				IsCorrect:  r.ChoiceIsCorrect.Valid && r.ChoiceIsCorrect.Int64 != 0,
			})
		}
	}
	return questions
}

// ListQuizzes returns every quiz with its question count, ordered by id.
func (r *sqlxQuizRepository) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)
	query := `SELECT z.id, z.title, z.description, z.created_at, z.updated_at, COUNT(q.id)
	          FROM quizzes z LEFT JOIN questions q ON q.quiz_id = z.id
	          GROUP BY z.id, z.title, z.description, z.created_at, z.updated_at
	          ORDER BY z.id`

	rows, err := exec.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var m models.Quiz
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt, &m.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan quiz row: %w", err)
		}
		quizzes = append(quizzes, *toDomainQuiz(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quizzes: %w", err)
	}
	return quizzes, nil
}

// GetQuizByID loads the quiz with its questions and choices.
func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, quizID int64) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT id, title, description, created_at, updated_at FROM quizzes WHERE id = ?`)

	var m models.Quiz
	err := exec.QueryRowxContext(ctx, query, quizID).Scan(&m.ID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %d: %w", quizID, err)
	}

	questions, err := r.FindQuestionsWithChoices(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz := toDomainQuiz(&m)
	quiz.Questions = questions
	quiz.QuestionCount = len(questions)
	return quiz, nil
}

func (r *sqlxQuizRepository) QuizExists(ctx context.Context, quizID int64) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	var count int
	if err := exec.GetContext(ctx, &count, exec.Rebind(`SELECT COUNT(*) FROM quizzes WHERE id = ?`), quizID); err != nil {
		return false, fmt.Errorf("failed to check quiz %d: %w", quizID, err)
	}
	return count > 0, nil
}

// FindQuestionsWithChoices returns the quiz's questions ordered by id, each
// with its choices ordered by id.
func (r *sqlxQuizRepository) FindQuestionsWithChoices(ctx context.Context, quizID int64) ([]domain.Question, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT q.id, q.quiz_id, q.content, q.position, c.id, c.content, c.is_correct
	          FROM questions q LEFT JOIN choices c ON c.question_id = q.id
	          WHERE q.quiz_id = ?
	          ORDER BY q.id, c.id`)

	rows, err := exec.QueryxContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions for quiz %d: %w", quizID, err)
	}
	defer rows.Close()

	var flat []models.QuestionChoice
	for rows.Next() {
		var row models.QuestionChoice
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		flat = append(flat, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return groupQuestionRows(flat), nil
}

// CreateQuiz inserts the quiz and its questions, filling in generated ids.
// Callers wrap it in a transaction.
func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	exec := GetExecutor(ctx, r.db)
	now := time.Now().UTC()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now

	id, err := insertReturningID(ctx, exec,
		`INSERT INTO quizzes (title, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		quiz.Title, util.StringToNullString(quiz.Description), quiz.CreatedAt, quiz.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.ID = id
	return r.InsertQuestions(ctx, id, quiz.Questions)
}

// UpdateQuiz rewrites the quiz header. It reports false when no such quiz exists.
func (r *sqlxQuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	quiz.UpdatedAt = time.Now().UTC()

	result, err := exec.ExecContext(ctx,
		exec.Rebind(`UPDATE quizzes SET title = ?, description = ?, updated_at = ? WHERE id = ?`),
		quiz.Title, util.StringToNullString(quiz.Description), quiz.UpdatedAt, quiz.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update quiz %d: %w", quiz.ID, err)
	}
	found, err := rowsAffected(result)
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return found, nil
}

// DeleteQuestions removes the quiz's choices and questions.
func (r *sqlxQuizRepository) DeleteQuestions(ctx context.Context, quizID int64) error {
	exec := GetExecutor(ctx, r.db)
	if _, err := exec.ExecContext(ctx,
		exec.Rebind(`DELETE FROM choices WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = ?)`),
		quizID); err != nil {
		return fmt.Errorf("failed to delete choices of quiz %d: %w", quizID, err)
	}
	if _, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM questions WHERE quiz_id = ?`), quizID); err != nil {
		return fmt.Errorf("failed to delete questions of quiz %d: %w", quizID, err)
	}
	return nil
}

// InsertQuestions inserts questions and choices in order, filling in ids.
func (r *sqlxQuizRepository) InsertQuestions(ctx context.Context, quizID int64, questions []domain.Question) error {
	exec := GetExecutor(ctx, r.db)
	for i := range questions {
		q := &questions[i]
		q.QuizID = quizID
		q.Position = i

		questionID, err := insertReturningID(ctx, exec,
			`INSERT INTO questions (quiz_id, content, position) VALUES (?, ?, ?)`,
			quizID, q.Text, q.Position)
		if err != nil {
			return fmt.Errorf("failed to insert question %d of quiz %d: %w", i, quizID, err)
		}
		q.ID = questionID

		for j := range q.Choices {
			c := &q.Choices[j]
			c.QuestionID = questionID
			choiceID, err := insertReturningID(ctx, exec,
				`INSERT INTO choices (question_id, content, is_correct) VALUES (?, ?, ?)`,
				questionID, c.Text, util.BoolToInt(c.IsCorrect))
			if err != nil {
				return fmt.Errorf("failed to insert choice %d of question %d: %w", j, questionID, err)
			}
			c.ID = choiceID
		}
	}
	return nil
}

// DeleteQuiz removes the quiz; questions, choices and attempts cascade.
func (r *sqlxQuizRepository) DeleteQuiz(ctx context.Context, quizID int64) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM quizzes WHERE id = ?`), quizID)
	if err != nil {
		return false, fmt.Errorf("failed to delete quiz %d: %w", quizID, err)
	}
	found, err := rowsAffected(result)
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return found, nil
}
