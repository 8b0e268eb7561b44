package models

import (
	"database/sql"
	"time"
)

// Quiz mirrors a row of the quizzes table plus the derived question count.
type Quiz struct {
	ID            int64
	Title         string
	Description   sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
	QuestionCount int
}

// QuestionChoice is one row of the questions LEFT JOIN choices query.
// The choice columns are NULL for a question without choices.
type QuestionChoice struct {
	QuestionID      int64
	QuizID          int64
	QuestionText    string
	Position        int
	ChoiceID        sql.NullInt64
	ChoiceText      sql.NullString
	ChoiceIsCorrect sql.NullInt64
}

func (r *QuestionChoice) ScanTargets() []interface{} {
	return []interface{}{
		&r.QuestionID, &r.QuizID, &r.QuestionText, &r.Position,
		&r.ChoiceID, &r.ChoiceText, &r.ChoiceIsCorrect,
	}
}
