package models

import "time"

// Attempt mirrors a row of quiz_attempts joined with the quiz title.
type Attempt struct {
	ID             string
	UserID         string
	QuizID         int64
	Score          int
	CorrectCount   int
	TotalQuestions int
	CreatedAt      time.Time
	QuizTitle      string
}

func (a *Attempt) ScanTargets() []interface{} {
	return []interface{}{
		&a.ID, &a.UserID, &a.QuizID, &a.Score, &a.CorrectCount,
		&a.TotalQuestions, &a.CreatedAt, &a.QuizTitle,
	}
}

// AttemptAnswer mirrors a row of attempt_answers.
type AttemptAnswer struct {
	AttemptID  string
	QuestionID int64
	ChoiceID   int64
}
