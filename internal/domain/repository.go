package domain

import "context"

// QuizRepository persists quizzes with their questions and choices.
// Lookups return (nil, nil) when the quiz does not exist.
type QuizRepository interface {
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	GetQuizByID(ctx context.Context, quizID int64) (*Quiz, error)
	QuizExists(ctx context.Context, quizID int64) (bool, error)
	FindQuestionsWithChoices(ctx context.Context, quizID int64) ([]Question, error)
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	UpdateQuiz(ctx context.Context, quiz *Quiz) (bool, error)
	DeleteQuestions(ctx context.Context, quizID int64) error
	InsertQuestions(ctx context.Context, quizID int64, questions []Question) error
	DeleteQuiz(ctx context.Context, quizID int64) (bool, error)
}

// UserRepository persists accounts. Lookups return (nil, nil) when absent.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByOAuth(ctx context.Context, provider, subject string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
}

// AttemptRepository persists attempts together with their answers.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	FindAttempt(ctx context.Context, attemptID string) (*Attempt, error)
	ListAttemptsByUser(ctx context.Context, userID string, limit, offset int) ([]Attempt, int, error)
}

// TransactionManager runs fn inside a single database transaction. The
// context passed to fn carries the transaction for repository calls.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
