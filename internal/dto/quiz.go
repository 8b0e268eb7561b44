package dto

import (
	"time"

	"quizhub/internal/domain"
)

// ChoiceRequest is one answer option in a create/replace request.
type ChoiceRequest struct {
	Text      string `json:"text" validate:"required,max=4000"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Text    string          `json:"text" validate:"required,max=4000"`
	Choices []ChoiceRequest `json:"choices" validate:"required,min=1,dive"`
}

// QuizRequest is the body of POST /quizzes and PUT /quizzes/:quizId.
// @Description Quiz with its questions and choices
type QuizRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description" validate:"max=2000"`
	Questions   []QuestionRequest `json:"questions" validate:"required,dive"`
}

// ToDomain converts the request into a new quiz aggregate.
func (r *QuizRequest) ToDomain() *domain.Quiz {
	questions := make([]domain.Question, 0, len(r.Questions))
	for _, q := range r.Questions {
		choices := make([]domain.Choice, 0, len(q.Choices))
		for _, c := range q.Choices {
			choices = append(choices, domain.Choice{Text: c.Text, IsCorrect: c.IsCorrect})
		}
		questions = append(questions, domain.Question{Text: q.Text, Choices: choices})
	}
	return domain.NewQuiz(r.Title, r.Description, questions)
}

// ChoiceResponse omits is_correct in the play view.
type ChoiceResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type QuestionResponse struct {
	ID       int64            `json:"id"`
	QuizID   int64            `json:"quiz_id"`
	Text     string           `json:"text"`
	Position int              `json:"position"`
	Choices  []ChoiceResponse `json:"choices"`
}

// QuizResponse represents a quiz in the API response
// @Description Quiz information
type QuizResponse struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// QuizListResponse wraps the catalog listing.
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
}

// QuizQuestionsResponse is the play view of a quiz.
type QuizQuestionsResponse struct {
	QuizID    int64              `json:"quiz_id"`
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions"`
}

// NewQuestionResponses maps questions, exposing correctness only when asked.
func NewQuestionResponses(questions []domain.Question, withAnswers bool) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		choices := make([]ChoiceResponse, 0, len(q.Choices))
		for _, c := range q.Choices {
			cr := ChoiceResponse{ID: c.ID, Text: c.Text}
			if withAnswers {
				isCorrect := c.IsCorrect
				cr.IsCorrect = &isCorrect
			}
			choices = append(choices, cr)
		}
		out = append(out, QuestionResponse{
			ID:       q.ID,
			QuizID:   q.QuizID,
			Text:     q.Text,
			Position: q.Position,
			Choices:  choices,
		})
	}
	return out
}

// NewQuizResponse maps a quiz; questions are included when loaded.
func NewQuizResponse(quiz *domain.Quiz, withAnswers bool) QuizResponse {
	resp := QuizResponse{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		QuestionCount: quiz.QuestionCount,
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
	}
	if quiz.Questions != nil {
		resp.Questions = NewQuestionResponses(quiz.Questions, withAnswers)
	}
	return resp
}
