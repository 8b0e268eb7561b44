package seedmodels

import "quizhub/internal/dto"

// SeedChoice is one answer option in the JSON seed file.
type SeedChoice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// SeedQuestion defines a question and its choices in the JSON seed file.
type SeedQuestion struct {
	Text    string       `json:"text"`
	Choices []SeedChoice `json:"choices"`
}

// SeedQuiz defines the structure for a quiz in the JSON seed file.
type SeedQuiz struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []SeedQuestion `json:"questions"`
}

// ToRequest converts the seed entry into the authoring request the quiz service accepts.
func (s SeedQuiz) ToRequest() *dto.QuizRequest {
	req := &dto.QuizRequest{
		Title:       s.Title,
		Description: s.Description,
		Questions:   make([]dto.QuestionRequest, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		question := dto.QuestionRequest{Text: q.Text, Choices: make([]dto.ChoiceRequest, 0, len(q.Choices))}
		for _, c := range q.Choices {
			question.Choices = append(question.Choices, dto.ChoiceRequest{Text: c.Text, IsCorrect: c.IsCorrect})
		}
		req.Questions = append(req.Questions, question)
	}
	return req
}
