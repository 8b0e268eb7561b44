package dto

import "quizhub/internal/domain"

// QuestionReviewResponse reports one question of a stored attempt.
type QuestionReviewResponse struct {
	QuestionID       int64            `json:"question_id"`
	Text             string           `json:"text"`
	Choices          []ChoiceResponse `json:"choices"`
	SelectedChoiceID *int64           `json:"selected_choice_id"`
	CorrectChoiceID  *int64           `json:"correct_choice_id"`
	IsCorrect        bool             `json:"is_correct"`
}

// AttemptDetailResponse is the result page of an attempt.
// @Description Attempt with per-question correctness
type AttemptDetailResponse struct {
	AttemptSummary
	Questions []QuestionReviewResponse `json:"questions"`
}

func NewAttemptDetailResponse(attempt *domain.Attempt, reviews []domain.QuestionReview) *AttemptDetailResponse {
	resp := &AttemptDetailResponse{
		AttemptSummary: NewAttemptSummary(attempt),
		Questions:      make([]QuestionReviewResponse, 0, len(reviews)),
	}
	for _, r := range reviews {
		choices := make([]ChoiceResponse, 0, len(r.Question.Choices))
		for _, c := range r.Question.Choices {
			choices = append(choices, ChoiceResponse{ID: c.ID, Text: c.Text})
		}
		resp.Questions = append(resp.Questions, QuestionReviewResponse{
			QuestionID:       r.Question.ID,
			Text:             r.Question.Text,
			Choices:          choices,
			SelectedChoiceID: r.SelectedChoiceID,
			CorrectChoiceID:  r.CorrectChoiceID,
			IsCorrect:        r.IsCorrect,
		})
	}
	return resp
}
