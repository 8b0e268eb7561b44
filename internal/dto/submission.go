package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"quizhub/internal/domain"
)

// FlexibleID accepts a JSON number or a numeric string.
type FlexibleID int64

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*id = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid id %s", string(b))
	}
	*id = FlexibleID(v)
	return nil
}

// answerItem is one element of the array submission form.
type answerItem struct {
	QuestionID      *FlexibleID `json:"questionId"`
	ChoiceID        *FlexibleID `json:"choiceId"`
	QuestionIDSnake *FlexibleID `json:"question_id"`
	ChoiceIDSnake   *FlexibleID `json:"choice_id"`
}

func pick(a, b *FlexibleID) (int64, bool) {
	if a != nil && *a > 0 {
		return int64(*a), true
	}
	if b != nil && *b > 0 {
		return int64(*b), true
	}
	return 0, false
}

// SubmittedAnswers decodes either {"<questionId>": choiceId, ...} or
// [{"questionId": .., "choiceId": ..}, ...] into one ordered list.
type SubmittedAnswers []domain.SubmittedAnswer

var errAnswersShape = errors.New("answers must be an object keyed by question id or an array of {questionId, choiceId}")

func (s *SubmittedAnswers) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []answerItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("%w: %v", errAnswersShape, err)
		}
		out := make(SubmittedAnswers, 0, len(items))
		for i, item := range items {
			questionID, okQ := pick(item.QuestionID, item.QuestionIDSnake)
			choiceID, okC := pick(item.ChoiceID, item.ChoiceIDSnake)
			if !okQ || !okC {
				return fmt.Errorf("answers[%d] needs questionId and choiceId", i)
			}
			out = append(out, domain.SubmittedAnswer{QuestionID: questionID, ChoiceID: choiceID})
		}
		*s = out
		return nil
	case '{':
		var m map[string]FlexibleID
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return fmt.Errorf("%w: %v", errAnswersShape, err)
		}
		out := make(SubmittedAnswers, 0, len(m))
		for k, choiceID := range m {
			questionID, err := domain.ParseEntityID("question id", k)
			if err != nil {
				return err
			}
			if choiceID <= 0 {
				return fmt.Errorf("answer for question %s needs a choice id", k)
			}
			out = append(out, domain.SubmittedAnswer{QuestionID: questionID, ChoiceID: int64(choiceID)})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
		*s = out
		return nil
	default:
		return errAnswersShape
	}
}

// SubmitRequest is the body of POST /submit.
// @Description Quiz submission; quiz id may also come from the path
type SubmitRequest struct {
	QuizID      FlexibleID       `json:"quiz_id"`
	QuizIDCamel FlexibleID       `json:"quizId"`
	Answers     SubmittedAnswers `json:"answers"`
}

// ResolvedQuizID returns whichever quiz id spelling was sent.
func (r *SubmitRequest) ResolvedQuizID() int64 {
	if r.QuizID > 0 {
		return int64(r.QuizID)
	}
	return int64(r.QuizIDCamel)
}

// SubmitResponse reports the stored attempt. score and percentage are the
// same value; camelCase aliases are kept for older clients.
// @Description Result of a scored submission
type SubmitResponse struct {
	Score               int    `json:"score"`
	Percentage          int    `json:"percentage"`
	CorrectCount        int    `json:"correct_count"`
	TotalQuestions      int    `json:"total_questions"`
	TotalQuestionsCamel int    `json:"totalQuestions"`
	AttemptID           string `json:"attempt_id"`
	AttemptIDCamel      string `json:"attemptId"`
	QuizID              int64  `json:"quiz_id"`
	QuizTitle           string `json:"quiz_title"`
}

func NewSubmitResponse(attempt *domain.Attempt) *SubmitResponse {
	return &SubmitResponse{
		Score:               attempt.Score,
		Percentage:          attempt.Score,
		CorrectCount:        attempt.CorrectCount,
		TotalQuestions:      attempt.TotalQuestions,
		TotalQuestionsCamel: attempt.TotalQuestions,
		AttemptID:           attempt.ID,
		AttemptIDCamel:      attempt.ID,
		QuizID:              attempt.QuizID,
		QuizTitle:           attempt.QuizTitle,
	}
}
