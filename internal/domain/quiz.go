package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quiz is a titled, ordered set of multiple-choice questions.
type Quiz struct {
	ID            int64
	Title         string
	Description   string
	Questions     []Question
	QuestionCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Question struct {
	ID       int64
	QuizID   int64
	Text     string
	Position int
	Choices  []Choice
}

type Choice struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
}

// NewQuiz creates a quiz whose questions are positioned in the given order.
func NewQuiz(title, description string, questions []Question) *Quiz {
	now := time.Now()
	quiz := &Quiz{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Questions:   questions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range quiz.Questions {
		quiz.Questions[i].Position = i
	}
	quiz.QuestionCount = len(quiz.Questions)
	return quiz
}

// Validate enforces the authoring rules shared by create and replace.
func (q *Quiz) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(q.Title) == "" {
		errs = append(errs, NewMissingFieldError("title"))
	}
	for i, question := range q.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(question.Text) == "" {
			errs = append(errs, NewMissingFieldError(prefix+".text"))
		}
		if len(question.Choices) == 0 {
			errs = append(errs, NewMissingFieldError(prefix+".choices"))
			continue
		}
		hasCorrect := false
		for j, choice := range question.Choices {
			if strings.TrimSpace(choice.Text) == "" {
				errs = append(errs, NewMissingFieldError(fmt.Sprintf("%s.choices[%d].text", prefix, j)))
			}
			hasCorrect = hasCorrect || choice.IsCorrect
		}
		if !hasCorrect {
			errs = append(errs, ValidationError{
				Field:   prefix + ".choices",
				Code:    CodeInvalidFormat,
				Message: "at least one choice must be marked correct",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CorrectChoiceID returns the lowest id among the question's correct choices.
func (q Question) CorrectChoiceID() (int64, bool) {
	var (
		best  int64
		found bool
	)
	for _, c := range q.Choices {
		if !c.IsCorrect {
			continue
		}
		if !found || c.ID < best {
			best = c.ID
			found = true
		}
	}
	return best, found
}

// ParseQuizID parses a quiz identifier taken from a path or request body.
func ParseQuizID(raw string) (int64, error) {
	return parsePositiveID("quiz id", raw)
}

// ParseEntityID parses a question or choice identifier.
func ParseEntityID(field, raw string) (int64, error) {
	return parsePositiveID(field, raw)
}

func parsePositiveID(field, raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewInvalidInputError(fmt.Sprintf("invalid %s: %q", field, raw)).WithContext("field", field)
	}
	return id, nil
}
