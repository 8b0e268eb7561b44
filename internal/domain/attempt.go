package domain

import "time"

// Attempt is one scored submission of a quiz by a user. It is never updated.
type Attempt struct {
	ID             string
	UserID         string
	QuizID         int64
	QuizTitle      string
	Score          int
	CorrectCount   int
	TotalQuestions int
	Answers        []SubmittedAnswer
	CreatedAt      time.Time
}

// NewAttempt builds the record for a scored submission.
func NewAttempt(id, userID string, quizID int64, score ScoreResult, answers []SubmittedAnswer) *Attempt {
	return &Attempt{
		ID:             id,
		UserID:         userID,
		QuizID:         quizID,
		Score:          score.Percentage,
		CorrectCount:   score.CorrectCount,
		TotalQuestions: score.TotalQuestions,
		Answers:        UniqueAnswers(answers),
		CreatedAt:      time.Now().UTC(),
	}
}

// QuestionReview is the result view of a single question of an attempt.
type QuestionReview struct {
	Question         Question
	SelectedChoiceID *int64
	CorrectChoiceID  *int64
	IsCorrect        bool
}

// ReviewAttempt joins the stored answers with the quiz as it exists now.
// Questions added after the attempt, or answered with a choice that no longer
// exists, are reported as unanswered.
func ReviewAttempt(quiz *Quiz, answers []SubmittedAnswer) []QuestionReview {
	selected := make(map[int64]int64, len(answers))
	for _, a := range UniqueAnswers(answers) {
		selected[a.QuestionID] = a.ChoiceID
	}

	reviews := make([]QuestionReview, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		review := QuestionReview{Question: q}
		if correctID, ok := q.CorrectChoiceID(); ok {
			id := correctID
			review.CorrectChoiceID = &id
		}
		if choiceID, ok := selected[q.ID]; ok && hasChoice(q, choiceID) {
			id := choiceID
			review.SelectedChoiceID = &id
			review.IsCorrect = review.CorrectChoiceID != nil && *review.CorrectChoiceID == id
		}
		reviews = append(reviews, review)
	}
	return reviews
}

func hasChoice(q Question, choiceID int64) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}
