package domain

import "math"

// AnswerKey maps every scorable question of a quiz to its correct choice.
type AnswerKey struct {
	QuizID    int64           `json:"quiz_id"`
	QuizTitle string          `json:"quiz_title"`
	Correct   map[int64]int64 `json:"correct"`
}

// BuildAnswerKey derives the key from a quiz's questions. Questions without a
// correct choice are left out; with several correct choices the lowest id wins.
func BuildAnswerKey(quizID int64, title string, questions []Question) *AnswerKey {
	key := &AnswerKey{
		QuizID:    quizID,
		QuizTitle: title,
		Correct:   make(map[int64]int64, len(questions)),
	}
	for _, q := range questions {
		if choiceID, ok := q.CorrectChoiceID(); ok {
			key.Correct[q.ID] = choiceID
		}
	}
	return key
}

// TotalQuestions is the scoring denominator.
func (k *AnswerKey) TotalQuestions() int {
	return len(k.Correct)
}

// SubmittedAnswer is one (question, chosen choice) pair from a submission.
type SubmittedAnswer struct {
	QuestionID int64 `json:"question_id"`
	ChoiceID   int64 `json:"choice_id"`
}

// UniqueAnswers drops repeated answers to the same question, keeping the first.
func UniqueAnswers(answers []SubmittedAnswer) []SubmittedAnswer {
	seen := make(map[int64]struct{}, len(answers))
	out := make([]SubmittedAnswer, 0, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		out = append(out, a)
	}
	return out
}

type ScoreResult struct {
	CorrectCount   int
	TotalQuestions int
	Percentage     int
}

// CalculateScore counts the answers matching the key. Answers to questions
// outside the key are ignored.
func CalculateScore(key *AnswerKey, answers []SubmittedAnswer) ScoreResult {
	result := ScoreResult{}
	if key == nil {
		return result
	}
	result.TotalQuestions = key.TotalQuestions()

	for _, a := range UniqueAnswers(answers) {
		if correct, ok := key.Correct[a.QuestionID]; ok && correct == a.ChoiceID {
			result.CorrectCount++
		}
	}
	result.Percentage = Percentage(result.CorrectCount, result.TotalQuestions)
	return result
}

// Percentage rounds correct/total to a whole percent, 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
