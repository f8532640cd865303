package quiz

import (
	"fmt"

	"github.com/pavelanni/testgen/internal/model"
)

// Scoring policy.
const (
	PointsCorrect   = 0.2
	PointsIncorrect = -0.05
	PointsOmitted   = 0.0
)

// Score compares answers (keyed by question ID) against the correct options.
// A question without an entry in answers counts as omitted. The total is not
// clamped and may be negative.
func Score(questions []model.Question, answers map[int]string) ([]model.ResultEntry, model.ScoreSummary, error) {
	entries := make([]model.ResultEntry, 0, len(questions))
	var sum model.ScoreSummary

	for _, q := range questions {
		correct, err := q.CorrectOption()
		if err != nil {
			return nil, model.ScoreSummary{}, fmt.Errorf("question %d (correct=%d): %w", q.ID, q.Correct, err)
		}
		e := model.ResultEntry{
			QuestionID: q.ID,
			Question:   q.Text,
			Correct:    correct,
		}
		given, answered := answers[q.ID]
		switch {
		case !answered:
			sum.Omitted++
		case given == correct:
			e.Given = &given
			e.IsCorrect = true
			sum.Correct++
		default:
			e.Given = &given
			sum.Incorrect++
		}
		entries = append(entries, e)
	}

	sum.Total = PointsCorrect*float64(sum.Correct) +
		PointsIncorrect*float64(sum.Incorrect) +
		PointsOmitted*float64(sum.Omitted)
	return entries, sum, nil
}
