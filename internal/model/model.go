package model

import (
	"context"
	"errors"
	"time"
)

// NumOptions is the number of answer options every question carries.
const NumOptions = 4

// ErrInvalidCorrect is returned when a question's correct index is outside 1..NumOptions.
var ErrInvalidCorrect = errors.New("correct option index out of range")

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// Question is one row of an uploaded question bank.
type Question struct {
	ID         int                `json:"id"` // 1-based data row in the source file
	Topic      string             `json:"topic"`
	Difficulty string             `json:"difficulty,omitempty"`
	Text       string             `json:"text"`
	Options    [NumOptions]string `json:"options"`
	Correct    int                `json:"correct"` // 1..NumOptions
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() (string, error) {
	if q.Correct < 1 || q.Correct > NumOptions {
		return "", ErrInvalidCorrect
	}
	return q.Options[q.Correct-1], nil
}

// HasOption reports whether text is one of the question's options.
func (q Question) HasOption(text string) bool {
	for _, o := range q.Options {
		if o == text {
			return true
		}
	}
	return false
}

// Table is a question bank loaded from one uploaded file.
// It is never mutated after loading.
type Table struct {
	Source        string
	HasDifficulty bool
	Questions     []Question
}

// Len returns the number of questions in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Questions)
}

// Topics returns the distinct topics in first-seen order.
func (t *Table) Topics() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var topics []string
	for _, q := range t.Questions {
		if !seen[q.Topic] {
			seen[q.Topic] = true
			topics = append(topics, q.Topic)
		}
	}
	return topics
}

// Difficulties returns the distinct difficulties of a topic in first-seen order.
// An empty topic lists difficulties across the whole table.
func (t *Table) Difficulties(topic string) []string {
	if t == nil || !t.HasDifficulty {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, q := range t.Questions {
		if topic != "" && q.Topic != topic {
			continue
		}
		if !seen[q.Difficulty] {
			seen[q.Difficulty] = true
			out = append(out, q.Difficulty)
		}
	}
	return out
}

// Filter selects questions by topic and difficulty.
// Empty fields mean no filtering on that field.
type Filter struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Match reports whether q satisfies the filter.
func (f Filter) Match(q Question) bool {
	if f.Topic != "" && q.Topic != f.Topic {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// Result markers written to exports.
const (
	MarkerCorrect   = "correct"
	MarkerIncorrect = "incorrect"
)

// ResultEntry is the scored outcome of a single question.
type ResultEntry struct {
	QuestionID int     `json:"question_id"`
	Question   string  `json:"question"`
	Given      *string `json:"given,omitempty"` // nil when omitted
	Correct    string  `json:"correct"`
	IsCorrect  bool    `json:"is_correct"`
}

// Omitted reports whether the question was left unanswered.
func (e ResultEntry) Omitted() bool {
	return e.Given == nil
}

// GivenText returns the given answer, or "" when omitted.
func (e ResultEntry) GivenText() string {
	if e.Given == nil {
		return ""
	}
	return *e.Given
}

// Marker returns the result marker for exports.
func (e ResultEntry) Marker() string {
	if e.IsCorrect {
		return MarkerCorrect
	}
	return MarkerIncorrect
}

// ScoreSummary aggregates a scored test.
type ScoreSummary struct {
	Total     float64 `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Omitted   int     `json:"omitted"`
}

// Count returns the number of scored questions.
func (s ScoreSummary) Count() int {
	return s.Correct + s.Incorrect + s.Omitted
}

// Answered returns the number of questions with a recorded answer.
func (s ScoreSummary) Answered() int {
	return s.Correct + s.Incorrect
}

// Config holds runtime parameters set via CLI flags.
type Config struct {
	DefaultQuestions int   // preselected count on the generation form
	MaxQuestions     int   // upper bound of the count field
	MaxUploadBytes   int64 // request body limit for uploads
	BasePath         string
	SecureCookies    bool
	WorkspaceTTL     time.Duration
}
