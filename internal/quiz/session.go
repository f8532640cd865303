package quiz

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/testgen/internal/model"
)

var (
	// ErrUnknownQuestion is returned when an answer targets a question outside the session.
	ErrUnknownQuestion = errors.New("question is not part of this test")
	// ErrInvalidOption is returned when the answer is not one of the question's options.
	ErrInvalidOption = errors.New("answer is not one of the question's options")
)

// Session is one generated test and the answers recorded so far.
// Answers are keyed by question ID, so two rows sharing the same text keep
// separate answer slots.
type Session struct {
	ID        string
	UserName  string
	Filter    model.Filter
	Questions []model.Question
	CreatedAt time.Time

	answers map[int]string
}

// NewSession starts a test over the given questions, keeping their order.
func NewSession(userName string, f model.Filter, questions []model.Question) *Session {
	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	return &Session{
		ID:        uuid.NewString(),
		UserName:  userName,
		Filter:    f,
		Questions: qs,
		CreatedAt: time.Now(),
		answers:   make(map[int]string),
	}
}

func (s *Session) question(id int) (model.Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// Record stores the selected option text for a question, replacing any earlier answer.
func (s *Session) Record(questionID int, option string) error {
	q, ok := s.question(questionID)
	if !ok {
		return fmt.Errorf("question %d: %w", questionID, ErrUnknownQuestion)
	}
	if !q.HasOption(option) {
		return fmt.Errorf("question %d: %w", questionID, ErrInvalidOption)
	}
	s.answers[questionID] = option
	return nil
}

// RecordOption stores the answer by 1-based option number.
func (s *Session) RecordOption(questionID, option int) error {
	q, ok := s.question(questionID)
	if !ok {
		return fmt.Errorf("question %d: %w", questionID, ErrUnknownQuestion)
	}
	if option < 1 || option > model.NumOptions {
		return fmt.Errorf("question %d option %d: %w", questionID, option, ErrInvalidOption)
	}
	s.answers[questionID] = q.Options[option-1]
	return nil
}

// RecordAll sets the answers of the listed questions by 1-based option
// number, 0 clearing the question. Nothing is changed unless every entry is
// valid.
func (s *Session) RecordAll(options map[int]int) error {
	for id, opt := range options {
		if _, ok := s.question(id); !ok {
			return fmt.Errorf("question %d: %w", id, ErrUnknownQuestion)
		}
		if opt < 0 || opt > model.NumOptions {
			return fmt.Errorf("question %d option %d: %w", id, opt, ErrInvalidOption)
		}
	}
	for id, opt := range options {
		if opt == 0 {
			delete(s.answers, id)
			continue
		}
		q, _ := s.question(id)
		s.answers[id] = q.Options[opt-1]
	}
	return nil
}

// Clear marks a question as unanswered.
func (s *Session) Clear(questionID int) {
	delete(s.answers, questionID)
}

// Answer returns the recorded answer for a question.
func (s *Session) Answer(questionID int) (string, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() map[int]string {
	return maps.Clone(s.answers)
}

// Len returns the number of questions in the test.
func (s *Session) Len() int {
	return len(s.Questions)
}

// Score scores the recorded answers.
func (s *Session) Score() ([]model.ResultEntry, model.ScoreSummary, error) {
	return Score(s.Questions, s.answers)
}
