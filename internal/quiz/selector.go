// Package quiz draws tests from a question bank, records answers and scores them.
package quiz

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/pavelanni/testgen/internal/model"
)

// ErrNoMatch is returned when no question satisfies the filter.
var ErrNoMatch = errors.New("no questions match the selected filters")

// Selector draws random questions without replacement. It is safe for
// concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector. A nil source draws from an unseeded PCG
// generator, so consecutive runs differ.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{rng: rand.New(src)}
}

// Matching returns the questions of t that satisfy f, in table order.
func Matching(t *model.Table, f model.Filter) []model.Question {
	if t == nil {
		return nil
	}
	var out []model.Question
	for _, q := range t.Questions {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	return out
}

// Select returns min(n, matches) questions drawn uniformly at random in draw
// order. n <= 0 returns every match, shuffled. The table is left untouched.
func (s *Selector) Select(t *model.Table, f model.Filter, n int) ([]model.Question, error) {
	matches := Matching(t, f)
	if len(matches) == 0 {
		return []model.Question{}, ErrNoMatch
	}
	if n <= 0 || n > len(matches) {
		n = len(matches)
	}

	// Partial Fisher-Yates over the private copy.
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range n {
		j := i + s.rng.IntN(len(matches)-i)
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches[:n:n], nil
}
