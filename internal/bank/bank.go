// Package bank loads question banks from uploaded CSV and XLSX files.
package bank

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pavelanni/testgen/internal/model"
)

// Column headers of the question bank.
const (
	ColTopic      = "Tema"
	ColQuestion   = "Pregunta"
	ColCorrect    = "Correcta"
	ColDifficulty = "Dificultad"
)

// OptionColumn returns the header of option n (1-based).
func OptionColumn(n int) string {
	return fmt.Sprintf("Opción %d", n)
}

var (
	// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format: use .csv or .xlsx")
	// ErrMissingColumn is wrapped by ColumnError.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyBank is returned when the file has a header but no questions.
	ErrEmptyBank = errors.New("question bank has no questions")
)

// ColumnError names a required column that is absent from the header.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingColumn, e.Column)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// RowError describes an invalid data row. Row is the 1-based line in the file,
// header included.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Supported reports whether the file name has an extension Load understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Load parses a question bank. The format is picked from the extension of name.
func Load(name string, r io.Reader) (*model.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	t, err := parseRows(rows)
	if err != nil {
		return nil, err
	}
	t.Source = filepath.Base(name)
	slog.Info("loaded question bank",
		"source", t.Source,
		"questions", len(t.Questions),
		"topics", len(t.Topics()),
		"difficulty", t.HasDifficulty,
	)
	return t, nil
}

type columns struct {
	topic, question, correct, difficulty int
	options                              [model.NumOptions]int
}

func normalizeHeader(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

func mapColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	find := func(name string) (int, error) {
		i, ok := idx[normalizeHeader(name)]
		if !ok {
			return -1, &ColumnError{Column: name}
		}
		return i, nil
	}

	var c columns
	var err error
	if c.topic, err = find(ColTopic); err != nil {
		return c, err
	}
	if c.question, err = find(ColQuestion); err != nil {
		return c, err
	}
	for n := 1; n <= model.NumOptions; n++ {
		if c.options[n-1], err = find(OptionColumn(n)); err != nil {
			return c, err
		}
	}
	if c.correct, err = find(ColCorrect); err != nil {
		return c, err
	}
	c.difficulty, err = find(ColDifficulty)
	if err != nil {
		c.difficulty = -1
	}
	return c, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCorrect accepts integers and integral floats ("2", "2.0").
func parseCorrect(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

func parseRows(rows [][]string) (*model.Table, error) {
	if len(rows) == 0 {
		return nil, &ColumnError{Column: ColTopic}
	}
	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	t := &model.Table{HasDifficulty: cols.difficulty >= 0}
	var errs []error
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		q := model.Question{
			ID:         line - 1,
			Topic:      cell(row, cols.topic),
			Difficulty: cell(row, cols.difficulty),
			Text:       cell(row, cols.question),
		}
		if q.Text == "" {
			errs = append(errs, &RowError{Row: line, Reason: "empty " + ColQuestion})
			continue
		}
		valid := true
		for n := range model.NumOptions {
			q.Options[n] = cell(row, cols.options[n])
			if q.Options[n] == "" {
				errs = append(errs, &RowError{Row: line, Reason: "empty " + OptionColumn(n+1)})
				valid = false
			}
		}
		correct, err := parseCorrect(cell(row, cols.correct))
		if err != nil {
			errs = append(errs, &RowError{Row: line, Reason: fmt.Sprintf("invalid %s: %v", ColCorrect, err)})
			continue
		}
		q.Correct = correct
		if _, err := q.CorrectOption(); err != nil {
			errs = append(errs, &RowError{Row: line, Reason: fmt.Sprintf("%s %d: %v", ColCorrect, correct, err)})
			continue
		}
		if valid {
			t.Questions = append(t.Questions, q)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(t.Questions) == 0 {
		return nil, ErrEmptyBank
	}
	return t, nil
}
