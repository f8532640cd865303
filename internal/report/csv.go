package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/pavelanni/testgen/internal/model"
)

// CSVHeader is the header row of the tabular export.
var CSVHeader = []string{"user", "question", "given_answer", "correct_answer", "result"}

// WriteCSV writes one row per result entry. Omitted answers are empty cells.
func WriteCSV(w io.Writer, rep model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range rep.Entries {
		if err := cw.Write([]string{rep.UserName, e.Question, e.GivenText(), e.Correct, e.Marker()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV. Entries carry no question IDs.
func ReadCSV(r io.Reader) (string, []model.ResultEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return "", nil, errors.New("empty results file")
	}
	if err != nil {
		return "", nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range CSVHeader {
		if header[i] != h {
			return "", nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], h)
		}
	}

	var user string
	var entries []model.ResultEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", line, err)
		}
		user = rec[0]
		e := model.ResultEntry{Question: rec[1], Correct: rec[3]}
		if rec[2] != "" {
			given := rec[2]
			e.Given = &given
		}
		switch rec[4] {
		case model.MarkerCorrect:
			e.IsCorrect = true
		case model.MarkerIncorrect:
		default:
			return "", nil, fmt.Errorf("line %d: unknown result %q", line, rec[4])
		}
		entries = append(entries, e)
	}
	return user, entries, nil
}
