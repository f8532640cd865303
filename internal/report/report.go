// Package report renders scored tests as CSV, XLSX, PDF and PNG charts.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/testgen/internal/model"
)

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Timestamp layouts used in exports.
const (
	FileTimeLayout = "20060102_150405"
	TextTimeLayout = "02/01/2006 15:04:05"
)

// ErrUnknownFormat is returned by Render for formats it cannot produce.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Labels holds the human-readable strings used in rendered documents.
type Labels struct {
	Title      string
	Date       string
	Given      string
	Correct    string // heading of the correct answer
	Right      string // result marker and chart category
	Wrong      string
	Omitted    string
	Total      string
	Proportion string
	Magnitude  string
}

// DefaultLabels returns English labels.
func DefaultLabels() Labels {
	return Labels{
		Title:      "Test results",
		Date:       "Date",
		Given:      "Your answer",
		Correct:    "Correct answer",
		Right:      "Correct",
		Wrong:      "Incorrect",
		Omitted:    "Omitted",
		Total:      "Total score",
		Proportion: "Share of answers",
		Magnitude:  "Answers by result",
	}
}

// New assembles a report from scored entries.
func New(userName string, f model.Filter, entries []model.ResultEntry, sum model.ScoreSummary, at time.Time) model.Report {
	return model.Report{
		UserName:    userName,
		GeneratedAt: at,
		Filter:      f,
		Entries:     entries,
		Summary:     sum,
	}
}

// Render produces the export in the given format. A failure here leaves the
// report itself untouched.
func Render(f Format, rep model.Report, labels Labels) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, rep)
	case FormatXLSX:
		err = WriteXLSX(&buf, rep)
	case FormatPDF:
		err = WritePDF(&buf, rep, labels)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return buf.Bytes(), nil
}
