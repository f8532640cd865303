// Package views holds the templ components of the web UI.
package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/testgen/internal/i18n"
	"github.com/pavelanni/testgen/internal/model"
	"github.com/pavelanni/testgen/internal/quiz"
	"github.com/pavelanni/testgen/internal/report"
)

// Flash is a one-off message shown at the top of a page.
type Flash struct {
	Kind    string // "error" or "info"
	Message string
}

// ErrorFlash builds an error message.
func ErrorFlash(msg string) *Flash { return &Flash{Kind: "error", Message: msg} }

// InfoFlash builds an informational message.
func InfoFlash(msg string) *Flash { return &Flash{Kind: "info", Message: msg} }

// IndexData feeds the question bank page.
type IndexData struct {
	Table      *model.Table
	Filter     model.Filter // last submitted values, used to refill the form
	Count      int
	MaxCount   int
	UserName   string
	TopicCount map[string]int
}

// Labels returns the localized strings used in exported documents and charts.
func Labels(ctx context.Context) report.Labels {
	return report.Labels{
		Title:      appI18n.T(ctx, "ReportTitle"),
		Date:       appI18n.T(ctx, "Date"),
		Given:      appI18n.T(ctx, "YourAnswer"),
		Correct:    appI18n.T(ctx, "CorrectAnswer"),
		Right:      appI18n.T(ctx, "Correct"),
		Wrong:      appI18n.T(ctx, "Incorrect"),
		Omitted:    appI18n.T(ctx, "Omitted"),
		Total:      appI18n.T(ctx, "TotalScore"),
		Proportion: appI18n.T(ctx, "ChartProportion"),
		Magnitude:  appI18n.T(ctx, "ChartMagnitude"),
	}
}

const markerOmitted = "omitted"

// Order matches report.ChartData.
var resultKinds = []string{model.MarkerCorrect, model.MarkerIncorrect, markerOmitted}

var chartKinds = []string{report.ChartProportion, report.ChartMagnitude}

var exportFormats = []report.Format{report.FormatCSV, report.FormatXLSX, report.FormatPDF}

// url prefixes an application path with the deployment base path.
func url(ctx context.Context, path string) templ.SafeURL {
	return templ.URL(model.BasePathFromContext(ctx) + path)
}

func chartURL(ctx context.Context, kind string) string {
	return model.BasePathFromContext(ctx) + "/results/chart/" + kind + ".png"
}

func chartAlt(ctx context.Context, kind string) string {
	if kind == report.ChartMagnitude {
		return appI18n.T(ctx, "ChartMagnitude")
	}
	return appI18n.T(ctx, "ChartProportion")
}

func exportURL(ctx context.Context, f report.Format) templ.SafeURL {
	return url(ctx, "/results/export."+string(f))
}

func fieldName(q model.Question) string { return "q" + strconv.Itoa(q.ID) }

func isAnswered(s *quiz.Session, q model.Question) bool {
	_, ok := s.Answer(q.ID)
	return ok
}

func isChosen(s *quiz.Session, q model.Question, opt string) bool {
	given, ok := s.Answer(q.ID)
	return ok && given == opt
}

func formatScore(v float64) string { return fmt.Sprintf("%.2f", v) }

func formatCount(c report.Category) string {
	return fmt.Sprintf("%d (%.1f%%)", c.Count, c.Percent)
}

func resultKind(e model.ResultEntry) string {
	if e.Omitted() {
		return markerOmitted
	}
	return e.Marker()
}

func resultLabel(ctx context.Context, e model.ResultEntry) string {
	switch {
	case e.IsCorrect:
		return appI18n.T(ctx, "Correct")
	case e.Omitted():
		return appI18n.T(ctx, "Omitted")
	}
	return appI18n.T(ctx, "Incorrect")
}

func givenText(e model.ResultEntry) string {
	if e.Omitted() {
		return "-"
	}
	return e.GivenText()
}
