package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appI18n "github.com/pavelanni/testgen/internal/i18n"
	"github.com/pavelanni/testgen/internal/model"
	"github.com/pavelanni/testgen/internal/quiz"
	"github.com/pavelanni/testgen/internal/report"
)

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	require.NoError(t, appI18n.Init("en"))
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer("en"))
	ctx = model.ContextWithBasePath(ctx, "/quiz")
	return model.ContextWithCSRFToken(ctx, "tok")
}

func TestTestPageEscapesAndKeepsAnswers(t *testing.T) {
	ctx := testContext(t)
	s := quiz.NewSession("<b>Ana</b>", model.Filter{Topic: "Math"}, []model.Question{
		{ID: 7, Topic: "Math", Text: "<script>alert(1)</script>", Options: [4]string{"a&b", "2", "3", "4"}, Correct: 1},
		{ID: 9, Topic: "Math", Text: "3+3?", Options: [4]string{"5", "6", "7", "8"}, Correct: 2},
	})
	require.NoError(t, s.RecordOption(7, 1))

	page := renderString(t, ctx, TestPage(s, nil))
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "1. &lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, page, "Test for &lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, page, `action="/quiz/test/submit"`)
	assert.Contains(t, page, `name="csrf_token" value="tok"`)
	assert.Contains(t, page, `name="q7" value="1" checked> a&amp;b`)
	assert.Contains(t, page, `name="q9" value="" checked>`)
	assert.NotContains(t, page, `name="q7" value="" checked`)
}

func TestIndexPageGenerationForm(t *testing.T) {
	ctx := testContext(t)
	page := renderString(t, ctx, IndexPage(IndexData{}, ErrorFlash("boom")))
	assert.Contains(t, page, `<div class="flash" data-kind="error">boom</div>`)
	assert.NotContains(t, page, `name="topic"`)

	tbl := &model.Table{
		Source:        "bank.csv",
		HasDifficulty: true,
		Questions: []model.Question{
			{ID: 1, Topic: "Math", Difficulty: "Easy", Text: "2+2?", Options: [4]string{"3", "4", "5", "6"}, Correct: 2},
			{ID: 2, Topic: "History", Difficulty: "Hard", Text: "1789?", Options: [4]string{"a", "b", "c", "d"}, Correct: 1},
		},
	}
	d := IndexData{
		Table:      tbl,
		Filter:     model.Filter{Topic: "History"},
		Count:      3,
		MaxCount:   20,
		TopicCount: map[string]int{"Math": 1, "History": 1},
	}
	page = renderString(t, ctx, IndexPage(d, nil))
	assert.Contains(t, page, "bank.csv: 2 questions available.")
	assert.Contains(t, page, `<option value="History" selected>History (1)</option>`)
	assert.Contains(t, page, `<option value="Math">Math (1)</option>`)
	assert.Contains(t, page, `name="difficulty"`)
	assert.Contains(t, page, `max="20" value="3"`)
}

func TestResultsPage(t *testing.T) {
	ctx := testContext(t)
	assert.Contains(t, renderString(t, ctx, ResultsPage(nil)), "Submit a test to see results.")

	given := "3"
	rep := report.New("Ana", model.Filter{Topic: "Math"}, []model.ResultEntry{
		{QuestionID: 1, Question: "2+2?", Given: &given, Correct: "4"},
		{QuestionID: 2, Question: "3+3?", Correct: "6"},
	}, model.ScoreSummary{Total: -0.05, Incorrect: 1, Omitted: 1}, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	page := renderString(t, ctx, ResultsPage(&rep))
	assert.Contains(t, page, "<strong>Total score: -0.05</strong>")
	assert.Contains(t, page, `<li data-result="incorrect">Incorrect: 1 (50.0%)</li>`)
	assert.Contains(t, page, `<li data-result="omitted">Omitted: 1 (50.0%)</li>`)
	assert.Contains(t, page, `<tr data-result="omitted"><td>2</td><td>3+3?</td><td>-</td>`)
	assert.Contains(t, page, `src="/quiz/results/chart/proportion.png"`)
	assert.Contains(t, page, `href="/quiz/results/export.pdf"`)
}
