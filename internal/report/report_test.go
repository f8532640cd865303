package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/testgen/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleReport() model.Report {
	four, seven := "4", "7, or maybe \"8\""
	return New("José Pérez", model.Filter{Topic: "Math", Difficulty: "Easy"},
		[]model.ResultEntry{
			{QuestionID: 1, Question: "2+2?", Given: &four, Correct: "4", IsCorrect: true},
			{QuestionID: 2, Question: "3+3, really?", Given: &seven, Correct: "6"},
			{QuestionID: 3, Question: "¿Cuánto es 4+4?", Correct: "8"},
		},
		model.ScoreSummary{Total: 0.15, Correct: 1, Incorrect: 1, Omitted: 1},
		time.Date(2026, 10, 19, 9, 5, 7, 0, time.UTC),
	)
}

func TestCSVRoundTrip(t *testing.T) {
	rep := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rep))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "user,question,given_answer,correct_answer,result", lines[0])
	assert.Equal(t, "José Pérez,¿Cuánto es 4+4?,,8,incorrect", lines[3])

	user, entries, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rep.UserName, user)
	require.Len(t, entries, len(rep.Entries))
	for i, want := range rep.Entries {
		got := entries[i]
		assert.Equal(t, want.Question, got.Question)
		assert.Equal(t, want.Given, got.Given)
		assert.Equal(t, want.Correct, got.Correct)
		assert.Equal(t, want.IsCorrect, got.IsCorrect)
		assert.Equal(t, want.Marker(), got.Marker())
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "user,question,answer,correct,result\n"},
		{"short row", "user,question,given_answer,correct_answer,result\nu,q,a\n"},
		{"bad marker", "user,question,given_answer,correct_answer,result\nu,q,a,b,maybe\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	rep := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet, summarySheet}, f.GetSheetList())
	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"José Pérez", "2+2?", "4", "4", "correct"}, rows[1])

	total, err := f.GetCellValue(summarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "0.15", total)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleReport(), DefaultLabels()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFPaginates(t *testing.T) {
	rep := sampleReport()
	rep.Entries = nil
	for i := range 60 {
		given := "París"
		rep.Entries = append(rep.Entries, model.ResultEntry{
			QuestionID: i + 1,
			Question:   fmt.Sprintf("¿Pregunta número %d, cuál es la capital de Francia? Un texto bastante largo que ocupa una segunda línea de la página", i+1),
			Given:      &given,
			Correct:    "París",
			IsCorrect:  true,
		})
	}
	rep.Summary = model.ScoreSummary{Total: 12, Correct: 60}

	var short, long bytes.Buffer
	require.NoError(t, WritePDF(&short, sampleReport(), DefaultLabels()))
	require.NoError(t, WritePDF(&long, rep, DefaultLabels()))
	assert.Greater(t, bytes.Count(long.Bytes(), []byte("/Type /Page\n")), bytes.Count(short.Bytes(), []byte("/Type /Page\n")))
}

func TestWritePDFAccentedText(t *testing.T) {
	given, correct := "Peñíscola", "París"
	rep := New("Begoña Muñoz", model.Filter{Topic: "Geografía"},
		[]model.ResultEntry{
			{QuestionID: 1, Question: "¿Cuál es la capital de Francia?", Given: &given, Correct: correct},
			{QuestionID: 2, Question: "¿Año de la Revolución Francesa? «1789» — “sí”", Correct: "1789"},
		},
		model.ScoreSummary{Total: -0.05, Incorrect: 1, Omitted: 1},
		time.Date(2026, 10, 19, 9, 5, 7, 0, time.UTC),
	)
	var buf bytes.Buffer
	require.NotPanics(t, func() {
		require.NoError(t, WritePDF(&buf, rep, DefaultLabels()))
	})
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFNoQuestions(t *testing.T) {
	rep := model.Report{UserName: "x", GeneratedAt: time.Now()}
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, rep, DefaultLabels()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestChartData(t *testing.T) {
	labels := DefaultLabels()
	cats := ChartData(model.ScoreSummary{Correct: 2, Incorrect: 1, Omitted: 1}, labels)
	require.Len(t, cats, 3)
	assert.Equal(t, []string{labels.Right, labels.Wrong, labels.Omitted},
		[]string{cats[0].Label, cats[1].Label, cats[2].Label})
	assert.InDelta(t, 50.0, cats[0].Percent, 1e-9)
	assert.InDelta(t, 25.0, cats[1].Percent, 1e-9)
	assert.InDelta(t, 25.0, cats[2].Percent, 1e-9)

	empty := ChartData(model.ScoreSummary{}, labels)
	for _, c := range empty {
		assert.Zero(t, c.Count)
		assert.Zero(t, c.Percent)
	}
}

func TestCharts(t *testing.T) {
	sums := []model.ScoreSummary{
		{Correct: 1, Incorrect: 1, Omitted: 1},
		{Omitted: 5},
		{Correct: 3, Incorrect: 3, Omitted: 3},
	}
	for _, sum := range sums {
		for _, kind := range []string{ChartProportion, ChartMagnitude} {
			t.Run(fmt.Sprintf("%s/%d-%d-%d", kind, sum.Correct, sum.Incorrect, sum.Omitted), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, RenderChart(&buf, kind, sum, DefaultLabels()))
				assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
			})
		}
	}

	var buf bytes.Buffer
	assert.ErrorIs(t, ProportionChart(&buf, model.ScoreSummary{}, DefaultLabels()), ErrNoData)
	assert.ErrorIs(t, MagnitudeChart(&buf, model.ScoreSummary{}, DefaultLabels()), ErrNoData)
	assert.Error(t, RenderChart(&buf, "radar", sums[0], DefaultLabels()))
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		user string
		want string
	}{
		{"Ana", "results_Ana_20261019_150405.csv"},
		{"José Pérez", "results_Jose_Perez_20261019_150405.csv"},
		{"  a/b\\c  ", "results_a_b_c_20261019_150405.csv"},
		{"", "results_anonymous_20261019_150405.csv"},
		{"../..", "results_anonymous_20261019_150405.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename("results", tt.user, FormatCSV, at))
		})
	}
}

func TestRender(t *testing.T) {
	rep := sampleReport()
	for _, f := range []Format{FormatCSV, FormatXLSX, FormatPDF} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Render(f, rep, DefaultLabels())
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			assert.NotEmpty(t, f.ContentType())
		})
	}

	_, err := Render("docx", rep, DefaultLabels())
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	f, err := ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
}
