package bank

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/testgen/internal/model"
)

const sampleCSV = `Tema,Dificultad,Pregunta,Opción 1,Opción 2,Opción 3,Opción 4,Correcta
Math,Easy,2+2?,3,4,5,6,2
Math,Hard,Integral of 1/x?,x,ln|x|,1/x²,e^x,2
History,Easy,Year of the French Revolution?,1789,1492,1914,1066,1
`

func TestLoadCSV(t *testing.T) {
	tbl, err := Load("bank.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, "bank.csv", tbl.Source)
	assert.True(t, tbl.HasDifficulty)
	require.Len(t, tbl.Questions, 3)

	q := tbl.Questions[0]
	assert.Equal(t, 1, q.ID)
	assert.Equal(t, "Math", q.Topic)
	assert.Equal(t, "Easy", q.Difficulty)
	assert.Equal(t, "2+2?", q.Text)
	assert.Equal(t, [4]string{"3", "4", "5", "6"}, q.Options)
	assert.Equal(t, 2, q.Correct)

	assert.Equal(t, []string{"Math", "History"}, tbl.Topics())
	assert.Equal(t, []string{"Easy", "Hard"}, tbl.Difficulties("Math"))
}

func TestLoadCSVSemicolonAndBOM(t *testing.T) {
	data := "\ufeffTema;Pregunta;Opción 1;Opción 2;Opción 3;Opción 4;Correcta\n" +
		"Geo;Capital de Francia?;Madrid;París;Roma;Lisboa;2\n"
	tbl, err := Load("banco.CSV", strings.NewReader(data))
	require.NoError(t, err)

	assert.False(t, tbl.HasDifficulty)
	require.Len(t, tbl.Questions, 1)
	assert.Equal(t, "París", tbl.Questions[0].Options[1])
	assert.Nil(t, tbl.Difficulties(""))
}

func TestLoadCSVDecomposedHeader(t *testing.T) {
	// "Opción" spelled with a combining acute accent (NFD).
	header := "tema,PREGUNTA,Opcio\u0301n 1,Opcio\u0301n 2,Opcio\u0301n 3,Opcio\u0301n 4, Correcta \n"
	data := header + "T,Q,a,b,c,d,4.0\n"
	tbl, err := Load("x.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, tbl.Questions, 1)
	assert.Equal(t, 4, tbl.Questions[0].Correct)
}

func TestLoadSkipsBlankRows(t *testing.T) {
	data := "Tema,Pregunta,Opción 1,Opción 2,Opción 3,Opción 4,Correcta\n" +
		"T,Q1,a,b,c,d,1\n" +
		",,,,,,\n" +
		"T,Q2,a,b,c,d,3\n"
	tbl, err := Load("x.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, tbl.Questions, 2)
	assert.Equal(t, 1, tbl.Questions[0].ID)
	assert.Equal(t, 3, tbl.Questions[1].ID)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	for _, name := range []string{"bank.txt", "bank.xls", "bank.json", "bank"} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(name, strings.NewReader(sampleCSV))
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			assert.False(t, Supported(name))
		})
	}
	assert.True(t, Supported("a.xlsx"))
	assert.True(t, Supported("a.CSV"))
}

func TestLoadMissingColumn(t *testing.T) {
	data := "Tema,Pregunta,Opción 1,Opción 2,Opción 3,Opción 4\nT,Q,a,b,c,d\n"
	_, err := Load("x.csv", strings.NewReader(data))
	require.ErrorIs(t, err, ErrMissingColumn)

	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, ColCorrect, colErr.Column)
}

func TestLoadRowErrors(t *testing.T) {
	data := "Tema,Pregunta,Opción 1,Opción 2,Opción 3,Opción 4,Correcta\n" +
		"T,Q1,a,b,c,d,5\n" +
		"T,Q2,a,b,c,d,two\n" +
		"T,,a,b,c,d,1\n" +
		"T,Q4,a,,c,d,1\n" +
		"T,Q5,a,b,c,d,1.5\n"
	_, err := Load("x.csv", strings.NewReader(data))
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"row 2:", "row 3:", "row 4:", "row 5:", "row 6:"} {
		assert.Contains(t, msg, want)
	}
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
}

func TestLoadEmptyBank(t *testing.T) {
	data := "Tema,Pregunta,Opción 1,Opción 2,Opción 3,Opción 4,Correcta\n"
	_, err := Load("x.csv", strings.NewReader(data))
	assert.ErrorIs(t, err, ErrEmptyBank)

	_, err = Load("x.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Tema", "Dificultad", "Pregunta", "Opción 1", "Opción 2", "Opción 3", "Opción 4", "Correcta"},
		{"Math", "Easy", "2+2?", 3, 4, 5, 6, 2},
		{"Math", "Easy", "3+3?", 5, 6, 7, 8, 2},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := Load("bank.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, tbl.Questions, 2)
	assert.Equal(t, model.Question{
		ID:         2,
		Topic:      "Math",
		Difficulty: "Easy",
		Text:       "3+3?",
		Options:    [4]string{"5", "6", "7", "8"},
		Correct:    2,
	}, tbl.Questions[1])
}

func TestLoadXLSXCorrupt(t *testing.T) {
	_, err := Load("bank.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}
