package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavelanni/testgen/internal/model"
)

const bankCSV = `Tema,Dificultad,Pregunta,Opción 1,Opción 2,Opción 3,Opción 4,Correcta
Math,Easy,2+2?,3,4,5,6,2
Math,Easy,3+3?,5,6,7,8,2
Math,Easy,4+4?,8,9,10,11,1
History,Easy,Year of the French Revolution?,1789,1492,1914,1066,1
`

func runSampleCmd(t *testing.T, args ...string) model.SampleExport {
	t.Helper()
	dir := t.TempDir()
	bankPath := filepath.Join(dir, "bank.csv")
	if err := os.WriteFile(bankPath, []byte(bankCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.json")

	root := rootCmd()
	root.SetArgs(append([]string{"sample", "--file", bankPath, "--output", outPath, "--log-level", "error"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("sample: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var got model.SampleExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	return got
}

func TestSampleCommand(t *testing.T) {
	got := runSampleCmd(t, "--topic", "Math", "--difficulty", "Easy", "-n", "2", "--seed", "7")
	if got.Source != "bank.csv" {
		t.Errorf("source = %q, want bank.csv", got.Source)
	}
	if got.Available != 3 || got.Requested != 2 {
		t.Errorf("available/requested = %d/%d, want 3/2", got.Available, got.Requested)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Questions))
	}
	if got.Questions[0].ID == got.Questions[1].ID {
		t.Error("questions should not repeat")
	}
	for _, q := range got.Questions {
		if q.Topic != "Math" {
			t.Errorf("question %d has topic %q", q.ID, q.Topic)
		}
	}

	again := runSampleCmd(t, "--topic", "Math", "--difficulty", "Easy", "-n", "2", "--seed", "7")
	for i := range got.Questions {
		if got.Questions[i].ID != again.Questions[i].ID {
			t.Errorf("draw %d differs with the same seed: %d vs %d", i, got.Questions[i].ID, again.Questions[i].ID)
		}
	}
}

func TestSampleCommandNoMatch(t *testing.T) {
	got := runSampleCmd(t, "--topic", "Chemistry")
	if got.Available != 0 || len(got.Questions) != 0 {
		t.Errorf("expected empty sample, got %+v", got)
	}
}

func TestJanitorInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{2 * time.Hour, 30 * time.Minute},
		{2 * time.Minute, time.Minute},
	}
	for _, tt := range tests {
		if got := janitorInterval(tt.ttl); got != tt.want {
			t.Errorf("janitorInterval(%s) = %s, want %s", tt.ttl, got, tt.want)
		}
	}
}
