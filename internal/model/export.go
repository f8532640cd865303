package model

import "time"

// Report is everything an export needs: who took the test, when, and how it went.
type Report struct {
	UserName    string        `json:"user_name"`
	GeneratedAt time.Time     `json:"generated_at"`
	Filter      Filter        `json:"filter"`
	Entries     []ResultEntry `json:"entries"`
	Summary     ScoreSummary  `json:"summary"`
}

// SampleExport is the JSON document printed by the sample command.
type SampleExport struct {
	Source    string     `json:"source"`
	Filter    Filter     `json:"filter"`
	Requested int        `json:"requested"`
	Available int        `json:"available"`
	Questions []Question `json:"questions"`
}
