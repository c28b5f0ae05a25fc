package models

import "time"

// TournamentReport is the terminal record of a finished tournament. It is
// written once and never modified.
type TournamentReport struct {
	Number       int       `json:"number,omitempty"`
	Participants []string  `json:"participants"`
	Winner       string    `json:"winner"`
	Log          string    `json:"log"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ReportSummary is a listing entry for a stored report.
type ReportSummary struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Winner string `json:"winner"`
}
