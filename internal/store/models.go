package store

import "time"

// SentimentResult is one classified message.
type SentimentResult struct {
	Position int     `json:"position"` // 0-based order within the analysis
	Message  string  `json:"message"`
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
}

// LabelCount is one entry of the label distribution.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Analysis struct {
	ID        string            `json:"id"` // UUID
	Filename  string            `json:"filename"`
	Provider  string            `json:"provider"`
	Model     string            `json:"model"`
	CreatedAt time.Time         `json:"created_at"`
	Results   []SentimentResult `json:"results"`
	Counts    []LabelCount      `json:"counts"` // first-seen label order
}

// AnalysisSummary is what listings return; results are left out.
type AnalysisSummary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	TopLabel     string    `json:"top_label"` // Empty when there were no messages
	CreatedAt    time.Time `json:"created_at"`
}
