package models

import "time"

// EnrichmentReport summarizes one background enrichment run.
type EnrichmentReport struct {
	ID         int64     `json:"id,omitempty"`
	Key        string    `json:"key"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Total      int       `json:"total"`     // listings in the set
	Attempted  int       `json:"attempted"` // after the per-run cap
	Enriched   int       `json:"enriched"`  // at least one value merged
	Failed     int       `json:"failed"`
	Stored     bool      `json:"stored"`
	Error      string    `json:"error,omitempty"`
}

// Duration is how long the run took.
func (r EnrichmentReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
