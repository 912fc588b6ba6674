package history

import "time"

// Status represents the lifecycle of a render run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusInvalid   Status = "invalid"
)

// Run is one recorded render.
type Run struct {
	ID              int64
	RunID           string
	SubtitlePath    string
	AudioPath       string
	OutputPath      string
	Style           string
	Status          Status
	AudioSeconds    float64
	RenderedSeconds float64
	ImagesPlanned   int
	ImagesFetched   int
	ImagesFailed    int
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Outcome captures the fields written when a run ends.
type Outcome struct {
	Status          Status
	AudioSeconds    float64
	RenderedSeconds float64
	ImagesPlanned   int
	ImagesFetched   int
	ImagesFailed    int
	Err             error
}

// Elapsed returns the run's wall time, or zero while it is still running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
