package workshop

import "time"

// Status is the final state of one item in a batch.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome records what happened to one item.
type Outcome struct {
	ItemID   string
	Status   Status
	Attempts int
	Err      error
	Path     string
	Duration time.Duration
}

// Report aggregates the outcomes of a batch, in item order.
type Report struct {
	GameID   string
	Outcomes []Outcome
	Started  time.Time
	Finished time.Time
}

// Failed returns the outcomes of items that exhausted their attempts.
func (r Report) Failed() []Outcome {
	return r.filter(StatusFailed)
}

// Succeeded returns the outcomes of items that were downloaded and moved.
func (r Report) Succeeded() []Outcome {
	return r.filter(StatusSucceeded)
}

// Skipped returns the outcomes of items never attempted because the run was cancelled.
func (r Report) Skipped() []Outcome {
	return r.filter(StatusSkipped)
}

// Elapsed is the wall-clock duration of the batch.
func (r Report) Elapsed() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

func (r Report) filter(status Status) []Outcome {
	var out []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			out = append(out, outcome)
		}
	}
	return out
}
