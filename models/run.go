package models

import (
	"fmt"
	"time"
)

// RunState is the lifecycle state of an analysis run.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateNavigating RunState = "navigating"
	StateSampling   RunState = "sampling"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

var allowedTransitions = map[RunState][]RunState{
	StateIdle:       {StateNavigating},
	StateNavigating: {StateSampling, StateFailed},
	StateSampling:   {StateNavigating, StateDone},
}

// Next validates a transition from s to next.
func (s RunState) Next(next RunState) (RunState, error) {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, fmt.Errorf("illegal run state transition %s -> %s", s, next)
}

// Terminal reports whether no further transitions are possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// RunManifest describes one run: which pages were reached, what was written
// and a digest of the structured report.
type RunManifest struct {
	RunID        string       `json:"run_id" bson:"run_id"`
	TargetURL    string       `json:"target_url" bson:"target_url"`
	Engine       string       `json:"engine" bson:"engine"`
	State        RunState     `json:"state" bson:"state"`
	Error        string       `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt    time.Time    `json:"started_at" bson:"started_at"`
	FinishedAt   time.Time    `json:"finished_at" bson:"finished_at"`
	Pages        []PageResult `json:"pages" bson:"pages"`
	Viewports    []string     `json:"viewports" bson:"viewports"`
	Artifacts    []string     `json:"artifacts" bson:"artifacts"`
	ReportDigest string       `json:"report_digest" bson:"report_digest"`
}

// Counts returns the number of ok, failed and skipped pages.
func (m *RunManifest) Counts() (ok, failed, skipped int) {
	for _, p := range m.Pages {
		switch p.Status {
		case PageOK:
			ok++
		case PageFailed:
			failed++
		case PageSkipped:
			skipped++
		}
	}
	return ok, failed, skipped
}
