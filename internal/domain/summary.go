package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunState tracks orchestrator progress through one run.
type RunState string

const (
	StateInit       RunState = "init"
	StateFetching   RunState = "fetching"
	StateDeduping   RunState = "deduping"
	StateScoring    RunState = "scoring"
	StateDelivering RunState = "delivering"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// RunSummary aggregates the outcome of a single run. Owned by the
// orchestrator; everything else only contributes through its methods.
type RunSummary struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	State      RunState
	PerPair    map[string]int
	Fetched    int
	Deduped    int
	Notified   int
	Archived   int
	Errors     []string
}

// NewRunSummary starts an empty summary stamped with a fresh run ID.
func NewRunSummary(now time.Time) *RunSummary {
	return &RunSummary{
		RunID:     uuid.New(),
		StartedAt: now,
		State:     StateInit,
		PerPair:   make(map[string]int),
	}
}

// CountPair records how many items one (source, keyword) pair produced.
func (s *RunSummary) CountPair(source SourceID, keyword string, n int) {
	s.PerPair[fmt.Sprintf("%s/%s", source, keyword)] += n
	s.Fetched += n
}

// AddError appends a non-fatal error for end-of-run reporting.
func (s *RunSummary) AddError(err error) {
	if err != nil {
		s.Errors = append(s.Errors, err.Error())
	}
}
