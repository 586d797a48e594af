package entities

import (
	"errors"
	"fmt"
	"strings"
)

// SyncOutcome is the terminal result of synchronizing one reference.
type SyncOutcome string

const (
	OutcomeCloned   SyncOutcome = "cloned"
	OutcomeUpdated  SyncOutcome = "updated"
	OutcomeRecloned SyncOutcome = "recloned"
	OutcomeFailed   SyncOutcome = "failed"
)

// CheckoutMode records which branch resolution rule applied on an update.
type CheckoutMode string

const (
	// CheckoutLocal means an existing local branch was checked out.
	CheckoutLocal CheckoutMode = "local"
	// CheckoutTracking means a local branch was created tracking the remote branch.
	CheckoutTracking CheckoutMode = "tracking"
	// CheckoutNew means neither existed and a new local branch was created.
	CheckoutNew CheckoutMode = "new"
)

// SyncResult is the recorded outcome of one reference.
type SyncResult struct {
	Repo     ResolvedRepo
	Outcome  SyncOutcome
	State    WorkingTreeState
	Checkout CheckoutMode
	// PullWarning holds a tolerated fast-forward failure.
	PullWarning error
	Err         error
}

// RunReport aggregates the per-reference results in processing order.
type RunReport struct {
	Results []SyncResult
}

// Add records one result.
func (r *RunReport) Add(result SyncResult) {
	r.Results = append(r.Results, result)
}

// Failed returns the results that did not reach a terminal success state.
func (r *RunReport) Failed() []SyncResult {
	var failed []SyncResult
	for _, result := range r.Results {
		if result.Outcome == OutcomeFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err joins every per-reference error; nil when all references succeeded.
func (r *RunReport) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, result := range failed {
		errs = append(errs, result.Err)
	}
	return fmt.Errorf("%d of %d repositories failed to synchronize: %w",
		len(failed), len(r.Results), errors.Join(errs...))
}

// Summary renders a one-line count per outcome.
func (r *RunReport) Summary() string {
	counts := make(map[SyncOutcome]int)
	for _, result := range r.Results {
		counts[result.Outcome]++
	}
	parts := make([]string, 0, len(counts))
	for _, outcome := range []SyncOutcome{OutcomeCloned, OutcomeUpdated, OutcomeRecloned, OutcomeFailed} {
		parts = append(parts, fmt.Sprintf("%d %s", counts[outcome], outcome))
	}
	return strings.Join(parts, ", ")
}
