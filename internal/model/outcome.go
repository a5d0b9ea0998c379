package model

// Outcome is the run-level result of a download or crawl.
type Outcome int

const (
	// OutcomeSuccess means every requested page succeeded.
	OutcomeSuccess Outcome = iota

	// OutcomePartial means some, but not all, pages succeeded.
	OutcomePartial

	// OutcomeFailure means no page succeeded, or the request itself was invalid.
	OutcomeFailure
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomePartial:
		return "PARTIAL"
	case OutcomeFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return 0
	case OutcomePartial:
		return 2
	default:
		return 1
	}
}
