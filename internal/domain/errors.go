package domain

import "fmt"

// InvalidInputError reports a request value that fails validation before any
// calculation runs (negative income, negative loan amount, unknown goal).
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s: %s (got %s)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MalformedScheduleError reports bracket data that violates the schedule
// invariants. It is raised once at load time; a schedule that constructs
// successfully is never re-validated per query. Index is -1 when the problem
// is not tied to a specific bracket.
type MalformedScheduleError struct {
	Jurisdiction string
	Year         int
	Index        int
	Message      string
}

func (e *MalformedScheduleError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed schedule for %s year %d: %s", e.Jurisdiction, e.Year, e.Message)
	}
	return fmt.Sprintf("malformed schedule for %s year %d: bracket %d: %s",
		e.Jurisdiction, e.Year, e.Index, e.Message)
}

// DataUnavailableError reports that no usable bracket data exists for the
// requested jurisdiction and year, including after year fallback. The
// calculation never substitutes a different jurisdiction's brackets.
type DataUnavailableError struct {
	Jurisdiction string
	Year         int
	Message      string
	Cause        error
}

func (e *DataUnavailableError) Error() string {
	msg := fmt.Sprintf("tax data unavailable for %s", e.Jurisdiction)
	if e.Year != 0 {
		msg = fmt.Sprintf("tax data unavailable for %s year %d", e.Jurisdiction, e.Year)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Cause
}
