package provisioning

import (
	"errors"
	"fmt"
)

// AbortError is a fatal, non-retryable end of the run. Because the workflow
// performs no compensating transactions, the error carries the manual
// remediation steps implied by the state that was reached when it tripped.
type AbortError struct {
	// Step is the phase in which the run aborted.
	Step string

	// Reason is the operator-facing explanation.
	Reason string

	// Err is the underlying backend error, if any.
	Err error

	// Remediation lists the manual steps to restore consistency before a
	// retry, in order.
	Remediation []string
}

func (e *AbortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aborted during %s: %s: %v", e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("aborted during %s: %s", e.Step, e.Reason)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// AsAbort extracts an AbortError from an error chain.
func AsAbort(err error) (*AbortError, bool) {
	var abort *AbortError
	if errors.As(err, &abort) {
		return abort, true
	}
	return nil, false
}
