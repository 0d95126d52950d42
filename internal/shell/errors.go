package shell

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotWhitelisted reports a command rejected before any process
	// was spawned.
	ErrNotWhitelisted = errors.New("command not whitelisted")

	// ErrTimeout reports a command killed after exceeding its budget.
	ErrTimeout = errors.New("command timed out")
)

// NotWhitelistedError carries the rejected command and the reason.
type NotWhitelistedError struct {
	Command string
	Reason  string
}

func (e *NotWhitelistedError) Error() string {
	return fmt.Sprintf("command %q rejected: %s", e.Command, e.Reason)
}

func (e *NotWhitelistedError) Unwrap() error { return ErrNotWhitelisted }

// TimeoutError carries the killed command and its exceeded budget. The
// state of side effects the command performed before the kill is unknown.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q exceeded %s timeout", e.Command, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }
