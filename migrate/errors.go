package migrate

import (
	"errors"
	"fmt"
)

// ErrEmptyLedger is returned by RevertLast when nothing has been applied.
var ErrEmptyLedger = errors.New("no applied migrations to revert")

// StatementError reports a definition whose up or down was rejected by the
// engine. The run halts at it and later pending definitions are not
// attempted. The underlying engine error is kept verbatim.
type StatementError struct {
	Version string
	Name    string
	Err     error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("migration %s (%s) failed, %v", e.Version, e.Name, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// OrderingError reports an invalid registry: duplicate or unsortable
// versions, duplicate names, missing procedures. Always raised at
// construction, never mid-run.
type OrderingError struct {
	Version string
	Reason  string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("migration %q rejected, %s", e.Version, e.Reason)
}

// UnknownVersionError reports a ledger row whose version this build's
// registry does not know, usually a schema last touched by a newer build.
// Advisory in Status, fatal when a revert lands on it.
type UnknownVersionError struct {
	Version string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("ledger version %s is unknown to this build", e.Version)
}
