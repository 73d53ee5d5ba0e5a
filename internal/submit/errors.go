package submit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("another submission is in progress")

// ConnectionError means there is no wallet session to sign with.
type ConnectionError struct{}

func (ConnectionError) Error() string {
	return "no wallet session: connect a wallet on the ledger's network first"
}

// Kind classifies an execution failure for the user-facing message.
type Kind string

const (
	KindContractNotFound Kind = "contract-not-found"
	KindPermissionDenied Kind = "permission-denied"
	KindTypeMismatch     Kind = "type-mismatch"
	KindUnknown          Kind = "unknown"
)

// Classify maps an execution error message to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Package object does not exist"):
		return KindContractNotFound
	case strings.Contains(msg, "Object") && strings.Contains(msg, "is owned by"):
		return KindPermissionDenied
	case strings.Contains(msg, "TypeMismatch") || strings.Contains(msg, "CommandArgumentError"):
		return KindTypeMismatch
	}
	return KindUnknown
}

// ExecutionError is a failure reported by the execution capability. The
// local store is never changed when one is returned.
type ExecutionError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// UserMessage is the actionable text shown to the user.
func (e *ExecutionError) UserMessage() string {
	switch e.Kind {
	case KindContractNotFound:
		return "Contract not found. Your wallet is probably connected to the wrong network: " +
			"switch it to the network the contract is deployed on, then reconnect."
	case KindPermissionDenied:
		return "Permission denied. Only the holder of the admin capability can perform " + e.Op + "."
	case KindTypeMismatch:
		return "Invalid data format. Check that every field is filled in correctly and " +
			"that numeric fields hold numbers."
	}
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}
