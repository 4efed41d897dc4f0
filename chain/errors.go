package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable is returned when a backend never established its connection.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network error")
	// ErrInsufficientFunds is returned when the spendable value cannot cover amount plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBroadcastRejected matches every *BroadcastRejectedError.
	ErrBroadcastRejected = errors.New("broadcast rejected")
	// ErrUnsupportedCurrency is returned for symbols no backend is registered for.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrNotSupported is returned when a backend cannot perform an operation at all.
	ErrNotSupported = errors.New("not supported")
	// ErrHistoryConsumed is yielded when a history sequence is iterated a second time.
	ErrHistoryConsumed = errors.New("history already consumed")
)

// NetworkError reports a transport failure talking to a node or service.
type NetworkError struct {
	Op  string
	Err error
}

// NewNetworkError wraps err as a transport failure of op.
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// BroadcastRejectedError reports that a node refused a signed payload.
type BroadcastRejectedError struct {
	Reason string
}

func (e *BroadcastRejectedError) Error() string {
	return fmt.Sprintf("broadcast rejected: %s", e.Reason)
}

func (e *BroadcastRejectedError) Is(target error) bool { return target == ErrBroadcastRejected }

// Unavailable wraps the reason a backend could not connect.
func Unavailable(symbol string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", symbol, ErrBackendUnavailable)
	}
	return fmt.Errorf("%s: %w: %v", symbol, ErrBackendUnavailable, cause)
}
