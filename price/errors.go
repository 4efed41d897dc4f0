package price

import (
	"errors"
	"fmt"
)

var (
	// ErrPriceUnavailable is returned when a price could not be fetched and
	// nothing, not even a stale entry, is cached for the currency.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrPriceFetch matches every *FetchError.
	ErrPriceFetch = errors.New("price fetch failed")
)

// FetchError reports that the upstream price source failed.
type FetchError struct {
	Currency string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s price: %v", e.Currency, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrPriceFetch }
