package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedCurrency = errors.New("currency not supported")
	ErrRateUnavailable     = errors.New("rate not available")
	ErrRatesUnavailable    = errors.New("exchange rates unavailable")
	ErrPersistenceFailed   = errors.New("conversion could not be recorded")
	ErrQuotaExceeded       = errors.New("quota exceeded")
)

// QuotaExceededError reports the cap that applied when admission was denied.
type QuotaExceededError struct {
	Limit   int
	Weekend bool
}

func (e *QuotaExceededError) Error() string {
	day := "workday"
	if e.Weekend {
		day = "weekend day"
	}
	return fmt.Sprintf("%s: %d requests per %s", ErrQuotaExceeded, e.Limit, day)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
