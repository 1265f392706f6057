package price_history

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const DateLayout = "2006-01-02"

var ErrNoRecords = errors.New("price history is empty")
var ErrMonthAlreadyRecorded = errors.New("price for this month is already recorded")
var ErrInvalidRecord = errors.New("invalid price history record")
var ErrPriceUnavailable = errors.New("failed to fetch Bitcoin price")

// Record is the BTC/USD price observed for one month.
type Record struct {
	// MonthStart is the first day of the month at UTC midnight.
	MonthStart time.Time
	UsdBtc     float64
}

func (r Record) validate() error {
	if r.MonthStart.IsZero() || r.MonthStart.Day() != 1 {
		return fmt.Errorf("%w: month start %s is not the first day of a month", ErrInvalidRecord, r.MonthStart.Format(DateLayout))
	}
	if !(r.UsdBtc > 0) || math.IsInf(r.UsdBtc, 0) {
		return fmt.Errorf("%w: price %v must be a positive number", ErrInvalidRecord, r.UsdBtc)
	}
	return nil
}
