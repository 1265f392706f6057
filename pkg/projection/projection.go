package projection

import (
	"errors"
	"math"
	"time"
)

// Genesis anchors the price model: xDays is counted from this date.
var Genesis = time.Date(2009, time.March, 1, 0, 0, 0, 0, time.UTC)

const (
	priceExponent    = 5.0
	priceLogScale    = -33.0
	priceCoefficient = 1.29

	// FiatInflation is the assumed annual growth of expenses.
	FiatInflation = 0.06

	// HorizonMonths is the fixed length of every projection (30 years).
	HorizonMonths = 30 * 12
)

var ErrBeforeGenesis = errors.New("retirement date must be after 2009-03-01")

const expensesOutOfRange = "is too large to project from this retirement date"

type Input struct {
	BtcStart       float64
	RetirementDate time.Time
	// MonthlyExpenses is the post-tax monthly expense in USD as of the retirement date, before inflation.
	MonthlyExpenses float64

	// Carried for the caller, the simulation does not read them.
	MedianHouseholdIncome float64
	IncomeAfterTaxes      float64
}

type Record struct {
	MonthStart                    time.Time
	XDays                         float64
	UsdBtc                        float64
	MedianHouseholdMonthlyExpense float64
	UsdExpensesFinancedByBtcStack float64
	BtcAtMonthEnd                 float64
}

type Series []Record

// MonthlyInflationMultiplier is the 12th root of (1 + FiatInflation).
func MonthlyInflationMultiplier() float64 {
	return math.Pow(1+FiatInflation, 1.0/12)
}

// ModelPrice returns the power-law BTC/USD price for the given number of days since Genesis.
func ModelPrice(xDays float64) float64 {
	return priceCoefficient * math.Pow(xDays, priceExponent) * math.Exp(priceLogScale)
}

// Project simulates the monthly depletion of a BTC stack over HorizonMonths months.
// It is pure and safe for concurrent use. Either the full series is returned or an
// error is returned before any month is simulated.
func Project(input Input) (Series, error) {
	if err := checkDomain(input); err != nil {
		return nil, err
	}
	retirement := DateOf(input.RetirementDate)
	if !retirement.After(Genesis) {
		return nil, ErrBeforeGenesis
	}

	multiplier := MonthlyInflationMultiplier()
	stack := input.BtcStart
	expense := input.MonthlyExpenses

	series := make(Series, 0, HorizonMonths)
	for month := 0; month < HorizonMonths; month++ {
		monthDate := AddMonths(retirement, month)
		xDays := DaysBetween(Genesis, monthDate)
		usdBtc := ModelPrice(xDays)
		expense *= multiplier

		btcExpense := expense / usdBtc
		if math.IsInf(expense, 0) || math.IsInf(btcExpense, 0) {
			verr := &ValidationError{}
			verr.add("monthlyExpenses", expensesOutOfRange)
			return nil, verr
		}
		if stack > btcExpense {
			stack -= btcExpense
		} else {
			stack = 0
		}

		series = append(series, Record{
			MonthStart:                    monthDate,
			XDays:                         xDays,
			UsdBtc:                        usdBtc,
			MedianHouseholdMonthlyExpense: expense,
			UsdExpensesFinancedByBtcStack: btcExpense,
			BtcAtMonthEnd:                 stack,
		})
	}
	return series, nil
}

func checkDomain(input Input) error {
	verr := &ValidationError{}
	checkNonNegative(verr, "btcStart", input.BtcStart)
	checkMonthlyExpenses(verr, input.MonthlyExpenses)
	if input.RetirementDate.IsZero() {
		verr.add("retirementDate", "is required")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
