package projection

import (
	"fmt"
	"math"
	"strings"
)

// MaxMonthlyExpenses is the largest starting expense whose 30 years of inflation still fit in a float64.
var MaxMonthlyExpenses = math.MaxFloat64 / math.Pow(1+FiatInflation, HorizonMonths/12)

// Form holds the raw values entered by the user.
type Form struct {
	BtcStart              float64 `json:"btcStart"`
	RetirementDate        string  `json:"retirementDate"`
	MedianHouseholdIncome float64 `json:"medianHouseholdIncome"`
	IncomeAfterTaxes      float64 `json:"incomeAfterTaxes"`
	MonthlyExpenses       float64 `json:"monthlyExpenses"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		parts = append(parts, fieldErr.Field+" "+fieldErr.Message)
	}
	return "invalid projection input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks the form and converts it to an Input. All problems are reported at once.
func Validate(form Form) (Input, error) {
	verr := &ValidationError{}

	checkNonNegative(verr, "btcStart", form.BtcStart)
	checkNonNegative(verr, "medianHouseholdIncome", form.MedianHouseholdIncome)
	checkNonNegative(verr, "incomeAfterTaxes", form.IncomeAfterTaxes)
	checkMonthlyExpenses(verr, form.MonthlyExpenses)

	var input Input
	if strings.TrimSpace(form.RetirementDate) == "" {
		verr.add("retirementDate", "is required")
	} else if date, err := ParseDate(form.RetirementDate); err != nil {
		verr.add("retirementDate", err.Error())
	} else {
		input.RetirementDate = date
	}

	if verr.HasErrors() {
		return Input{}, verr
	}

	input.BtcStart = form.BtcStart
	input.MonthlyExpenses = form.MonthlyExpenses
	input.MedianHouseholdIncome = form.MedianHouseholdIncome
	input.IncomeAfterTaxes = form.IncomeAfterTaxes
	return input, nil
}

func checkNonNegative(verr *ValidationError, field string, value float64) bool {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		verr.add(field, "must be a finite number")
	case value < 0:
		verr.add(field, fmt.Sprintf("must be greater than or equal to 0, got %v", value))
	default:
		return true
	}
	return false
}

func checkMonthlyExpenses(verr *ValidationError, value float64) {
	if checkNonNegative(verr, "monthlyExpenses", value) && value > MaxMonthlyExpenses {
		verr.add("monthlyExpenses", fmt.Sprintf("must be at most %g, got %v", MaxMonthlyExpenses, value))
	}
}
