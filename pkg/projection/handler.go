package projection

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

type RecordDTO struct {
	MonthStart                    string  `json:"monthStart"`
	XDays                         float64 `json:"xDays"`
	UsdBtc                        float64 `json:"usdBtc"`
	MedianHouseholdMonthlyExpense float64 `json:"medianHouseholdMonthlyExpense"`
	UsdExpensesFinancedByBtcStack float64 `json:"usdExpensesFinancedByBtcStack"`
	BtcAtMonthEnd                 float64 `json:"btcAtMonthEnd"`
}

type SummaryDTO struct {
	Months       int     `json:"months"`
	FinalBtc     float64 `json:"finalBtc"`
	DepletedAt   string  `json:"depletedAt,omitempty"`
	MonthsFunded int     `json:"monthsFunded"`
}

type ProjectionDTO struct {
	Input   Form        `json:"input"`
	Summary SummaryDTO  `json:"summary"`
	Series  []RecordDTO `json:"series"`
}

type ValidationErrorDTO struct {
	Errors []FieldError `json:"errors"`
}

type SeriesRenderer interface {
	RenderSeries(series Series) (string, error)
}

type Handler struct {
	service  Service
	renderer SeriesRenderer
}

func NewHandler(service Service, renderer SeriesRenderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// Project godoc
// @Summary Project a BTC funded retirement
// @Description Simulate 360 months of expenses paid from a BTC stack under the power-law price model
// @Tags Projection
// @Accept json
// @Produce json,text/csv
// @Param form body Form true "Projection input"
// @Param format query string false "Set to csv for a CSV export of the series"
// @Success 200 {object} ProjectionDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 422 {object} ValidationErrorDTO
// @Router /api/projection [post]
func (handler *Handler) Project(w http.ResponseWriter, r *http.Request) {
	log.Debug("Projecting retirement")
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := handler.service.Project(r.Context(), form)
	if err != nil {
		writeProjectionError(w, err)
		return
	}

	if wantsCsv(r) {
		body, err := handler.renderer.RenderSeries(result.Series)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="projection.csv"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(body)); err != nil {
			log.Errorf("failed to write csv response: %v", err)
		}
		return
	}

	// Encoded up front so a failure can still become a 500.
	body, err := json.Marshal(ResultToDTO(result))
	if err != nil {
		log.Errorf("failed to encode projection: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Errorf("failed to write projection response: %v", err)
	}
}

func writeProjectionError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationErrors(w, verr.Errors)
	case errors.Is(err, ErrBeforeGenesis):
		writeValidationErrors(w, []FieldError{{Field: "retirementDate", Message: err.Error()}})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeValidationErrors(w http.ResponseWriter, fieldErrors []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(ValidationErrorDTO{Errors: fieldErrors}); err != nil {
		log.Errorf("failed to write validation errors: %v", err)
	}
}

func wantsCsv(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

func ResultToDTO(result Result) ProjectionDTO {
	series := make([]RecordDTO, 0, len(result.Series))
	for _, record := range result.Series {
		series = append(series, RecordToDTO(record))
	}
	return ProjectionDTO{
		Input:   InputToForm(result.Input),
		Summary: SummaryToDTO(result.Summary),
		Series:  series,
	}
}

func RecordToDTO(record Record) RecordDTO {
	return RecordDTO{
		MonthStart:                    record.MonthStart.Format(DateLayout),
		XDays:                         record.XDays,
		UsdBtc:                        record.UsdBtc,
		MedianHouseholdMonthlyExpense: record.MedianHouseholdMonthlyExpense,
		UsdExpensesFinancedByBtcStack: record.UsdExpensesFinancedByBtcStack,
		BtcAtMonthEnd:                 record.BtcAtMonthEnd,
	}
}

func SummaryToDTO(summary Summary) SummaryDTO {
	dto := SummaryDTO{
		Months:       summary.Months,
		FinalBtc:     summary.FinalBtc,
		MonthsFunded: summary.MonthsFunded,
	}
	if summary.DepletedAt != nil {
		dto.DepletedAt = summary.DepletedAt.Format(DateLayout)
	}
	return dto
}

func InputToForm(input Input) Form {
	return Form{
		BtcStart:              input.BtcStart,
		RetirementDate:        input.RetirementDate.Format(DateLayout),
		MedianHouseholdIncome: input.MedianHouseholdIncome,
		IncomeAfterTaxes:      input.IncomeAfterTaxes,
		MonthlyExpenses:       input.MonthlyExpenses,
	}
}
