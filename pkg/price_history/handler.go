package price_history

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type RecordDTO struct {
	MonthStart string  `json:"monthStart"`
	UsdBtc     float64 `json:"usdBtc"`
}

type UpdateResponseDTO struct {
	Message string     `json:"message"`
	Record  *RecordDTO `json:"record,omitempty"`
}

type ErrorDTO struct {
	Error string `json:"error"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListHistory godoc
// @Summary List recorded BTC/USD prices
// @Description Get the monthly BTC/USD price history in chronological order
// @Tags PriceHistory
// @Produce json
// @Success 200 {array} RecordDTO
// @Router /api/price-history [get]
func (handler *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing price history")
	records, err := handler.service.History(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error()})
		return
	}

	recordsDTO := make([]RecordDTO, 0, len(records))
	for _, record := range records {
		recordsDTO = append(recordsDTO, RecordToDTO(record))
	}
	writeJSON(w, http.StatusOK, recordsDTO)
}

// UpdatePrice godoc
// @Summary Record the current BTC/USD price
// @Description Fetch the spot price from the quote API and append it for the first day of the current month
// @Tags PriceHistory
// @Produce json
// @Success 200 {object} UpdateResponseDTO
// @Failure 500 {object} ErrorDTO
// @Router /api/price-history/update [post]
func (handler *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating price history")
	result, err := handler.service.RecordCurrentPrice(r.Context())
	if err != nil {
		log.Errorf("price history update failed: %v", err)
		if errors.Is(err, ErrPriceUnavailable) {
			writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: "Failed to fetch Bitcoin price."})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error()})
		return
	}

	recordDTO := RecordToDTO(result.Record)
	message := "Bitcoin price data updated successfully."
	if !result.Appended {
		message = "Bitcoin price data is already up to date."
	}
	writeJSON(w, http.StatusOK, UpdateResponseDTO{Message: message, Record: &recordDTO})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func RecordToDTO(record Record) RecordDTO {
	return RecordDTO{
		MonthStart: record.MonthStart.Format(DateLayout),
		UsdBtc:     record.UsdBtc,
	}
}
