package projection

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest() *Handler {
	return NewHandler(NewService(), NewCsvSeriesRenderer())
}

func postProjection(t *testing.T, handler *Handler, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	handler.Project(w, req)
	return w
}

func TestHandler_Project(t *testing.T) {
	t.Run("should return the projection as json", func(t *testing.T) {
		// given
		handler := setupHandlerTest()
		form := Form{BtcStart: 1, RetirementDate: "2024-01-01", MonthlyExpenses: 2000, MedianHouseholdIncome: 70000}

		// when
		w := postProjection(t, handler, "/api/projection", form, nil)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var response ProjectionDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, form, response.Input)
		assert.Equal(t, HorizonMonths, response.Summary.Months)
		require.Len(t, response.Series, HorizonMonths)
		assert.Equal(t, "2024-01-01", response.Series[0].MonthStart)
		assert.Equal(t, 5419.0, response.Series[0].XDays)
		assert.Equal(t, "2053-12-01", response.Series[HorizonMonths-1].MonthStart)
	})

	t.Run("should return csv when requested by query", func(t *testing.T) {
		// given
		handler := setupHandlerTest()

		// when
		w := postProjection(t, handler, "/api/projection?format=csv",
			Form{BtcStart: 1, RetirementDate: "2024-01-01", MonthlyExpenses: 2000}, nil)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		assert.Len(t, lines, HorizonMonths+1)
		assert.Equal(t, strings.Join(csvHeader, ","), lines[0])
	})

	t.Run("should return csv when requested by accept header", func(t *testing.T) {
		// given
		handler := setupHandlerTest()

		// when
		w := postProjection(t, handler, "/api/projection",
			Form{BtcStart: 1, RetirementDate: "2024-01-01", MonthlyExpenses: 2000},
			map[string]string{"Accept": "text/csv"})

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	})

	t.Run("should reject malformed json", func(t *testing.T) {
		// given
		handler := setupHandlerTest()
		req := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader("{btcStart:"))
		w := httptest.NewRecorder()

		// when
		handler.Project(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return field errors for invalid input", func(t *testing.T) {
		// given
		handler := setupHandlerTest()

		// when
		w := postProjection(t, handler, "/api/projection",
			map[string]any{"btcStart": -2, "retirementDate": "soon", "incomeAfterTaxes": 1000}, nil)

		// then
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var response ValidationErrorDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Errors, 2)
		assert.Equal(t, "btcStart", response.Errors[0].Field)
		assert.Equal(t, "retirementDate", response.Errors[1].Field)
	})

	t.Run("should reject expenses that would overflow", func(t *testing.T) {
		for _, form := range []Form{
			{BtcStart: 1, RetirementDate: "2024-01-01", MonthlyExpenses: 1e308},
			{BtcStart: 1, RetirementDate: "2009-03-02", MonthlyExpenses: 1e300},
		} {
			// when
			w := postProjection(t, setupHandlerTest(), "/api/projection", form, nil)

			// then
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var response ValidationErrorDTO
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			require.Len(t, response.Errors, 1)
			assert.Equal(t, "monthlyExpenses", response.Errors[0].Field)
		}
	})

	t.Run("should return field error for retirement before genesis", func(t *testing.T) {
		// given
		handler := setupHandlerTest()

		// when
		w := postProjection(t, handler, "/api/projection",
			Form{BtcStart: 1, RetirementDate: "2009-03-01", MonthlyExpenses: 1}, nil)

		// then
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var response ValidationErrorDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, []FieldError{{Field: "retirementDate", Message: ErrBeforeGenesis.Error()}}, response.Errors)
	})
}
