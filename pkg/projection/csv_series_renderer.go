package projection

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

var csvHeader = []string{
	"monthStart",
	"xDays",
	"usdBtc",
	"medianHouseholdMonthlyExpense",
	"usdExpensesFinancedByBtcStack",
	"btcAtMonthEnd",
}

type CsvSeriesRendererImpl struct {
}

func NewCsvSeriesRenderer() *CsvSeriesRendererImpl {
	return &CsvSeriesRendererImpl{}
}

func (t *CsvSeriesRendererImpl) RenderSeries(series Series) (string, error) {
	data := make([][]string, 0, len(series)+1)
	data = append(data, csvHeader)
	for _, record := range series {
		data = append(data, []string{
			record.MonthStart.Format(DateLayout),
			formatFloat(record.XDays),
			formatFloat(record.UsdBtc),
			formatFloat(record.MedianHouseholdMonthlyExpense),
			formatFloat(record.UsdExpensesFinancedByBtcStack),
			formatFloat(record.BtcAtMonthEnd),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
