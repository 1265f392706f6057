package projection

import "time"

// Summary condenses a series into what the retirement message needs.
type Summary struct {
	Months   int
	FinalBtc float64
	// DepletedAt is the first month whose balance ends at zero, nil when the stack lasts the whole horizon.
	DepletedAt   *time.Time
	MonthsFunded int
}

func Summarize(series Series) Summary {
	summary := Summary{Months: len(series)}
	if len(series) == 0 {
		return summary
	}
	summary.FinalBtc = series[len(series)-1].BtcAtMonthEnd
	for i := range series {
		if series[i].BtcAtMonthEnd > 0 {
			summary.MonthsFunded++
			continue
		}
		if summary.DepletedAt == nil {
			depletedAt := series[i].MonthStart
			summary.DepletedAt = &depletedAt
		}
	}
	return summary
}
