package projection

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvSeriesRendererImpl_RenderSeries(t *testing.T) {
	type args struct {
		series Series
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "RenderSeries with two months",
			args: args{
				series: Series{
					{
						MonthStart:                    date(2024, time.January, 1),
						XDays:                         5419,
						UsdBtc:                        28084.5,
						MedianHouseholdMonthlyExpense: 2009.75,
						UsdExpensesFinancedByBtcStack: 0.0715,
						BtcAtMonthEnd:                 0.9285,
					},
					{
						MonthStart:                    date(2024, time.February, 1),
						XDays:                         5450,
						UsdBtc:                        28900,
						MedianHouseholdMonthlyExpense: 2019.5,
						UsdExpensesFinancedByBtcStack: 0.07,
						BtcAtMonthEnd:                 0,
					},
				},
			},
			want: "monthStart,xDays,usdBtc,medianHouseholdMonthlyExpense,usdExpensesFinancedByBtcStack,btcAtMonthEnd\n" +
				"2024-01-01,5419,28084.5,2009.75,0.0715,0.9285\n" +
				"2024-02-01,5450,28900,2019.5,0.07,0\n",
		},
		{
			name: "RenderSeries with no months",
			args: args{series: Series{}},
			want: "monthStart,xDays,usdBtc,medianHouseholdMonthlyExpense,usdExpensesFinancedByBtcStack,btcAtMonthEnd\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t1 *testing.T) {
			renderer := NewCsvSeriesRenderer()
			got, err := renderer.RenderSeries(tt.args.series)
			require.NoError(t1, err)
			assert.Equal(t1, tt.want, got)
		})
	}
}

func TestCsvSeriesRendererImpl_RenderSeries_FullProjection(t *testing.T) {
	// given
	series, err := Project(exampleInput)
	require.NoError(t, err)

	// when
	got, err := NewCsvSeriesRenderer().RenderSeries(series)

	// then
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	assert.Len(t, lines, HorizonMonths+1)
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-01,5419,"))
	assert.True(t, strings.HasPrefix(lines[HorizonMonths], "2053-12-01,"))
}
