package price_history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/btcrunway/btcrunway/internal/utils"
	"github.com/btcrunway/btcrunway/pkg/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func setupServiceTest(t *testing.T) (*ServiceImpl, *RepositoryStub, *quote.ClientStub, *utils.MockClock) {
	repo := NewRepositoryStub()
	quotes := quote.NewClientStub()
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.May, 17, 9, 30, 0, 0, time.UTC)}
	service := NewService(repo, quotes, clock)
	t.Cleanup(func() {
		repo.Cleanup()
		quotes.Reset()
	})
	return service, repo, quotes, clock
}

func TestServiceImpl_RecordCurrentPrice(t *testing.T) {
	t.Run("should append the price for the first day of the current month", func(t *testing.T) {
		// given
		service, repo, quotes, _ := setupServiceTest(t)
		quotes.SetPrice(61500.5)

		// when
		result, err := service.RecordCurrentPrice(ctx)

		// then
		require.NoError(t, err)
		expected := Record{MonthStart: month(2024, time.May), UsdBtc: 61500.5}
		assert.True(t, result.Appended)
		assert.Equal(t, expected, result.Record)
		records, _ := repo.List(ctx)
		assert.Equal(t, []Record{expected}, records)
	})

	t.Run("should skip fetching when the month is already recorded", func(t *testing.T) {
		// given
		service, repo, quotes, _ := setupServiceTest(t)
		require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.May), UsdBtc: 60000}))
		quotes.SetPrice(61500.5)

		// when
		result, err := service.RecordCurrentPrice(ctx)

		// then
		require.NoError(t, err)
		assert.False(t, result.Appended)
		assert.Equal(t, 60000.0, result.Record.UsdBtc)
		assert.Equal(t, 0, quotes.Calls())
	})

	t.Run("should append a new month after older records", func(t *testing.T) {
		// given
		service, repo, quotes, clock := setupServiceTest(t)
		require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.April), UsdBtc: 64000}))
		clock.SetNow(time.Date(2024, time.June, 1, 0, 0, 1, 0, time.UTC))
		quotes.SetPrice(67000)

		// when
		result, err := service.RecordCurrentPrice(ctx)

		// then
		require.NoError(t, err)
		assert.True(t, result.Appended)
		records, _ := repo.List(ctx)
		assert.Len(t, records, 2)
		assert.Equal(t, month(2024, time.June), records[1].MonthStart)
	})

	t.Run("should report quote failures as price unavailable", func(t *testing.T) {
		// given
		service, repo, quotes, _ := setupServiceTest(t)
		quoteErr := &quote.APIError{StatusCode: 500}
		quotes.SetError(quoteErr)

		// when
		_, err := service.RecordCurrentPrice(ctx)

		// then
		assert.ErrorIs(t, err, ErrPriceUnavailable)
		var apiErr *quote.APIError
		assert.ErrorAs(t, err, &apiErr)
		records, _ := repo.List(ctx)
		assert.Empty(t, records)
	})

	t.Run("should treat a concurrent append as up to date", func(t *testing.T) {
		// given
		service, repo, quotes, _ := setupServiceTest(t)
		quotes.SetPrice(61500.5)
		repo.SetAppendError(ErrMonthAlreadyRecorded)

		// when
		result, err := service.RecordCurrentPrice(ctx)

		// then
		require.NoError(t, err)
		assert.False(t, result.Appended)
	})

	t.Run("should return storage errors", func(t *testing.T) {
		// given
		service, repo, quotes, _ := setupServiceTest(t)
		quotes.SetPrice(61500.5)
		repo.SetAppendError(errors.New("disk full"))

		// when
		_, err := service.RecordCurrentPrice(ctx)

		// then
		assert.ErrorContains(t, err, "failed to store price: disk full")
	})
}

func TestServiceImpl_History(t *testing.T) {
	// given
	service, repo, _, _ := setupServiceTest(t)
	require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.February), UsdBtc: 2}))
	require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.January), UsdBtc: 1}))

	// when
	records, err := service.History(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{MonthStart: month(2024, time.January), UsdBtc: 1},
		{MonthStart: month(2024, time.February), UsdBtc: 2},
	}, records)
}
