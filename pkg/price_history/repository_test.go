package price_history

import (
	"context"
	"testing"
	"time"

	"github.com/btcrunway/btcrunway/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func truncate(t *testing.T, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(), "TRUNCATE btc_price_history")
	require.NoError(t, err)
}

func TestRepositoryImpl(t *testing.T) {
	db := test_utils.TestWithDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("should return ErrNoRecords for empty history", func(t *testing.T) {
		truncate(t, db)

		_, err := repo.Latest(ctx)

		assert.ErrorIs(t, err, ErrNoRecords)
	})

	t.Run("should append and list records ordered by month", func(t *testing.T) {
		// given
		truncate(t, db)

		// when
		require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.March), UsdBtc: 71333.65}))
		require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.January), UsdBtc: 42569.76}))

		// then
		records, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Record{
			{MonthStart: month(2024, time.January), UsdBtc: 42569.76},
			{MonthStart: month(2024, time.March), UsdBtc: 71333.65},
		}, records)

		latest, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, month(2024, time.March), latest.MonthStart)
	})

	t.Run("should refuse a second record for the same month", func(t *testing.T) {
		// given
		truncate(t, db)
		require.NoError(t, repo.Append(ctx, Record{MonthStart: month(2024, time.May), UsdBtc: 60000}))

		// when
		err := repo.Append(ctx, Record{MonthStart: month(2024, time.May), UsdBtc: 1})

		// then
		assert.ErrorIs(t, err, ErrMonthAlreadyRecorded)
		latest, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, 60000.0, latest.UsdBtc)
	})

	t.Run("should reject invalid records before touching the database", func(t *testing.T) {
		err := repo.Append(ctx, Record{MonthStart: month(2024, time.May), UsdBtc: -5})

		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}
