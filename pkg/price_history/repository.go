package price_history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Append adds the record. It returns ErrMonthAlreadyRecorded when the month is already stored.
	Append(ctx context.Context, record Record) error
	// List returns all records ordered by month.
	List(ctx context.Context) ([]Record, error)
	Latest(ctx context.Context) (Record, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Append(ctx context.Context, record Record) error {
	if err := record.validate(); err != nil {
		return err
	}

	query := `INSERT INTO btc_price_history (month_start, usd_btc, recorded_at)
			  VALUES ($1, $2, now())
			  ON CONFLICT (month_start) DO NOTHING`

	tag, err := r.db.Exec(ctx, query, record.MonthStart, record.UsdBtc)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMonthAlreadyRecorded
	}
	return nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Record, error) {
	query := `SELECT month_start, usd_btc FROM btc_price_history ORDER BY month_start`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query price history: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.MonthStart, &record.UsdBtc); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

func (r *RepositoryImpl) Latest(ctx context.Context) (Record, error) {
	query := `SELECT month_start, usd_btc FROM btc_price_history ORDER BY month_start DESC LIMIT 1`
	var record Record
	err := r.db.QueryRow(ctx, query).Scan(&record.MonthStart, &record.UsdBtc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNoRecords
		}
		err := fmt.Errorf("could not query latest price: %w", err)
		log.Error(err)
		return Record{}, err
	}
	return record, nil
}
