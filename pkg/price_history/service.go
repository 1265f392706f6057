package price_history

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcrunway/btcrunway/internal/metrics"
	"github.com/btcrunway/btcrunway/internal/utils"
	"github.com/btcrunway/btcrunway/pkg/quote"
	log "github.com/sirupsen/logrus"
)

// UpdateResult tells whether RecordCurrentPrice added a record or found the month already recorded.
type UpdateResult struct {
	Record   Record
	Appended bool
}

type Service interface {
	History(ctx context.Context) ([]Record, error)
	RecordCurrentPrice(ctx context.Context) (UpdateResult, error)
}

type ServiceImpl struct {
	repo   Repository
	quotes quote.Client
	clock  utils.Clock
}

func NewService(repo Repository, quotes quote.Client, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, quotes: quotes, clock: clock}
}

func (s *ServiceImpl) History(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// RecordCurrentPrice fetches the spot price and stores it for the first day of the current month.
// The quote API is not called when the month is already recorded.
func (s *ServiceImpl) RecordCurrentPrice(ctx context.Context) (UpdateResult, error) {
	monthStart := utils.StartOfMonth(s.clock.Now())

	latest, err := s.repo.Latest(ctx)
	switch {
	case err == nil && latest.MonthStart.Equal(monthStart):
		log.Infof("BTC price for %s already recorded", monthStart.Format(DateLayout))
		metrics.RecordPriceFetch(metrics.OutcomeSkipped, latest.UsdBtc)
		return UpdateResult{Record: latest, Appended: false}, nil
	case err != nil && !errors.Is(err, ErrNoRecords):
		metrics.RecordPriceFetch(metrics.OutcomeFailed, 0)
		return UpdateResult{}, fmt.Errorf("failed to read latest price: %w", err)
	}

	usdBtc, err := s.quotes.LatestUsdPrice(ctx)
	if err != nil {
		metrics.RecordPriceFetch(metrics.OutcomeFailed, 0)
		return UpdateResult{}, fmt.Errorf("%w: %w", ErrPriceUnavailable, err)
	}

	record := Record{MonthStart: monthStart, UsdBtc: usdBtc}
	if err := s.repo.Append(ctx, record); err != nil {
		if errors.Is(err, ErrMonthAlreadyRecorded) {
			log.Infof("BTC price for %s was recorded concurrently", monthStart.Format(DateLayout))
			metrics.RecordPriceFetch(metrics.OutcomeSkipped, usdBtc)
			return UpdateResult{Record: record, Appended: false}, nil
		}
		metrics.RecordPriceFetch(metrics.OutcomeFailed, 0)
		return UpdateResult{}, fmt.Errorf("failed to store price: %w", err)
	}

	log.Infof("Recorded BTC price %.2f USD for %s", usdBtc, monthStart.Format(DateLayout))
	metrics.RecordPriceFetch(metrics.OutcomeSuccess, usdBtc)
	return UpdateResult{Record: record, Appended: true}, nil
}
