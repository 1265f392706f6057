package projection

import (
	"context"
	"errors"

	"github.com/btcrunway/btcrunway/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type Result struct {
	Input   Input
	Summary Summary
	Series  Series
}

type Service interface {
	Project(ctx context.Context, form Form) (Result, error)
}

type ServiceImpl struct{}

func NewService() *ServiceImpl {
	return &ServiceImpl{}
}

func (s *ServiceImpl) Project(ctx context.Context, form Form) (Result, error) {
	input, err := Validate(form)
	if err != nil {
		log.Debugf("projection input rejected: %v", err)
		metrics.RecordProjection(metrics.OutcomeInvalid)
		return Result{}, err
	}

	series, err := Project(input)
	if err != nil {
		var verr *ValidationError
		if errors.Is(err, ErrBeforeGenesis) || errors.As(err, &verr) {
			log.Debugf("projection rejected: %v", err)
			metrics.RecordProjection(metrics.OutcomeInvalid)
		} else {
			log.Errorf("projection failed: %v", err)
			metrics.RecordProjection(metrics.OutcomeFailed)
		}
		return Result{}, err
	}

	summary := Summarize(series)
	log.WithFields(log.Fields{
		"btcStart":       input.BtcStart,
		"retirementDate": input.RetirementDate.Format(DateLayout),
		"monthsFunded":   summary.MonthsFunded,
	}).Debug("projection computed")
	metrics.RecordProjection(metrics.OutcomeSuccess)

	return Result{Input: input, Summary: summary, Series: series}, nil
}
