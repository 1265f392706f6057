package price_history

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu        sync.Mutex
	records   []Record
	appendErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	if err := record.validate(); err != nil {
		return err
	}
	for _, existing := range s.records {
		if existing.MonthStart.Equal(record.MonthStart) {
			return ErrMonthAlreadyRecorded
		}
	}
	s.records = append(s.records, record)
	return nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]Record, len(s.records))
	copy(records, s.records)
	sort.Slice(records, func(i, j int) bool {
		return records[i].MonthStart.Before(records[j].MonthStart)
	})
	return records, nil
}

func (s *RepositoryStub) Latest(ctx context.Context) (Record, error) {
	records, _ := s.List(ctx)
	if len(records) == 0 {
		return Record{}, ErrNoRecords
	}
	return records[len(records)-1], nil
}

func (s *RepositoryStub) SetAppendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.appendErr = nil
}
