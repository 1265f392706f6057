package quote

import (
	"context"
	"sync"
)

type ClientStub struct {
	mu    sync.Mutex
	price float64
	err   error
	calls int
}

func NewClientStub() *ClientStub {
	return &ClientStub{}
}

func (s *ClientStub) LatestUsdPrice(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.price, nil
}

func (s *ClientStub) SetPrice(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
	s.err = nil
}

func (s *ClientStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *ClientStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *ClientStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = 0
	s.err = nil
	s.calls = 0
}
