package server

import (
	"sync"
	"time"
)

// TickService runs a function at a fixed interval until stopped. It adapts a
// periodic task, such as the database health probe, to the Service interface.
type TickService struct {
	interval time.Duration
	fn       func()
	done     chan struct{}
	stop     sync.Once
}

// NewTickService creates a TickService calling fn every interval.
//
// Precondition: interval must be positive; fn must be non-nil.
func NewTickService(interval time.Duration, fn func()) *TickService {
	return &TickService{
		interval: interval,
		fn:       fn,
		done:     make(chan struct{}),
	}
}

// Start runs the tick loop and blocks until Stop is called.
//
// Postcondition: fn is never called again after Start returns.
func (s *TickService) Start() error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return nil
		case <-ticker.C:
			s.fn()
		}
	}
}

// Stop terminates the tick loop. Safe to call more than once.
func (s *TickService) Stop() {
	s.stop.Do(func() { close(s.done) })
}
