package daemon

import (
	"context"
	"log"
	"time"
)

// SessionSweeper is the slice of the mining service the sweep loop uses.
type SessionSweeper interface {
	SweepExpired() (int, error)
}

// Sweeper periodically force-closes sessions that have outlived the
// maximum duration, so earnings stop accruing even when a client never
// calls stop.
type Sweeper struct {
	svc      SessionSweeper
	interval time.Duration
}

// NewSweeper creates a sweep loop over the mining service.
func NewSweeper(svc SessionSweeper, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	closed, err := s.svc.SweepExpired()
	if err != nil {
		log.Printf("daemon: session sweep: %v", err)
	}
	if closed > 0 {
		log.Printf("daemon: force-closed %d expired session(s)", closed)
	}
}
