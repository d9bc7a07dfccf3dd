package pending

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically expires the requests of a Table.
type Sweeper struct {
	table    *Table
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(table *Table, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		table:    table,
		interval: interval,
		log:      log,
	}
}

// Run sweeps the table on every tick until the context is done.
// It always returns the context's error.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep expires requests once at the current time of the table's clock.
func (s *Sweeper) Sweep() int {
	expired := s.table.Sweep(s.table.Now())
	for _, request := range expired {
		s.log.Warn().
			Uint32("sequence", request.SequenceNumber).
			Stringer("expected", request.Expected).
			Dur("age", s.table.Now().Sub(request.CreatedAt)).
			Msg("pending request timed out")
	}
	return len(expired)
}
