package printer

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Spooler prints jobs in the background on a bounded worker pool so a slow
// or unplugged printer never holds up checkout.
type Spooler struct {
	printer Printer
	pool    *ants.Pool
	timeout time.Duration
}

func NewSpooler(p Printer, workers int) (*Spooler, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true), ants.WithPanicHandler(func(v interface{}) {
		zap.S().Errorw("print job panicked", "panic", v)
	}))
	if err != nil {
		return nil, err
	}
	return &Spooler{printer: p, pool: pool, timeout: 30 * time.Second}, nil
}

// Submit queues data for printing. It returns ants.ErrPoolOverload when every
// worker is busy.
func (s *Spooler) Submit(label string, data []byte) error {
	return s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.printer.Print(ctx, data); err != nil {
			zap.S().Warnw("print job failed", "job", label, "printer", s.printer.Name(), "error", err)
			return
		}
		zap.S().Debugw("print job done", "job", label, "bytes", len(data))
	})
}

// Running returns the number of jobs in flight.
func (s *Spooler) Running() int {
	return s.pool.Running()
}

// Close waits up to timeout for queued jobs to finish.
func (s *Spooler) Close(timeout time.Duration) error {
	return s.pool.ReleaseTimeout(timeout)
}
