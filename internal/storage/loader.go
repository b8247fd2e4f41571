package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"referralreport/internal/metrics"
)

// CopyFn abstracts a backend's bulk insert. Rows are aligned to columns.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// Loader groups rows into batches and hands each batch to a CopyFn.
type Loader struct {
	Job       string
	BatchSize int
	Logger    *zap.Logger
}

// Load drains in, calling copyFn for every full batch and once more for the
// remainder when in is closed. It returns the total reported by copyFn and
// the first error. On cancellation it returns (total, ctx.Err()).
func (l Loader) Load(ctx context.Context, columns []string, in <-chan []any, copyFn CopyFn) (int64, error) {
	if l.BatchSize <= 0 {
		return 0, fmt.Errorf("batch size must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		total     int64
		batches   int64
		batch     = make([][]any, 0, l.BatchSize)
		start     = time.Now()
		lastFlush = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			log.Error("storage: copy failed", zap.Int64("inserted", n), zap.Int64("total", total), zap.Error(err))
			return err
		}

		batches++
		metrics.RecordBatches(l.Job, 1)
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Debug("storage: batch flushed",
			zap.Int64("batch", batches),
			zap.Int64("rows", n),
			zap.Int64("total", total),
			zap.Float64("rps", rps),
			zap.Duration("elapsed", now.Sub(start)),
		)
		lastFlush = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= l.BatchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// Feed streams rows into a channel from a goroutine that stops when ctx is
// done. The channel is closed when every row was sent or ctx ended.
func Feed(ctx context.Context, rows [][]any) <-chan []any {
	out := make(chan []any)
	go func() {
		defer close(out)
		for _, r := range rows {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
