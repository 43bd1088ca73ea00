// Package resource provides global limits for segment file transfers.
// A nil *Controller disables all limits, so callers can thread one
// through unconditionally.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentTransfers is the maximum number of segment files
	// moving between local disk and the backend at once.
	// If 0, defaults to 4.
	MaxConcurrentTransfers int64

	// IOLimitBytesPerSec is the maximum transfer throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages transfer concurrency and throughput.
type Controller struct {
	cfg Config

	transferSem *semaphore.Weighted
	inFlight    atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentTransfers <= 0 {
		cfg.MaxConcurrentTransfers = 4
	}

	c := &Controller{
		cfg:         cfg,
		transferSem: semaphore.NewWeighted(cfg.MaxConcurrentTransfers),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireTransfer reserves a transfer slot.
// Blocks until a slot is free or ctx is canceled.
func (c *Controller) AcquireTransfer(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if err := c.transferSem.Acquire(ctx, 1); err != nil {
		return err
	}

	c.inFlight.Add(1)

	return nil
}

// TryAcquireTransfer reserves a transfer slot without blocking.
// Returns true if acquired.
func (c *Controller) TryAcquireTransfer() bool {
	if c == nil {
		return true
	}

	if !c.transferSem.TryAcquire(1) {
		return false
	}

	c.inFlight.Add(1)

	return true
}

// ReleaseTransfer releases a transfer slot.
func (c *Controller) ReleaseTransfer() {
	if c == nil {
		return
	}

	c.transferSem.Release(1)
	c.inFlight.Add(-1)
}

// TransfersInFlight returns the number of reserved transfer slots.
func (c *Controller) TransfersInFlight() int64 {
	if c == nil {
		return 0
	}

	return c.inFlight.Load()
}

// AcquireIO waits until the IO limit allows the specified number of
// bytes. Requests larger than the limiter's burst drain the budget in
// burst sized slices, since WaitN rejects oversized requests outright.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}

	if bytes <= 0 {
		return nil
	}

	burst := c.ioLimiter.Burst()

	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}

		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}

		bytes -= n
	}

	return nil
}
