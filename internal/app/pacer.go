package app

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next per-title fetch batch may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer spaces batches at least delay apart. The first Wait returns
// immediately. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) Pacer {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
