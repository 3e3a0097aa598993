package core

// upload_limiter.go bounds how many uploads are parsed and loaded at once.
//
// Each upload holds its whole payload in memory plus the parsed grid, so the
// limiter caps parallel ingests with a semaphore. When every slot is taken a
// request waits up to maxWait before failing with ErrTooManyUploads.
// Wait blocks until in-flight uploads finish and is used during shutdown.

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when all upload slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxConcurrentUploads is the default limit for parallel uploads.
const DefaultMaxConcurrentUploads = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// UploadLimiter controls concurrent upload processing.
type UploadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	inflight sync.WaitGroup
	active   atomic.Int64
	rejected atomic.Int64
}

// NewUploadLimiter creates a limiter that allows at most maxConcurrent simultaneous uploads.
// Requests that cannot acquire a slot within maxWait will receive ErrTooManyUploads.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &UploadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for an upload slot. On success it returns a release function
// that must be called exactly once; calling it again is a no-op.
func (l *UploadLimiter) Acquire(ctx context.Context) (release func(), err error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
	case <-timer.C:
		l.rejected.Add(1)
		return nil, ErrTooManyUploads
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.inflight.Add(1)
	l.active.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Add(-1)
			<-l.semaphore
			l.inflight.Done()
		})
	}, nil
}

// Wait blocks until all active uploads complete or ctx is done.
func (l *UploadLimiter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UploadLimiterStatus is a snapshot of the limiter's state.
type UploadLimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Rejected      int64 `json:"rejected"`
}

// Status returns the current limiter state.
func (l *UploadLimiter) Status() UploadLimiterStatus {
	return UploadLimiterStatus{
		Active:        int(l.active.Load()),
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
		Rejected:      l.rejected.Load(),
	}
}
