// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
)

var (
	// ErrQueueFull is returned when the async buffer cannot take another attempt.
	ErrQueueFull = errors.New("audit: queue full")

	// ErrRecorderClosed is returned by Record after Close.
	ErrRecorderClosed = errors.New("audit: recorder closed")
)

// AsyncRecorder moves writes off the request path.
//
// Record enqueues without blocking; a single worker forwards attempts to the
// wrapped recorder. Sink errors are logged by the worker without the raw email.
type AsyncRecorder struct {
	next   Recorder
	logger *slog.Logger
	queue  chan LoginAttempt

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncRecorder starts the worker in front of next with room for size attempts.
func NewAsyncRecorder(next Recorder, size int, logger *slog.Logger) *AsyncRecorder {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	recorder := &AsyncRecorder{
		next:   next,
		logger: logger,
		queue:  make(chan LoginAttempt, size),
	}

	recorder.wg.Add(1)
	go recorder.run()

	return recorder
}

// Record implements Recorder. It never blocks on the sink.
func (recorder *AsyncRecorder) Record(_ context.Context, attempt LoginAttempt) error {
	recorder.mu.RLock()
	defer recorder.mu.RUnlock()

	if recorder.closed {
		return ErrRecorderClosed
	}

	select {
	case recorder.queue <- attempt:
		return nil
	default:
		return ErrQueueFull
	}
}

/*
Close stops accepting attempts and waits for the queue to drain.

Parameters:
  - context: context.Context (bounds the wait)

Returns:
  - error: context error if draining did not finish in time
*/
func (recorder *AsyncRecorder) Close(context context.Context) error {
	recorder.mu.Lock()
	if !recorder.closed {
		recorder.closed = true
		close(recorder.queue)
	}
	recorder.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		recorder.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-context.Done():
		return context.Err()
	}
}

func (recorder *AsyncRecorder) run() {
	defer recorder.wg.Done()

	for attempt := range recorder.queue {
		ctx, cancel := context.WithTimeout(context.Background(), constants.AuditWriteTimeout)
		if err := recorder.next.Record(ctx, attempt); err != nil {
			recorder.logger.ErrorContext(ctx, "login_attempt_record_failed",
				slog.String("email_hash", emailFingerprint(attempt.Email)),
				slog.String("guard", attempt.Guard),
				slog.Bool("successful", attempt.Successful),
				slog.Any("error", err),
			)
		}
		cancel()
	}
}

// emailFingerprint correlates log lines for one address without storing it.
func emailFingerprint(email string) string {
	return sec.HashToken(strings.ToLower(email))[:16]
}
