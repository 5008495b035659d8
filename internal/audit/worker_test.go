package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/internal/audit"
	"trellis/internal/platform/logger"
)

type recordingSink struct {
	mu       sync.Mutex
	sent     []audit.Event
	attempts int
	err      error
}

func (s *recordingSink) Send(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSink) tried() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func TestWorkerForwardsEvents(t *testing.T) {
	sink := &recordingSink{}
	inbox := make(chan audit.Event, 4)
	worker := audit.NewWorker(sink, inbox, logger.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- audit.Event{Action: audit.ActionMint}
	inbox <- audit.Event{Action: audit.ActionBurn}

	require.Eventually(t, func() bool { return sink.count() == 2 },
		time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorkerSurvivesSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker unavailable")}
	inbox := make(chan audit.Event, 4)
	worker := audit.NewWorker(sink, inbox, logger.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- audit.Event{Action: audit.ActionMint}
	require.Eventually(t, func() bool { return sink.tried() == 1 },
		time.Second, 10*time.Millisecond)

	// The failure is logged; the worker keeps draining.
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	inbox <- audit.Event{Action: audit.ActionBurn}

	require.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
