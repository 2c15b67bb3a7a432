package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"bilancio/internal/amqp"
	"bilancio/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

// fakePublisher records published events in order.
type fakePublisher struct {
	mu     sync.Mutex
	kinds  []amqp.EventKind
	ids    []int64
	failed error
}

func (f *fakePublisher) PublishEvent(_ context.Context, kind amqp.EventKind, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed != nil {
		return f.failed
	}
	f.kinds = append(f.kinds, kind)
	f.ids = append(f.ids, id)
	return nil
}

func (f *fakePublisher) published() []amqp.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]amqp.EventKind(nil), f.kinds...)
}
