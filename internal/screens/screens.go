// Package screens holds the detail-screen controllers: they load one record, offer
// the lifecycle actions the viewer may take, and apply each action remotely. The
// displayed record only changes to what the server returns.
package screens

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ukydev/aivodrive/internal/apiclient"
)

var (
	// ErrNotFound is returned when the record does not exist, as opposed to a failed
	// fetch.
	ErrNotFound  = errors.New("record not found")
	ErrNotLoaded = errors.New("record not loaded")
	// ErrActionPending is returned while a previous lifecycle action is in flight.
	ErrActionPending = errors.New("another action is in progress")
	// ErrClosed is returned by a screen after Close; nothing it fetched is applied.
	ErrClosed = errors.New("screen closed")
)

// ErrorHandler sees every remote error before it is returned. The session manager
// implements it to log out on 401.
type ErrorHandler interface {
	HandleError(err error) bool
}

type base struct {
	errs ErrorHandler
}

func (b base) remote(err error) error {
	if err == nil {
		return nil
	}
	if b.errs != nil {
		b.errs.HandleError(err)
	}
	if apiclient.IsNotFound(err) {
		if msg := apiclient.MessageOf(err); msg != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return ErrNotFound
	}
	return err
}

// lifetime tracks the requests of one screen so that Close can cancel them.
type lifetime struct {
	mu       sync.Mutex
	closed   bool
	next     uint64
	inflight map[uint64]context.CancelFunc
}

func newLifetime() *lifetime {
	return &lifetime{inflight: make(map[uint64]context.CancelFunc)}
}

// begin derives the context of one request. done must be called once it returns.
func (l *lifetime) begin(ctx context.Context) (context.Context, func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, nil, ErrClosed
	}
	l.next++
	key := l.next
	ctx, cancel := context.WithCancel(ctx)
	l.inflight[key] = cancel
	return ctx, func() {
		l.mu.Lock()
		delete(l.inflight, key)
		l.mu.Unlock()
		cancel()
	}, nil
}

// Close disposes the screen: in-flight requests are cancelled and no later result
// is applied.
func (l *lifetime) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for key, cancel := range l.inflight {
		cancel()
		delete(l.inflight, key)
	}
}

// Closed reports whether Close was called.
func (l *lifetime) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
