// Package eventbus entrega los eventos de dominio fuera del request: un buffer en memoria
// y un worker que los pasa a un sink (Kafka o log).
package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/notify"
)

var (
	ErrBufferFull = errors.New("eventbus: buffer full")
	ErrClosed     = errors.New("eventbus: closed")
)

const (
	defaultBuffer = 256
	sinkTimeout   = 5 * time.Second
)

// Async implementa notify.Publisher sin bloquear al caller. Si el buffer está lleno el
// evento se descarta (se loguea). Los errores del sink también se loguean; no hay reintentos.
type Async struct {
	sink notify.Publisher
	log  logger.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan notify.Event
	done   chan struct{}
}

func NewAsync(sink notify.Publisher, buffer int, log logger.Logger) *Async {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if log == nil {
		log = logger.Nop()
	}
	a := &Async{
		sink: sink,
		log:  log,
		ch:   make(chan notify.Event, buffer),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Publish(ctx context.Context, e notify.Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.ch <- e:
		return nil
	default:
		a.log.Warn("event dropped", map[string]any{"type": e.Type, "subject_id": e.SubjectID})
		return ErrBufferFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.ch {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := a.sink.Publish(ctx, e); err != nil {
			a.log.Error("event publish failed", map[string]any{
				"type":       e.Type,
				"subject_id": e.SubjectID,
				"err":        err,
			})
		}
		cancel()
	}
}

// Close deja de aceptar eventos y espera a que se drene el buffer o a que venza ctx.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
