package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventName is the unique name of the event
type EventName string

// Event is a event that can be dispatched and 0 .. n listeners may listen for
type Event interface {
	Name() EventName
}

// EventListener enables to listen for a certain event
type EventListener interface {
	ForEvent() EventName
	Handle(ctx context.Context, ev Event) error
}

// ListenerFunc adapts a plain function to an EventListener
type ListenerFunc struct {
	Event EventName
	Fn    func(ctx context.Context, ev Event) error
}

func (l ListenerFunc) ForEvent() EventName { return l.Event }

func (l ListenerFunc) Handle(ctx context.Context, ev Event) error { return l.Fn(ctx, ev) }

// Dispatcher delivers events synchronously to every registered listener in registration order.
// Listener failures are logged and never reach the code that raised the event.
type Dispatcher struct {
	log *zap.Logger

	mu        sync.RWMutex
	listeners map[EventName][]EventListener
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		log:       log,
		listeners: map[EventName][]EventListener{},
	}
}

// Register adds the listeners, registering the same listener twice delivers events twice
func (d *Dispatcher) Register(listeners ...EventListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range listeners {
		name := l.ForEvent()
		d.listeners[name] = append(d.listeners[name], l)
		d.log.Debug("event listener registered",
			zap.String("event", string(name)),
			zap.Int("listeners", len(d.listeners[name])))
	}
}

// Listeners returns how many listeners are registered for the event
func (d *Dispatcher) Listeners(name EventName) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name])
}

func (d *Dispatcher) snapshot(name EventName) []EventListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]EventListener(nil), d.listeners[name]...)
}

// Dispatch hands the event to all listeners of its name
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	listeners := d.snapshot(ev.Name())
	if len(listeners) == 0 {
		d.log.Debug("event dropped, nobody listens", zap.String("event", string(ev.Name())))
		return
	}
	start := time.Now()
	failed := 0
	for _, l := range listeners {
		if err := d.deliver(ctx, l, ev); err != nil {
			failed++
			d.log.Error("event listener failed",
				zap.String("event", string(ev.Name())),
				zap.String("listener", fmt.Sprintf("%T", l)),
				zap.Error(err))
		}
	}
	d.log.Debug("event dispatched",
		zap.String("event", string(ev.Name())),
		zap.Int("listeners", len(listeners)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))
}

// deliver turns a panicking listener into an error
func (d *Dispatcher) deliver(ctx context.Context, l EventListener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return l.Handle(ctx, ev)
}
