package activity

import (
	"context"
	"errors"
	"sync"
)

// Notifier receives activity events. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Emitter fans one event out to every registered notifier. Every notifier
// runs even when earlier ones fail; failures are joined into one error.
type Emitter struct {
	mu    sync.RWMutex
	hooks []Notifier
}

// NewEmitter constructs an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Register adds a notifier. Nil notifiers are ignored.
func (e *Emitter) Register(hook Notifier) {
	if hook == nil {
		return
	}
	e.mu.Lock()
	e.hooks = append(e.hooks, hook)
	e.mu.Unlock()
}

// Notify delivers the event to every registered hook in registration
// order. Emitter itself satisfies Notifier so emitters can nest.
func (e *Emitter) Notify(ctx context.Context, event Event) error {
	e.mu.RLock()
	hooks := append([]Notifier{}, e.hooks...)
	e.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
