package presenter

import (
	"context"
	"sync"
)

// Feed is a Source that delivers published events in order on a single
// goroutine, the one running Run.
type Feed struct {
	events chan Event

	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

func NewFeed(buffer int) *Feed {
	return &Feed{
		events:   make(chan Event, buffer),
		handlers: make(map[int]Handler),
	}
}

func (f *Feed) Subscribe(h Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.handlers[id] = h
	f.order = append(f.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.handlers, id)
			for i, v := range f.order {
				if v == id {
					f.order = append(f.order[:i], f.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish enqueues ev, waiting for buffer space until ctx is done.
func (f *Feed) Publish(ctx context.Context, ev Event) error {
	select {
	case f.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the delivery goroutine after every event published
// before it, and waits for it to return.
func (f *Feed) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	if err := f.Publish(ctx, t); err != nil {
		return err
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// task rides the event queue so it is ordered with the events around it.
type task struct {
	fn   func()
	done chan struct{}
}

func (task) isEvent() {}

// Run delivers events until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-f.events:
			if t, ok := ev.(task); ok {
				t.fn()
				close(t.done)
				continue
			}
			for _, h := range f.subscribers() {
				Dispatch(h, ev)
			}
		}
	}
}

func (f *Feed) subscribers() []Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	hs := make([]Handler, 0, len(f.order))
	for _, id := range f.order {
		hs = append(hs, f.handlers[id])
	}
	return hs
}
