package viewmodel

import "sync"

// Observable holds a value and pushes every change to its subscribers.
// A subscriber that falls behind skips intermediate values but always ends
// up with the latest one.
type Observable[T any] struct {
	mu    sync.Mutex
	value T
	subs  map[int]chan T
	next  int
}

// NewObservable creates an Observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores v and publishes it.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setLocked(v)
}

// Update replaces the value with fn(current) atomically and publishes it.
func (o *Observable[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := fn(o.value)
	o.setLocked(v)
	return v
}

func (o *Observable[T]) setLocked(v T) {
	o.value = v
	for _, ch := range o.subs {
		// drop the stale value, if any, so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Subscribe returns a channel that receives the current value immediately
// and every later one. cancel closes the channel.
func (o *Observable[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	ch := make(chan T, 1)
	ch <- o.value
	o.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
