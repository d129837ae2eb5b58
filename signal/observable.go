package signal

import "slices"

// Observer is the handle returned by Observable.Add.
type Observer[T any] struct {
	fn func(T)
}

// Observable is an ordered subscriber list. Notify calls every subscriber in
// registration order, every time, whether or not the value changed.
type Observable[T any] struct {
	observers []*Observer[T]
	notified  uint64
}

func NewObservable[T any]() *Observable[T] {
	return &Observable[T]{}
}

// Add subscribes fn and returns a handle for Remove.
func (o *Observable[T]) Add(fn func(T)) *Observer[T] {
	obs := &Observer[T]{fn: fn}
	o.observers = append(o.observers, obs)
	return obs
}

func (o *Observable[T]) Remove(obs *Observer[T]) bool {
	n := len(o.observers)
	o.observers = slices.DeleteFunc(o.observers, func(x *Observer[T]) bool { return x == obs })
	return len(o.observers) != n
}

// Notify delivers v synchronously. Subscribers added or removed during delivery take
// effect from the next Notify.
func (o *Observable[T]) Notify(v T) {
	o.notified++
	for _, obs := range slices.Clone(o.observers) {
		obs.fn(v)
	}
}

func (o *Observable[T]) Len() int {
	return len(o.observers)
}

func (o *Observable[T]) Clear() {
	o.observers = nil
}

// Notified returns how many times Notify ran.
func (o *Observable[T]) Notified() uint64 {
	return o.notified
}
