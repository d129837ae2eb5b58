package scene

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/kamstrup/intmap"
)

// stepEpsilon absorbs float drift when fixed steps sum to a duration.
const stepEpsilon = 1e-9

// TweenHandle identifies a running tween or keyframe animation.
type TweenHandle uint64

// Keyframe is one key of a keyframe animation, Time measured from the animation start.
type Keyframe struct {
	Time  time.Duration
	Value any
}

type tween struct {
	prop     Property
	from     any
	to       any
	duration float64
	elapsed  float64
	keys     []Keyframe
	loop     bool
	onDone   func()
}

// Animator steps property tweens on the scene clock. A tween whose entity was disposed
// is dropped on its next step and its completion callback never runs.
type Animator struct {
	tweens *intmap.Map[TweenHandle, *tween]
	order  []TweenHandle
	next   TweenHandle
	logger *slog.Logger
	// owed is the overshoot of the tween whose completion callback is running.
	// Tweens started from that callback begin that far in.
	owed float64
}

func NewAnimator(logger *slog.Logger) *Animator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		tweens: intmap.New[TweenHandle, *tween](64),
		logger: logger,
	}
}

// Animate tweens prop from its current value to to over duration, then calls onDone.
// A non-positive duration writes the end value and completes immediately.
// Called from another tween's completion callback, the new tween starts at the
// predecessor's scheduled end rather than at the next step.
func (a *Animator) Animate(prop Property, to any, duration time.Duration, onDone func()) (TweenHandle, error) {
	from, err := prop.Get()
	if err != nil {
		return 0, err
	}
	to, err = prop.Coerce(to)
	if err != nil {
		return 0, err
	}
	if _, err := Interpolate(from, to, 0); err != nil {
		return 0, err
	}

	if duration <= 0 {
		if err := prop.Set(to); err != nil {
			return 0, err
		}
		if onDone != nil {
			onDone()
		}
		return 0, nil
	}

	t := &tween{prop: prop, from: from, to: to, duration: duration.Seconds(), onDone: onDone}
	if owed := a.owed; owed > 0 {
		finished, err := t.advance(owed)
		if err != nil {
			return 0, err
		}
		if finished {
			a.complete(t)
			return 0, nil
		}
	}
	return a.add(t), nil
}

// complete runs t's completion callback with t's overshoot owed to what it starts.
func (a *Animator) complete(t *tween) {
	if t.onDone == nil {
		return
	}
	prev := a.owed
	a.owed = max(0, t.elapsed-t.duration)
	defer func() { a.owed = prev }()
	t.onDone()
}

// Play runs a keyframe animation over prop. Keys must be sorted by time; a looping animation
// wraps at its last key and never completes.
func (a *Animator) Play(prop Property, keys []Keyframe, loop bool) (TweenHandle, error) {
	if len(keys) < 2 {
		return 0, errors.New("keyframe animation needs at least two keys")
	}
	if !slices.IsSortedFunc(keys, func(x, y Keyframe) int { return cmp.Compare(x.Time, y.Time) }) {
		return 0, errors.New("keyframes must be sorted by time")
	}
	if !prop.Alive() {
		return 0, fmt.Errorf("%s: %w", prop, ErrDisposed)
	}
	coerced := make([]Keyframe, len(keys))
	for i, k := range keys {
		v, err := prop.Coerce(k.Value)
		if err != nil {
			return 0, err
		}
		coerced[i] = Keyframe{Time: k.Time, Value: v}
	}
	if err := prop.Set(coerced[0].Value); err != nil {
		return 0, err
	}

	last := coerced[len(coerced)-1].Time
	return a.add(&tween{prop: prop, keys: coerced, loop: loop, duration: last.Seconds()}), nil
}

func (a *Animator) add(t *tween) TweenHandle {
	a.next++
	a.tweens.Put(a.next, t)
	a.order = append(a.order, a.next)
	return a.next
}

// Stop removes a tween without running its completion callback.
func (a *Animator) Stop(h TweenHandle) bool {
	if !a.tweens.Del(h) {
		return false
	}
	a.order = slices.DeleteFunc(a.order, func(o TweenHandle) bool { return o == h })
	return true
}

// Running reports whether the tween is still in flight.
func (a *Animator) Running(h TweenHandle) bool {
	return a.tweens.Has(h)
}

// Active returns the number of tweens in flight.
func (a *Animator) Active() int {
	return a.tweens.Len()
}

// Reset drops every tween without completing any of them.
func (a *Animator) Reset() {
	a.tweens.Clear()
	a.order = a.order[:0]
}

// Step advances every tween by dt seconds in start order. Completion callbacks run after
// all tweens were stepped, in completion order.
func (a *Animator) Step(dt float64) {
	var done []*tween
	kept := a.order[:0]

	for _, h := range a.order {
		t, ok := a.tweens.Get(h)
		if !ok {
			continue
		}
		if !t.prop.Alive() {
			a.logger.Debug("dropping tween on disposed entity", "property", t.prop.Path, "entity", t.prop.Entity)
			a.tweens.Del(h)
			continue
		}

		finished, err := t.advance(dt)
		if err != nil {
			a.logger.Warn("tween step failed", "property", t.prop.String(), "err", err)
			a.tweens.Del(h)
			continue
		}
		if finished {
			a.tweens.Del(h)
			done = append(done, t)
			continue
		}
		kept = append(kept, h)
	}
	a.order = kept

	for _, t := range done {
		a.complete(t)
	}
}

// advance moves t forward by dt and writes the sampled value. It reports whether t
// reached its end.
func (t *tween) advance(dt float64) (bool, error) {
	t.elapsed += dt
	finished := !t.loop && t.elapsed >= t.duration-stepEpsilon

	var value any
	var err error
	switch {
	case t.keys != nil:
		value, err = t.sample(finished)
	case finished:
		value = t.to
	default:
		value, err = Interpolate(t.from, t.to, float32(t.elapsed/t.duration))
	}
	if err != nil {
		return false, err
	}
	return finished, t.prop.Set(value)
}

func (t *tween) sample(finished bool) (any, error) {
	if finished {
		return t.keys[len(t.keys)-1].Value, nil
	}
	at := t.elapsed
	if t.loop && t.duration > 0 {
		for at >= t.duration {
			at -= t.duration
		}
	}
	pos := time.Duration(at * float64(time.Second))
	for i := 1; i < len(t.keys); i++ {
		prev, next := t.keys[i-1], t.keys[i]
		if pos > next.Time {
			continue
		}
		span := next.Time - prev.Time
		if span <= 0 {
			return next.Value, nil
		}
		return Interpolate(prev.Value, next.Value, float32(pos-prev.Time)/float32(span))
	}
	return t.keys[len(t.keys)-1].Value, nil
}
