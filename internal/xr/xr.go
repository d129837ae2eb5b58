// Package xr negotiates an immersive session for the scene. The real device runtime
// lives outside this module; Emulator stands in for it on the desktop host.
package xr

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/plus3/helloxr/scene"
)

var (
	ErrSessionNotSupported = errors.New("session mode not supported")
	ErrUnknownSessionMode  = errors.New("unknown session mode")
)

type SessionMode string

const (
	ImmersiveVR SessionMode = "immersive-vr"
	ImmersiveAR SessionMode = "immersive-ar"
	Inline      SessionMode = "inline"
)

func ParseSessionMode(s string) (SessionMode, error) {
	switch m := SessionMode(s); m {
	case ImmersiveVR, ImmersiveAR, Inline:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSessionMode, s)
}

// UIOptions configures the enter/exit affordance shown by the runtime.
type UIOptions struct {
	SessionMode SessionMode
	// ReferenceSpace is the requested reference space type; empty means "local-floor".
	ReferenceSpace string
}

type SessionConfig struct {
	Mode      SessionMode
	UIOptions UIOptions
}

// Session is an entered XR session.
type Session struct {
	Mode           SessionMode
	ReferenceSpace string
	Started        time.Time

	mu    sync.Mutex
	ended bool
}

func (s *Session) End() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Runtime is a device XR runtime. Its methods may block and are called off the scene goroutine.
type Runtime interface {
	Supported(ctx context.Context, mode SessionMode) (bool, error)
	Enter(ctx context.Context, cfg SessionConfig) (*Session, error)
}

// Emulator is a Runtime that supports a fixed set of modes.
type Emulator struct {
	modes []SessionMode
	delay time.Duration
}

// NewEmulator returns an emulator for modes. Delay simulates the device handshake.
func NewEmulator(delay time.Duration, modes ...SessionMode) *Emulator {
	return &Emulator{modes: modes, delay: delay}
}

// EmulatorFromNames is NewEmulator for configuration strings.
func EmulatorFromNames(delay time.Duration, names []string) (*Emulator, error) {
	modes := make([]SessionMode, 0, len(names))
	for _, n := range names {
		m, err := ParseSessionMode(n)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return NewEmulator(delay, modes...), nil
}

func (e *Emulator) wait(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Emulator) Supported(ctx context.Context, mode SessionMode) (bool, error) {
	if err := e.wait(ctx); err != nil {
		return false, err
	}
	return slices.Contains(e.modes, mode), nil
}

func (e *Emulator) Enter(ctx context.Context, cfg SessionConfig) (*Session, error) {
	ok, err := e.Supported(ctx, cfg.Mode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotSupported, cfg.Mode)
	}
	space := cfg.UIOptions.ReferenceSpace
	if space == "" {
		space = "local-floor"
	}
	return &Session{Mode: cfg.Mode, ReferenceSpace: space, Started: time.Now()}, nil
}

// Bootstrap enters an XR session in the background. done runs on the scene goroutine at the
// start of a later frame, with ErrSessionNotSupported when the runtime lacks the mode. The
// scene keeps running either way.
func Bootstrap(sched *scene.Scheduler, ctx context.Context, rt Runtime, cfg SessionConfig, done func(*Session, error)) {
	if cfg.UIOptions.SessionMode == "" {
		cfg.UIOptions.SessionMode = cfg.Mode
	}
	scene.Await(sched, ctx, func(ctx context.Context) (*Session, error) {
		return rt.Enter(ctx, cfg)
	}, done)
}
