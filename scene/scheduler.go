package scene

import (
	"context"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	Frame           uint64
	Elapsed         float64
	SystemCount     int
	HookCount       int
	TotalExecutions int64
	ActiveTweens    int
	// Systems holds systems first, then before-render hooks prefixed with "hook:".
	Systems []SystemStats
}

// SystemStats provides execution statistics for a single system or hook.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func newStatsInternal(name string) *systemStatsInternal {
	return &systemStatsInternal{name: name, minDuration: time.Duration(1<<63 - 1)}
}

func (st *systemStatsInternal) record(start time.Time) {
	duration := time.Since(start)
	st.executionCount++
	st.lastDuration = duration
	st.totalDuration += duration
	if duration < st.minDuration {
		st.minDuration = duration
	}
	if duration > st.maxDuration {
		st.maxDuration = duration
	}
}

func (st *systemStatsInternal) export() SystemStats {
	avg := time.Duration(0)
	minDuration := time.Duration(0)
	if st.executionCount > 0 {
		avg = st.totalDuration / time.Duration(st.executionCount)
		minDuration = st.minDuration
	}
	return SystemStats{
		Name:           st.name,
		ExecutionCount: st.executionCount,
		MinDuration:    minDuration,
		MaxDuration:    st.maxDuration,
		AvgDuration:    avg,
		LastDuration:   st.lastDuration,
		TotalDuration:  st.totalDuration,
	}
}

// HookHandle identifies a before-render hook.
type HookHandle uint64

type hook struct {
	handle HookHandle
	fn     func(*UpdateFrame)
	stats  *systemStatsInternal
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used by the scheduler and its animator.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler drives a scene one frame at a time. Each Once runs, in order: async completions
// queued since the last frame, the animator, systems, before-render hooks, then the frame's
// Commands. All scene state is owned by the goroutine calling Once.
type Scheduler struct {
	storage     *Storage
	systems     []System
	systemStats []*systemStatsInternal
	hooks       []hook
	nextHook    HookHandle
	animator    *Animator
	commands    *Commands
	logger      *slog.Logger

	frame    uint64
	elapsed  float64
	disposed bool

	mu       sync.Mutex
	pending  []func()
	inflight sync.WaitGroup
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage, opts ...Option) *Scheduler {
	s := &Scheduler{
		storage:  storage,
		systems:  make([]System, 0),
		commands: newCommands(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.animator = NewAnimator(s.logger)
	return s
}

func (s *Scheduler) Storage() *Storage {
	return s.storage
}

func (s *Scheduler) Animator() *Animator {
	return s.animator
}

func (s *Scheduler) Logger() *slog.Logger {
	return s.logger
}

// Commands returns the buffer flushed at the end of the current frame.
func (s *Scheduler) Commands() *Commands {
	return s.commands
}

// Frame returns the number of completed frames.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// Elapsed returns the simulated scene time in seconds.
func (s *Scheduler) Elapsed() float64 {
	return s.elapsed
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	s.initializeFields(system)
	s.systems = append(s.systems, system)

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	s.systemStats = append(s.systemStats, newStatsInternal(systemType.Name()))
}

func (s *Scheduler) initializeFields(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		if !strings.HasPrefix(typeName, "Query[") && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + fieldType.Name)
		}
		initMethod.Call([]reflect.Value{reflect.ValueOf(s.storage)})
	}
}

// BeforeRender registers fn to run every frame after systems and before commands flush.
// Hooks run in registration order.
func (s *Scheduler) BeforeRender(name string, fn func(*UpdateFrame)) HookHandle {
	s.nextHook++
	s.hooks = append(s.hooks, hook{handle: s.nextHook, fn: fn, stats: newStatsInternal("hook:" + name)})
	return s.nextHook
}

// RemoveHook unregisters a before-render hook.
func (s *Scheduler) RemoveHook(h HookHandle) bool {
	n := len(s.hooks)
	s.hooks = slices.DeleteFunc(s.hooks, func(k hook) bool { return k.handle == h })
	return len(s.hooks) != n
}

// Once advances the scene by dt seconds.
func (s *Scheduler) Once(dt float64) {
	if s.disposed {
		return
	}
	s.frame++
	s.elapsed += dt
	frame := newUpdateFrame(s.frame, dt, s.elapsed, s.storage, s.commands)

	for _, fn := range s.takePending() {
		if s.disposed {
			return
		}
		fn()
	}

	s.animator.Step(dt)

	for i, system := range s.systems {
		start := time.Now()
		system.Execute(frame)
		s.systemStats[i].record(start)
	}

	for _, h := range slices.Clone(s.hooks) {
		start := time.Now()
		h.fn(frame)
		h.stats.record(start)
	}

	s.commands.Flush(s.storage)
}

// Run executes Once repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// enqueue may be called from any goroutine.
func (s *Scheduler) enqueue(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

func (s *Scheduler) takePending() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}

// Wait blocks until all in-flight async work has queued its completion.
// The completions themselves still run on the next Once.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// Dispose stops the scene: hooks and tweens are dropped, queued completions are discarded,
// every entity is disposed and further calls to Once do nothing.
func (s *Scheduler) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.hooks = nil
	s.animator.Reset()
	s.takePending()
	s.storage.DisposeAll()
}

func (s *Scheduler) Disposed() bool {
	return s.disposed
}

// GetStats returns statistics about system and hook execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		Frame:        s.frame,
		Elapsed:      s.elapsed,
		SystemCount:  len(s.systems),
		HookCount:    len(s.hooks),
		ActiveTweens: s.animator.Active(),
		Systems:      make([]SystemStats, 0, len(s.systemStats)+len(s.hooks)),
	}

	for _, internal := range s.systemStats {
		stats.Systems = append(stats.Systems, internal.export())
		stats.TotalExecutions += internal.executionCount
	}
	for _, h := range s.hooks {
		stats.Systems = append(stats.Systems, h.stats.export())
		stats.TotalExecutions += h.stats.executionCount
	}
	return stats
}
