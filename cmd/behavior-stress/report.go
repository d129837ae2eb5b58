package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/helloxr/behavior"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Entities int
	Bindings int
	Events   int
	Seed     uint64

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	Registry       behavior.Stats
	PeakTweens     int
	Spawned        int
	Disposed       int
	KeyHits        int
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]
	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))

	sorted := append([]time.Duration(nil), s.Samples...)
	slices.Sort(sorted)
	s.P99 = sorted[(len(sorted)-1)*99/100]
}

const reportTemplate = `
# Behavior Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Entities:** {{.Entities}}
- **Bindings per Entity:** {{.Bindings}}
- **Events per Frame:** {{.Events}}
- **Seed:** {{.Seed}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **P99:** {{.UpdateTime.P99}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Behaviors
- **Managers:** {{.Registry.Managers}}
- **Bindings:** {{.Registry.Bindings}}
- **Events:** {{.Registry.Events}}
- **Fired:** {{.Registry.Fired}}
- **Skipped (condition false):** {{.Registry.Skipped}}
- **Chains Completed:** {{.Registry.Completed}}
- **Scene Key Hits:** {{.KeyHits}}
- **Peak Active Tweens:** {{.PeakTweens}}
- **Entities Spawned / Disposed:** {{.Spawned}} / {{.Disposed}}

## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}} bytes
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} MB (start) -> {{mb .MemStatsEnd.TotalAlloc}} MB (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{ns .MemStatsEnd.PauseTotalNs}}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v uint64) string {
		return fmt.Sprintf("%.2f", float64(v)/1024/1024)
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}

func (r *Report) collect(w *workload) {
	r.Registry = w.registry.Stats()
	r.Spawned = w.spawned
	r.Disposed = w.disposed
	r.KeyHits = w.keyHits
}
