package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 1000, "The number of entities carrying an action manager.")
	bindingCount := flag.Int("bindings", 3, "The number of bindings registered on each entity.")
	eventCount := flag.Int("events", 50, "The number of trigger events fired per frame.")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for the random workload.")
	fixedStep := flag.Duration("step", 0, "Advance tweens by a fixed step per frame instead of wall time.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Println("Starting behavior stress test...")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	log.Printf("Populating scene with %d entities x %d bindings...\n", *entityCount, *bindingCount)
	w, err := newWorkload(*seed, *entityCount, *bindingCount, *eventCount, logger)
	if err != nil {
		log.Fatalf("Failed to build workload: %v", err)
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Bindings:       *bindingCount,
		Events:         *eventCount,
		Seed:           *seed,
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()
			if *fixedStep > 0 {
				deltaTime = *fixedStep
			}

			updateStart := time.Now()
			if err := w.frame(deltaTime.Seconds()); err != nil {
				log.Fatalf("Frame %d failed: %v", report.TotalUpdates, err)
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.PeakTweens = max(report.PeakTweens, w.sched.GetStats().ActiveTweens)
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.collect(w)
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
