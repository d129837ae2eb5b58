package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/helloxr/scene"
)

// PerformanceStats keeps a ring of recent frame times in milliseconds.
type PerformanceStats struct {
	history []float32
	next    int
	filled  int
}

func NewPerformanceStats(frames int) *PerformanceStats {
	return &PerformanceStats{history: make([]float32, max(frames, 1))}
}

// Record adds a frame duration in seconds.
func (ps *PerformanceStats) Record(deltaTime float32) {
	ps.history[ps.next] = deltaTime * 1000
	ps.next = (ps.next + 1) % len(ps.history)
	ps.filled = min(ps.filled+1, len(ps.history))
}

// Average returns the mean frame time in milliseconds over the recorded frames.
func (ps *PerformanceStats) Average() float32 {
	if ps.filled == 0 {
		return 0
	}
	var sum float32
	for _, v := range ps.history[:ps.filled] {
		sum += v
	}
	return sum / float32(ps.filled)
}

func (ps *PerformanceStats) Render(sched *scene.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	storage := sched.Storage().CollectStats()
	stats := sched.GetStats()

	imgui.Text(fmt.Sprintf("Frame %d  (%.2fs scene time)", stats.Frame, stats.Elapsed))
	imgui.Text(fmt.Sprintf("Entities: %d  Singletons: %d  Tweens: %d", storage.EntityCount, storage.SingletonCount, stats.ActiveTweens))
	if avg := ps.Average(); avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	} else {
		imgui.Text(fmt.Sprintf("Frame Time: %.2f ms", deltaTime*1000))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.history[0], int32(len(ps.history)))

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Name")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()
			for _, s := range stats.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", s.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(s.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.MaxDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Components") {
		for _, c := range storage.Components {
			imgui.BulletText(fmt.Sprintf("%s: %d", c.Type, c.Count))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Kinds") {
		kinds := make([]scene.Kind, 0, len(storage.KindCounts))
		for k := range storage.KindCounts {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		for _, k := range kinds {
			imgui.BulletText(fmt.Sprintf("%s: %d", k, storage.KindCounts[k]))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, t := range storage.SingletonTypes {
			imgui.BulletText(t)
		}
		imgui.TreePop()
	}
}
