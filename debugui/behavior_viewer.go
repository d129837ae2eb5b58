package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
	"github.com/plus3/helloxr/signal"
)

// BindingRow is one binding as shown by the behavior viewer.
type BindingRow struct {
	Handle      behavior.BindingHandle
	Scope       string
	Recursive   bool
	Description string
	Links       int
	Stats       behavior.BindingStats
}

// BindingRows lists every binding, grouped by scope in manager creation order.
func BindingRows(registry *behavior.Registry, storage *scene.Storage) []BindingRow {
	var rows []BindingRow
	for _, scope := range registry.Scopes() {
		name := "scene"
		if scope.Valid() {
			name = storage.Name(scope)
		}
		recursive := false
		if m, ok := registry.Manager(scope); ok {
			recursive = m.Recursive()
		}
		for _, b := range registry.Bindings(scope) {
			rows = append(rows, BindingRow{
				Handle:      b.Handle,
				Scope:       name,
				Recursive:   recursive,
				Description: b.Describe(),
				Links:       len(b.Actions()),
				Stats:       b.Stats(),
			})
		}
	}
	return rows
}

type BehaviorViewer struct{}

func (bv *BehaviorViewer) Render(registry *behavior.Registry, storage *scene.Storage) {
	if !imgui.BeginV("Behaviors", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	stats := registry.Stats()
	imgui.Text(fmt.Sprintf("Managers: %d  Bindings: %d  Events: %d", stats.Managers, stats.Bindings, stats.Events))
	imgui.Text(fmt.Sprintf("Fired: %d  Skipped: %d  Completed: %d", stats.Fired, stats.Skipped, stats.Completed))
	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("BindingTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Scope")
		imgui.TableSetupColumn("Binding")
		imgui.TableSetupColumn("Links")
		imgui.TableSetupColumn("Fired")
		imgui.TableSetupColumn("Skipped")
		imgui.TableSetupColumn("Completed")
		imgui.TableHeadersRow()

		for _, row := range BindingRows(registry, storage) {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			scope := row.Scope
			if row.Recursive {
				scope += " (recursive)"
			}
			imgui.Text(scope)
			imgui.TableNextColumn()
			imgui.Text(row.Description)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Links))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Stats.Fired))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Stats.Skipped))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Stats.Completed))
		}
		imgui.EndTable()
	}
	imgui.End()
}

type SignalMonitor struct{}

func (sm *SignalMonitor) Render(bridge *signal.Bridge) {
	if !imgui.BeginV("Signals", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	signals := bridge.Signals()
	if len(signals) == 0 {
		imgui.Text("No signals")
	}
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if len(signals) > 0 && imgui.BeginTableV("SignalTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Signal")
		imgui.TableSetupColumn("Subscribers")
		imgui.TableSetupColumn("Samples")
		imgui.TableSetupColumn("Last")
		imgui.TableHeadersRow()
		for _, s := range signals {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(s.Name)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.Subscribers))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", s.Samples))
			imgui.TableNextColumn()
			imgui.Text(s.Last)
		}
		imgui.EndTable()
	}
	imgui.End()
}
