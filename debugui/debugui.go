// Package debugui renders the scene inspector with Dear ImGui. Windows are drawn only while
// the scene's DebugLayer is visible; data is gathered into plain rows first so it can be
// inspected without an ImGui context.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/helloxr/behavior"
	"github.com/plus3/helloxr/scene"
	"github.com/plus3/helloxr/signal"
)

// ImguiItem is a component that holds a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks whether ImGui is consuming input, as a singleton.
// The host checks it before forwarding pointer and key events to the bridge.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

func RegisterComponents(registry *scene.ComponentRegistry) {
	scene.RegisterComponent[ImguiItem](registry)
}

// ImguiSystem updates ImguiInputState and defers every ImguiItem render to the end of the frame.
type ImguiSystem struct {
	Items      scene.Query[ImguiItem]
	InputState scene.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *scene.UpdateFrame) {
	if state := i.InputState.Get(); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}
	for _, item := range i.Items.Iter() {
		frame.Commands.Defer(item.Render)
	}
}

// Sources are the runtime objects the inspector reads. Registry and Bridge are optional.
type Sources struct {
	Scheduler *scene.Scheduler
	Registry  *behavior.Registry
	Bridge    *signal.Bridge
}

// Inspector holds the state of every inspector window between frames.
type Inspector struct {
	src        Sources
	Entities   *EntityBrowser
	Components *ComponentInspector
	Behaviors  *BehaviorViewer
	Signals    *SignalMonitor
	Perf       *PerformanceStats
}

func NewInspector(src Sources) *Inspector {
	return &Inspector{
		src:        src,
		Entities:   NewEntityBrowser(100),
		Components: &ComponentInspector{},
		Behaviors:  &BehaviorViewer{},
		Signals:    &SignalMonitor{},
		Perf:       NewPerformanceStats(120),
	}
}

// Render draws all windows. It must run inside an ImGui frame.
func (in *Inspector) Render(deltaTime float32) {
	storage := in.src.Scheduler.Storage()
	in.Entities.Render(storage)
	in.Components.Render(storage, in.Entities.Selected())
	if in.src.Registry != nil {
		in.Behaviors.Render(in.src.Registry, storage)
	}
	if in.src.Bridge != nil {
		in.Signals.Render(in.src.Bridge)
	}
	in.Perf.Render(in.src.Scheduler, deltaTime)
}

// InspectorSystem defers the inspector render while the debug layer is visible.
type InspectorSystem struct {
	Layer     scene.Singleton[scene.DebugLayer]
	Inspector *Inspector
}

func (s *InspectorSystem) Execute(frame *scene.UpdateFrame) {
	layer := s.Layer.Get()
	if layer == nil || !layer.Visible || s.Inspector == nil {
		return
	}
	s.Inspector.Perf.Record(float32(frame.DeltaTime))
	dt := float32(frame.DeltaTime)
	frame.Commands.Defer(func() { s.Inspector.Render(dt) })
}
