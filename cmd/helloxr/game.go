package main

import (
	"context"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/plus3/helloxr/debugui"
	debugui_ebiten "github.com/plus3/helloxr/debugui/ebiten"
	"github.com/plus3/helloxr/internal/hello"
	"github.com/plus3/helloxr/scene"
	"github.com/plus3/helloxr/signal"
)

const mousePointer = 0

// Game adapts the scene to ebiten: input goes to the bridge, each Update ticks the
// scheduler inside an ImGui frame.
type Game struct {
	ctx    context.Context
	scene  *hello.Scene
	imgui  *debugui_ebiten.ImguiBackend
	input  *scene.Singleton[debugui.ImguiInputState]
	view   view
	dt     float64
	logger *slog.Logger

	keys []ebiten.Key
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.forwardInput()
	g.imgui.Frame(func() { g.scene.Scheduler.Once(g.dt) })
	return nil
}

func (g *Game) forwardInput() {
	state := g.input.Get()
	bridge := g.scene.Bridge

	if state == nil || !state.WantCaptureMouse {
		x, y := ebiten.CursorPosition()
		ev := signal.PointerEvent{PointerID: mousePointer, Ray: g.view.ray(float32(x), float32(y))}
		switch {
		case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
			bridge.PointerDown(ev)
		case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
			bridge.PointerUp(ev)
		case bridge.Dragging(mousePointer):
			bridge.PointerMove(ev)
		}
	}

	if state != nil && state.WantCaptureKeyboard {
		return
	}
	mods := modifiers{
		ctrl:  ebiten.IsKeyPressed(ebiten.KeyControl),
		alt:   ebiten.IsKeyPressed(ebiten.KeyAlt),
		shift: ebiten.IsKeyPressed(ebiten.KeyShift),
		meta:  ebiten.IsKeyPressed(ebiten.KeyMeta),
	}
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if ev, ok := keyEvent(k, mods); ok {
			bridge.KeyDown(ev)
		}
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		if ev, ok := keyEvent(k, mods); ok {
			bridge.KeyUp(ev)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.view.draw(screen, g.scene.Scheduler.Storage())
	g.imgui.Overlay(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imgui.Layout(outsideWidth, outsideHeight)
	g.view.resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
