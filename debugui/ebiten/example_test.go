package ebiten_test

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/helloxr/debugui"
	debugui_ebiten "github.com/plus3/helloxr/debugui/ebiten"
	"github.com/plus3/helloxr/scene"
)

// Game drives the scene inside an ImGui frame and draws the inspector on top.
type Game struct {
	scheduler *scene.Scheduler
	imgui     *debugui_ebiten.ImguiBackend
}

func (g *Game) Update() error {
	g.imgui.Frame(func() { g.scheduler.Once(1.0 / 60.0) })
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.imgui.Overlay(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imgui.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func Example() {
	backend := debugui_ebiten.NewImguiBackend("scene inspector", 1280, 720)

	storage := scene.NewStorage(scene.NewDefaultRegistry())
	scene.NewSingleton(storage, scene.DebugLayer{Visible: true})
	storage.Spawn("box", scene.KindMesh, scene.Box(1))

	scheduler := scene.NewScheduler(storage)
	scheduler.Register(&debugui.InspectorSystem{
		Inspector: debugui.NewInspector(debugui.Sources{Scheduler: scheduler}),
	})

	if err := ebiten.RunGame(&Game{scheduler: scheduler, imgui: backend}); err != nil {
		panic(err)
	}
}
