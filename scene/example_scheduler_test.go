package scene_test

import (
	"fmt"
	"time"

	"github.com/plus3/helloxr/scene"
)

// ExampleScheduler fades a light to black and back on the simulated scene clock.
// Each tween starts when the previous one completes.
func ExampleScheduler() {
	storage := scene.NewStorage(scene.NewDefaultRegistry())
	sched := scene.NewScheduler(storage)

	light := storage.Spawn("default light", scene.KindLight, scene.Light{Diffuse: scene.White(), Intensity: 0.7})
	diffuse, _ := scene.ResolveProperty(storage, light, "diffuse")

	sched.Animator().Animate(diffuse, scene.Black(), time.Second, func() {
		sched.Animator().Animate(diffuse, scene.White(), time.Second, nil)
	})

	for frame := 1; frame <= 8; frame++ {
		sched.Once(0.25)
		if frame%2 == 0 {
			fmt.Printf("t=%.1fs %s\n", sched.Elapsed(), scene.ReadComponent[scene.Light](storage, light).Diffuse)
		}
	}
	// Output:
	// t=0.5s #808080
	// t=1.0s #000000
	// t=1.5s #808080
	// t=2.0s #ffffff
}
