package scene

// System is per-frame logic. Systems may carry Query and Singleton fields, which the
// Scheduler initializes on registration, and any state that persists between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to a System.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
