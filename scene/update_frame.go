package scene

// UpdateFrame is handed to systems and before-render hooks once per tick.
type UpdateFrame struct {
	Number    uint64
	DeltaTime float64
	// Elapsed is the simulated scene time in seconds, including this frame.
	Elapsed  float64
	Commands *Commands
	Storage  *Storage
}

func newUpdateFrame(number uint64, dt, elapsed float64, storage *Storage, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		Number:    number,
		DeltaTime: dt,
		Elapsed:   elapsed,
		Commands:  commands,
		Storage:   storage,
	}
}
