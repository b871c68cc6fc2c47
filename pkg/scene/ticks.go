package scene

// Tick is an axis tick: a canvas position and the source-unit value shown
// at it.
type Tick struct {
	Pixel float64
	Value float64
}

// TicksX returns n evenly spaced ticks across the canvas width, labeled
// with the source x coordinate under each tick.
func (s Scene) TicksX(n int) []Tick {
	return ticks(n, s.Map.Canvas, func(px float64) float64 {
		return s.Map.Invert(px, 0).X
	})
}

// TicksY is TicksX for the vertical axis.
func (s Scene) TicksY(n int) []Tick {
	return ticks(n, s.Map.Canvas, func(px float64) float64 {
		return s.Map.Invert(0, px).Y
	})
}

func ticks(n int, canvas float64, value func(float64) float64) []Tick {
	if n < 2 {
		return nil
	}
	out := make([]Tick, n)
	step := canvas / float64(n-1)
	for i := range out {
		px := float64(i) * step
		out[i] = Tick{Pixel: px, Value: value(px)}
	}
	return out
}
