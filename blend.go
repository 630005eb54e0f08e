package evergreen

// BlendState is a smoothed blend factor that approaches an externally set
// target. Current starts at BlendFormed so a new scene opens assembled.
type BlendState struct {
	Current float64
	Target  float64
	// Rate is the exponential approach rate in 1/seconds.
	Rate float64
}

// NewBlendState returns a formed BlendState smoothing at rate.
func NewBlendState(rate float64) BlendState {
	return BlendState{Current: BlendFormed, Target: BlendFormed, Rate: rate}
}

// Step advances Current toward Target by dt seconds. The step never
// overshoots: the approach factor is clamped to 1.
func (b *BlendState) Step(dt float64) float64 {
	if dt <= 0 || b.Rate <= 0 {
		return b.Current
	}
	k := min(1, b.Rate*dt)
	b.Current += (b.Target - b.Current) * k
	return b.Current
}

// clamp01 clamps v into [0, 1].
func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
