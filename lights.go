package evergreen

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Pulse shape of the spiral lights.
const (
	lightPulseSpeed    = 3.0
	lightPulsePhase    = 0.1
	lightPulseAmp      = 0.05
	lightShowcaseScale = 0.8 // of the bulb scale
)

// SpiralLights is the helix garland. Positions follow the shared blend; the
// bulbs pulse in a travelling wave and hold still, dimmed, during a showcase.
type SpiralLights struct {
	*InstancedGroup
	bulb   float64
	dimmer *showcaseDimmer
}

// NewSpiralLights builds the garland from cfg.
func NewSpiralLights(rng *rand.Rand, cfg LightConfig) (*SpiralLights, error) {
	layout, err := HelixLayout(rng, cfg.Count, HelixShape{
		Height:    cfg.Height,
		Radius:    cfg.Radius,
		Turns:     cfg.Turns,
		BulbScale: cfg.BulbScale,
	})
	if err != nil {
		return nil, err
	}
	color, err := ColorFromHex(cfg.Color)
	if err != nil {
		return nil, fmt.Errorf("lights: %w", err)
	}
	g := NewInstancedGroup("spiral_lights", layout.Ornaments(func(int, Vec3) Color { return color }), cfg.BlendRate)
	g.Node.Material = Material{Color: color, Emissive: color, EmissiveIntensity: 1, Opacity: 1}

	l := &SpiralLights{InstancedGroup: g, bulb: cfg.BulbScale}
	l.dimmer = newShowcaseDimmer(cfg.FadeDuration,
		[]*float64{&g.Node.Material.Opacity},
		[]float64{1},
		[]float64{cfg.ShowcaseOpacity},
	)
	return l, nil
}

// Update steps the blend, the opacity fade and every bulb.
func (l *SpiralLights) Update(ctx *FrameContext) {
	t := l.Blend.Step(ctx.Dt)
	showcase := ctx.Showcase()
	l.dimmer.update(showcase, ctx.Dt)
	camLocal := l.cameraLocal(ctx)

	for i := range l.Ornaments {
		o := &l.Ornaments[i]
		inst := &l.Node.Instances[i]
		inst.Position = o.ChaosPosition.Lerp(o.TargetPosition, t)
		s := l.bulb * lightShowcaseScale
		if !showcase {
			s = math.Sin(ctx.Elapsed*lightPulseSpeed+float64(i)*lightPulsePhase)*lightPulseAmp + l.bulb
		}
		inst.Scale = Splat(s)
		inst.Rotation = orientInstance(inst.Position, camLocal, t)
		inst.Color = o.BaseColor
	}
}
