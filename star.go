package evergreen

import (
	"fmt"
	"math"
)

// StarShape returns the outline of a star with the given number of points,
// alternating outer and inner radius vertices and pointing up (+Y).
func StarShape(outer, inner float64, points int) []Vec2 {
	if points < 2 {
		return nil
	}
	step := math.Pi / float64(points)
	out := make([]Vec2, 2*points)
	for i := range out {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		sin, cos := math.Sincos(float64(i)*step + math.Pi/2)
		out[i] = Vec2{cos * r, sin * r}
	}
	return out
}

// Topper star motion.
const (
	starSettleThreshold = 0.9
	starTiltAmount      = 0.5
	starTiltSettleRate  = 2.0
)

// TopperStar is the single star mesh above the tree. It rides down onto the
// apex as the tree forms, wobbles while dispersed and spins continuously.
type TopperStar struct {
	// Node carries position and tilt; Mesh is its spinning child.
	Node  *Node
	Mesh  *Node
	Blend BlendState

	chaosPos  Vec3
	targetPos Vec3
	spinRate  float64
	spin      float64
	tiltX     float64
	tiltZ     float64
	dimmer    *showcaseDimmer
}

// NewTopperStar builds the star mesh and its animator from cfg.
func NewTopperStar(cfg StarConfig) (*TopperStar, error) {
	if cfg.OuterRadius <= 0 || cfg.InnerRadius <= 0 || cfg.Depth <= 0 || cfg.Points < 2 {
		return nil, fmt.Errorf("star %+v: %w", cfg, ErrInvalidShape)
	}
	color, err := ColorFromHex(cfg.Color)
	if err != nil {
		return nil, fmt.Errorf("star: %w", err)
	}
	mesh := ExtrudeOutline(StarShape(cfg.OuterRadius, cfg.InnerRadius, cfg.Points), cfg.Depth)
	mesh.Center()

	s := &TopperStar{
		Node:      NewContainer("star"),
		Mesh:      NewMeshNode("star_mesh", mesh),
		Blend:     NewBlendState(cfg.BlendRate),
		chaosPos:  Vec3{0, cfg.ChaosY, 0},
		targetPos: Vec3{0, cfg.FormedY, 0},
		spinRate:  cfg.SpinRate,
	}
	s.Node.AddChild(s.Mesh)
	s.Node.SetPosition(s.targetPos)
	s.Mesh.Material = Material{Color: color, Emissive: color, Opacity: 1}
	s.dimmer = newShowcaseDimmer(cfg.FadeDuration,
		[]*float64{&s.Mesh.Material.EmissiveIntensity, &s.Mesh.Light},
		[]float64{cfg.Emissive, cfg.Light},
		[]float64{cfg.ShowcaseEmissive, cfg.ShowcaseLight},
	)
	return s, nil
}

// SetTarget sets the blend target.
func (s *TopperStar) SetTarget(t float64) {
	s.Blend.Target = clamp01(t)
}

// Update advances position, wobble, spin and glow.
func (s *TopperStar) Update(ctx *FrameContext) {
	t := s.Blend.Step(ctx.Dt)
	s.Node.Position = s.chaosPos.Lerp(s.targetPos, t)

	if t < starSettleThreshold {
		tilt := (1 - t) * starTiltAmount
		s.tiltZ = math.Sin(ctx.Elapsed) * tilt
		s.tiltX = math.Cos(ctx.Elapsed*0.8) * tilt
	} else {
		k := min(1, starTiltSettleRate*ctx.Dt)
		s.tiltZ = lerp(s.tiltZ, 0, k)
		s.tiltX = lerp(s.tiltX, 0, k)
	}
	s.Node.Rotation = QuatFromEuler(s.tiltX, 0, s.tiltZ)
	s.Node.MarkDirty()

	s.spin = math.Mod(s.spin+ctx.Dt*s.spinRate, 2*math.Pi)
	s.Mesh.SetRotation(QuatFromAxisAngle(WorldUp, s.spin))

	s.dimmer.update(ctx.Showcase(), ctx.Dt)
}
