package evergreen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidShape is returned when a layout is asked for a shape with a
// non-positive dimension.
var ErrInvalidShape = errors.New("invalid layout shape")

// GoldenAngle is π(3-√5), the azimuth step of a golden-angle spiral.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Layout holds the two parallel spatial arrangements of an ornament class:
// where each instance sits in the dispersed cloud and where it sits on the
// formed tree. All four slices have the same length.
type Layout struct {
	Chaos       []Vec3
	Target      []Vec3
	ChaosScale  []Vec3
	TargetScale []Vec3
}

func newLayout(count int) Layout {
	return Layout{
		Chaos:       make([]Vec3, count),
		Target:      make([]Vec3, count),
		ChaosScale:  make([]Vec3, count),
		TargetScale: make([]Vec3, count),
	}
}

// Len returns the number of instances in the layout.
func (l Layout) Len() int {
	return len(l.Target)
}

// RandomOnSphere returns a point uniformly distributed on the surface of a
// sphere of radius r centered on the origin.
func RandomOnSphere(rng *rand.Rand, r float64) Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return Vec3{
		r * sinPhi * cosTheta,
		r * sinPhi * sinTheta,
		r * cosPhi,
	}
}

// ConePosition returns a point on the surface of a cone at the given
// progress (0 = base, 1 = apex) and random azimuth. The cone is centered
// vertically on the origin.
func ConePosition(rng *rand.Rand, height, radius, progress float64) Vec3 {
	y := (progress - 0.5) * height
	r := (1 - progress) * radius
	sin, cos := math.Sincos(rng.Float64() * 2 * math.Pi)
	return Vec3{r * cos, y, r * sin}
}

// foliageJitter is the per-axis offset added to each foliage point.
var foliageJitter = Range{Min: -0.5, Max: 0.5}

// ConeShape describes the foliage cone.
type ConeShape struct {
	Height float64
	Radius float64
	// PointScale is the uniform scale of every foliage point.
	PointScale float64
}

// FoliageLayout scatters count points over a cone, packed densest near the
// base. Chaos points lie on a sphere of radius 1.5*Height.
func FoliageLayout(rng *rand.Rand, count int, shape ConeShape) (Layout, error) {
	if shape.Height <= 0 || shape.Radius <= 0 || shape.PointScale <= 0 {
		return Layout{}, fmt.Errorf("foliage %+v: %w", shape, ErrInvalidShape)
	}
	l := newLayout(max(count, 0))
	chaosRadius := shape.Height * 1.5
	scale := Splat(shape.PointScale)
	for i := range l.Target {
		progress := 1 - math.Sqrt(rng.Float64())
		p := ConePosition(rng, shape.Height, shape.Radius, progress)
		// Jitter breaks the visible banding of the cone surface.
		p.X += foliageJitter.Random(rng)
		p.Z += foliageJitter.Random(rng)
		p.Y += foliageJitter.Random(rng)

		l.Target[i] = p
		l.Chaos[i] = RandomOnSphere(rng, chaosRadius)
		l.TargetScale[i] = scale
		l.ChaosScale[i] = scale
	}
	return l, nil
}

// SpiralConeShape describes a golden-angle arrangement on the tree cone,
// used for spherical ornaments and photo cards.
type SpiralConeShape struct {
	Height float64
	Radius float64
	// Apex is the y coordinate of the cone tip.
	Apex float64
	// Scale is the nominal instance scale; each instance varies by ±20%.
	Scale float64
	// ChaosRadius is the radius of the dispersed sphere.
	ChaosRadius float64
	// ChaosScaleFactor multiplies the target scale while dispersed.
	ChaosScaleFactor float64
}

// spiralEnvelope pushes the spiral just outside the foliage.
const spiralEnvelope = 1.15

// spiralScaleSpread is the per-instance scale multiplier of spiral ornaments.
var spiralScaleSpread = Range{Min: 0.8, Max: 1.2}

// ConeSpiralLayout places count instances on a golden-angle spiral over the
// cone surface. No two instances share an azimuth.
func ConeSpiralLayout(rng *rand.Rand, count int, shape SpiralConeShape) (Layout, error) {
	if shape.Height <= 0 || shape.Radius <= 0 || shape.Scale <= 0 ||
		shape.ChaosRadius <= 0 || shape.ChaosScaleFactor <= 0 {
		return Layout{}, fmt.Errorf("cone spiral %+v: %w", shape, ErrInvalidShape)
	}
	l := newLayout(max(count, 0))
	for i := range l.Target {
		progress := math.Sqrt(float64(i+1)/float64(count)) * 0.9
		r := progress * shape.Radius
		y := shape.Apex - progress*shape.Height
		sin, cos := math.Sincos(float64(i) * GoldenAngle)

		l.Target[i] = Vec3{r * cos, y, r * sin}.Scale(spiralEnvelope)
		l.Chaos[i] = RandomOnSphere(rng, shape.ChaosRadius)
		s := shape.Scale * spiralScaleSpread.Random(rng)
		l.TargetScale[i] = Splat(s)
		l.ChaosScale[i] = Splat(s * shape.ChaosScaleFactor)
	}
	return l, nil
}

// HelixShape describes the spiral light garland.
type HelixShape struct {
	Height float64
	Radius float64
	Turns  float64
	// BulbScale is the resting scale of each light.
	BulbScale float64
}

// helixTipRadius keeps the top of the helix from collapsing onto the axis.
const helixTipRadius = 0.5

// HelixLayout winds count points around the tree, narrowing toward the top.
// Chaos points lie on a sphere of radius 1.2*Height.
func HelixLayout(rng *rand.Rand, count int, shape HelixShape) (Layout, error) {
	if shape.Height <= 0 || shape.Radius <= 0 || shape.Turns <= 0 || shape.BulbScale <= 0 {
		return Layout{}, fmt.Errorf("helix %+v: %w", shape, ErrInvalidShape)
	}
	l := newLayout(max(count, 0))
	scale := Splat(shape.BulbScale)
	for i := range l.Target {
		t := float64(i) / float64(count)
		y := (t - 0.5) * shape.Height
		r := (1-t)*shape.Radius + helixTipRadius
		sin, cos := math.Sincos(t * 2 * math.Pi * shape.Turns)

		l.Target[i] = Vec3{r * cos, y, r * sin}
		l.Chaos[i] = RandomOnSphere(rng, shape.Height*1.2)
		l.TargetScale[i] = scale
		l.ChaosScale[i] = scale
	}
	return l, nil
}

// OrnamentInstance is one immutable generated element of an ornament class.
type OrnamentInstance struct {
	ID             int
	ChaosPosition  Vec3
	TargetPosition Vec3
	ChaosScale     Vec3
	TargetScale    Vec3
	BaseColor      Color
}

// Ornaments zips a layout into instances, coloring each with colorAt.
// A nil colorAt colors every instance white.
func (l Layout) Ornaments(colorAt func(i int, target Vec3) Color) []OrnamentInstance {
	out := make([]OrnamentInstance, l.Len())
	for i := range out {
		c := ColorWhite
		if colorAt != nil {
			c = colorAt(i, l.Target[i])
		}
		out[i] = OrnamentInstance{
			ID:             i,
			ChaosPosition:  l.Chaos[i],
			TargetPosition: l.Target[i],
			ChaosScale:     l.ChaosScale[i],
			TargetScale:    l.TargetScale[i],
			BaseColor:      c,
		}
	}
	return out
}
