package evergreen

import (
	"fmt"
	"math/rand/v2"
)

// NewFoliage builds the foliage point cloud, shaded from the bottom color at
// the base of the cone to the top color at the apex.
func NewFoliage(rng *rand.Rand, tree TreeConfig, cfg FoliageConfig) (*InstancedGroup, error) {
	layout, err := FoliageLayout(rng, cfg.Count, ConeShape{
		Height:     tree.Height,
		Radius:     tree.Radius,
		PointScale: cfg.PointScale,
	})
	if err != nil {
		return nil, err
	}
	bottom, err := ColorFromHex(cfg.BottomColor)
	if err != nil {
		return nil, fmt.Errorf("foliage: %w", err)
	}
	top, err := ColorFromHex(cfg.TopColor)
	if err != nil {
		return nil, fmt.Errorf("foliage: %w", err)
	}
	ornaments := layout.Ornaments(func(_ int, p Vec3) Color {
		return BlendLab(bottom, top, clamp01(p.Y/tree.Height+0.5))
	})
	return NewInstancedGroup("foliage", ornaments, cfg.BlendRate), nil
}

// NewBaubles builds the spherical ornaments, each painted with a random
// color from the palette.
func NewBaubles(rng *rand.Rand, tree TreeConfig, cfg OrnamentConfig) (*InstancedGroup, error) {
	layout, err := ConeSpiralLayout(rng, cfg.Count, SpiralConeShape{
		Height:           tree.Height,
		Radius:           tree.Radius,
		Apex:             tree.Apex,
		Scale:            cfg.Scale,
		ChaosRadius:      cfg.ChaosRadius,
		ChaosScaleFactor: cfg.ChaosScaleFactor,
	})
	if err != nil {
		return nil, err
	}
	palette := make([]Color, 0, len(cfg.Colors))
	for _, s := range cfg.Colors {
		c, err := ColorFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("ornaments: %w", err)
		}
		palette = append(palette, c)
	}
	ornaments := layout.Ornaments(func(int, Vec3) Color {
		if len(palette) == 0 {
			return ColorWhite
		}
		return palette[rng.IntN(len(palette))]
	})
	return NewInstancedGroup("ornaments", ornaments, cfg.BlendRate), nil
}
