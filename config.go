package evergreen

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a scene. Start from DefaultConfig and
// override what you need, or load a YAML file with LoadConfig.
type Config struct {
	// Seed seeds layout generation and lottery draws. Zero picks a random seed.
	Seed     uint64 `yaml:"seed"`
	LogLevel string `yaml:"log_level"`
	// Debug enables per-frame stats logging and tree sanity warnings.
	Debug bool `yaml:"debug"`

	Tree      TreeConfig     `yaml:"tree"`
	Foliage   FoliageConfig  `yaml:"foliage"`
	Ornaments OrnamentConfig `yaml:"ornaments"`
	Photos    PhotoConfig    `yaml:"photos"`
	Lights    LightConfig    `yaml:"lights"`
	Star      StarConfig     `yaml:"star"`
	Lottery   LotteryConfig  `yaml:"lottery"`
	Gesture   GestureConfig  `yaml:"gesture"`
	Camera    CameraConfig   `yaml:"camera"`
}

// TreeConfig is the shared cone geometry and the spin of the tree group.
type TreeConfig struct {
	Height float64 `yaml:"height"`
	Radius float64 `yaml:"radius"`
	// Apex is the y coordinate of the cone tip used by the ornament spiral.
	Apex float64 `yaml:"apex"`
	// IdleSpin and RunningSpin are yaw rates in rad/s.
	IdleSpin    float64 `yaml:"idle_spin"`
	RunningSpin float64 `yaml:"running_spin"`
}

type FoliageConfig struct {
	Count       int     `yaml:"count"`
	PointScale  float64 `yaml:"point_scale"`
	BlendRate   float64 `yaml:"blend_rate"`
	BottomColor string  `yaml:"bottom_color"`
	TopColor    string  `yaml:"top_color"`
}

type OrnamentConfig struct {
	Count            int      `yaml:"count"`
	Scale            float64  `yaml:"scale"`
	ChaosRadius      float64  `yaml:"chaos_radius"`
	ChaosScaleFactor float64  `yaml:"chaos_scale_factor"`
	BlendRate        float64  `yaml:"blend_rate"`
	Colors           []string `yaml:"colors"`
}

type PhotoConfig struct {
	Count            int     `yaml:"count"`
	Scale            float64 `yaml:"scale"`
	ChaosRadius      float64 `yaml:"chaos_radius"`
	ChaosScaleFactor float64 `yaml:"chaos_scale_factor"`
	BlendRate        float64 `yaml:"blend_rate"`
	// FocalPoint is the world position a showcased winner flies to.
	FocalPoint    Vec3    `yaml:"focal_point"`
	ShowcaseScale float64 `yaml:"showcase_scale"`
	// Per-frame (60 Hz) approach factors.
	FollowLerp       float64  `yaml:"follow_lerp"`
	TurnLerp         float64  `yaml:"turn_lerp"`
	ShowcaseTurnLerp float64  `yaml:"showcase_turn_lerp"`
	FlipLerp         float64  `yaml:"flip_lerp"`
	UnflipLerp       float64  `yaml:"unflip_lerp"`
	HighlightColor   string   `yaml:"highlight_color"`
	Portraits        []string `yaml:"portraits"`
}

type LightConfig struct {
	Count           int           `yaml:"count"`
	Height          float64       `yaml:"height"`
	Radius          float64       `yaml:"radius"`
	Turns           float64       `yaml:"turns"`
	BulbScale       float64       `yaml:"bulb_scale"`
	BlendRate       float64       `yaml:"blend_rate"`
	Color           string        `yaml:"color"`
	ShowcaseOpacity float64       `yaml:"showcase_opacity"`
	FadeDuration    time.Duration `yaml:"fade_duration"`
}

type StarConfig struct {
	OuterRadius      float64       `yaml:"outer_radius"`
	InnerRadius      float64       `yaml:"inner_radius"`
	Points           int           `yaml:"points"`
	Depth            float64       `yaml:"depth"`
	ChaosY           float64       `yaml:"chaos_y"`
	FormedY          float64       `yaml:"formed_y"`
	SpinRate         float64       `yaml:"spin_rate"`
	BlendRate        float64       `yaml:"blend_rate"`
	Color            string        `yaml:"color"`
	Emissive         float64       `yaml:"emissive"`
	ShowcaseEmissive float64       `yaml:"showcase_emissive"`
	Light            float64       `yaml:"light"`
	ShowcaseLight    float64       `yaml:"showcase_light"`
	FadeDuration     time.Duration `yaml:"fade_duration"`
}

type LotteryConfig struct {
	ShuffleInterval time.Duration `yaml:"shuffle_interval"`
	Prizes          []string      `yaml:"prizes"`
}

type GestureConfig struct {
	Enabled      bool          `yaml:"enabled"`
	FlipDebounce time.Duration `yaml:"flip_debounce"`
	// CursorSmoothing is the exponential rate (1/s) of the smoothed cursor.
	CursorSmoothing float64 `yaml:"cursor_smoothing"`
	// CursorScaleX widens the horizontal cursor range on input.
	CursorScaleX float64 `yaml:"cursor_scale_x"`
	// FeedAddr is the listen address of the remote classifier feed; empty disables it.
	FeedAddr string `yaml:"feed_addr"`
}

type CameraConfig struct {
	FOV              float64 `yaml:"fov"`
	Distance         float64 `yaml:"distance"`
	ShowcaseDistance float64 `yaml:"showcase_distance"`
	// FollowLerp is the per-frame (60 Hz) factor the camera chases its goal with.
	FollowLerp float64 `yaml:"follow_lerp"`
	SwayX      float64 `yaml:"sway_x"`
	SwayY      float64 `yaml:"sway_y"`
	Lift       float64 `yaml:"lift"`
}

// DefaultConfig returns the stock scene: 42 photo cards, 60 baubles, 300
// spiral lights and a five-point star over a 18-unit tree.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Tree: TreeConfig{
			Height:      18,
			Radius:      7.5,
			Apex:        9,
			IdleSpin:    0.3,
			RunningSpin: 15,
		},
		Foliage: FoliageConfig{
			Count:       6000,
			PointScale:  0.08,
			BlendRate:   2.0,
			BottomColor: "#011c12",
			TopColor:    "#1c6a3c",
		},
		Ornaments: OrnamentConfig{
			Count:            60,
			Scale:            0.5,
			ChaosRadius:      25,
			ChaosScaleFactor: 1.2,
			BlendRate:        2.0,
			Colors:           []string{"#D32F2F", "#1B5E20", "#D4AF37", "#C0C0C0"},
		},
		Photos: PhotoConfig{
			Count:            42,
			Scale:            0.8,
			ChaosRadius:      25,
			ChaosScaleFactor: 4,
			BlendRate:        2.5,
			FocalPoint:       Vec3{0, 0, 15},
			ShowcaseScale:    12.5,
			FollowLerp:       0.15,
			TurnLerp:         0.1,
			ShowcaseTurnLerp: 0.15,
			FlipLerp:         0.12,
			UnflipLerp:       0.1,
			HighlightColor:   "#ffcc00",
		},
		Lights: LightConfig{
			Count:           300,
			Height:          19,
			Radius:          7.5,
			Turns:           9,
			BulbScale:       0.15,
			BlendRate:       2.0,
			Color:           "#fffae0",
			ShowcaseOpacity: 0.4,
			FadeDuration:    400 * time.Millisecond,
		},
		Star: StarConfig{
			OuterRadius:      1.2,
			InnerRadius:      0.6,
			Points:           5,
			Depth:            0.4,
			ChaosY:           13.0,
			FormedY:          9.2,
			SpinRate:         0.5,
			BlendRate:        2.0,
			Color:            "#FFD700",
			Emissive:         2.0,
			ShowcaseEmissive: 0.3,
			Light:            3.0,
			ShowcaseLight:    0.5,
			FadeDuration:     400 * time.Millisecond,
		},
		Lottery: LotteryConfig{
			ShuffleInterval: 70 * time.Millisecond,
		},
		Gesture: GestureConfig{
			Enabled:         true,
			FlipDebounce:    800 * time.Millisecond,
			CursorSmoothing: 4.0,
			CursorScaleX:    1.5,
		},
		Camera: CameraConfig{
			FOV:              45,
			Distance:         38,
			ShowcaseDistance: 42,
			FollowLerp:       0.1,
			SwayX:            5,
			SwayY:            3,
			Lift:             5,
		},
	}
}

// envOverrides lists the settings that can be overridden from the
// environment with the EVERGREEN_ prefix (e.g. EVERGREEN_SEED=7).
type envOverrides struct {
	Seed            uint64        `envconfig:"SEED"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	Debug           bool          `envconfig:"DEBUG"`
	PhotoCount      int           `envconfig:"PHOTO_COUNT"`
	ShuffleInterval time.Duration `envconfig:"SHUFFLE_INTERVAL"`
	GestureEnabled  bool          `envconfig:"GESTURE_ENABLED"`
	GestureAddr     string        `envconfig:"GESTURE_ADDR"`
	Portraits       []string      `envconfig:"PORTRAITS"`
	Prizes          []string      `envconfig:"PRIZES"`
}

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "EVERGREEN"

// LoadConfig reads a YAML config file over DefaultConfig and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from EVERGREEN_* environment variables. Unset
// variables leave the current values untouched.
func (c *Config) ApplyEnv() error {
	o := envOverrides{
		Seed:            c.Seed,
		LogLevel:        c.LogLevel,
		Debug:           c.Debug,
		PhotoCount:      c.Photos.Count,
		ShuffleInterval: c.Lottery.ShuffleInterval,
		GestureEnabled:  c.Gesture.Enabled,
		GestureAddr:     c.Gesture.FeedAddr,
		Portraits:       c.Photos.Portraits,
		Prizes:          c.Lottery.Prizes,
	}
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	c.Seed = o.Seed
	c.LogLevel = o.LogLevel
	c.Debug = o.Debug
	c.Photos.Count = o.PhotoCount
	c.Lottery.ShuffleInterval = o.ShuffleInterval
	c.Gesture.Enabled = o.GestureEnabled
	c.Gesture.FeedAddr = o.GestureAddr
	c.Photos.Portraits = o.Portraits
	c.Lottery.Prizes = o.Prizes
	return nil
}

// Validate checks counts, rates and colors. Shape dimensions are checked
// again by the layout generators.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Foliage.Count >= 0, "foliage.count %d is negative", c.Foliage.Count)
	check(c.Ornaments.Count >= 0, "ornaments.count %d is negative", c.Ornaments.Count)
	check(c.Photos.Count >= 0, "photos.count %d is negative", c.Photos.Count)
	check(c.Lights.Count >= 0, "lights.count %d is negative", c.Lights.Count)
	check(c.Star.Points >= 2, "star.points %d must be at least 2", c.Star.Points)
	check(c.Lottery.ShuffleInterval > 0, "lottery.shuffle_interval must be positive")
	check(c.Gesture.FlipDebounce >= 0, "gesture.flip_debounce is negative")
	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov %v out of range", c.Camera.FOV)
	for _, rate := range []float64{
		c.Foliage.BlendRate, c.Ornaments.BlendRate, c.Photos.BlendRate,
		c.Lights.BlendRate, c.Star.BlendRate,
	} {
		check(rate > 0, "blend rate %v must be positive", rate)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"photos.follow_lerp", c.Photos.FollowLerp},
		{"photos.turn_lerp", c.Photos.TurnLerp},
		{"photos.showcase_turn_lerp", c.Photos.ShowcaseTurnLerp},
		{"photos.flip_lerp", c.Photos.FlipLerp},
		{"photos.unflip_lerp", c.Photos.UnflipLerp},
		{"camera.follow_lerp", c.Camera.FollowLerp},
	} {
		check(f.v > 0 && f.v <= 1, "%s %v must be in (0, 1]", f.name, f.v)
	}
	check(c.Photos.ShowcaseScale > 0, "photos.showcase_scale %v must be positive", c.Photos.ShowcaseScale)

	colors := append([]string{
		c.Foliage.BottomColor, c.Foliage.TopColor, c.Photos.HighlightColor,
		c.Lights.Color, c.Star.Color,
	}, c.Ornaments.Colors...)
	for _, s := range colors {
		if _, err := ColorFromHex(s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// refs converts configured image strings, trimming blanks such as the
// trailing entry of "a.png,".
func refs(ss []string) []ImageRef {
	out := make([]ImageRef, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, ImageRef(s))
		}
	}
	return out
}
