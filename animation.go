package evergreen

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields simultaneously. Call Update(dt)
// each frame; values are written straight into the target fields.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenFields creates a TweenGroup moving each field to the matching value
// in to. At most 4 fields are animated; extra fields are ignored.
func TweenFields(fields []*float64, to []float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	for i := 0; i < len(fields) && i < len(to) && i < len(g.tweens); i++ {
		g.tweens[i] = gween.New(float32(*fields[i]), float32(to[i]), duration, fn)
		g.fields[i] = fields[i]
		g.count++
	}
	return g
}

// TweenEmissive creates a TweenGroup that animates a material's emissive
// intensity.
func TweenEmissive(m *Material, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return TweenFields([]*float64{&m.EmissiveIntensity}, []float64{to}, duration, fn)
}

// TweenOpacity creates a TweenGroup that animates a material's opacity.
func TweenOpacity(m *Material, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return TweenFields([]*float64{&m.Opacity}, []float64{to}, duration, fn)
}

// showcaseDimmer fades a set of fields between their normal values and their
// showcase values whenever the showcase flag flips.
type showcaseDimmer struct {
	fields   []*float64
	normal   []float64
	dimmed   []float64
	duration float32
	showcase bool
	tween    *TweenGroup
}

func newShowcaseDimmer(duration time.Duration, fields []*float64, normal, dimmed []float64) *showcaseDimmer {
	for i, f := range fields {
		*f = normal[i]
	}
	return &showcaseDimmer{
		fields:   fields,
		normal:   normal,
		dimmed:   dimmed,
		duration: float32(duration.Seconds()),
	}
}

// update retargets on a showcase change and advances the active fade.
func (d *showcaseDimmer) update(showcase bool, dt float64) {
	if showcase != d.showcase {
		d.showcase = showcase
		to := d.normal
		if showcase {
			to = d.dimmed
		}
		if d.duration <= 0 {
			for i, f := range d.fields {
				*f = to[i]
			}
			d.tween = nil
			return
		}
		d.tween = TweenFields(d.fields, to, d.duration, ease.InOutSine)
	}
	if d.tween != nil {
		d.tween.Update(float32(dt))
		if d.tween.Done {
			d.tween = nil
		}
	}
}
