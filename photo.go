package evergreen

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Frame glow of photo cards.
const (
	frameEmissive          = 0.2
	frameHighlightEmissive = 8.0
)

// PhotoCard is one photo ornament: an outer node that flies between layout
// and showcase poses, and an inner card node that turns over independently.
type PhotoCard struct {
	Node     *Node
	Inner    *Node
	Ornament OrnamentInstance
	Blend    BlendState

	flip float64

	portraitWant  ImageRef
	prizeWant     ImageRef
	portraitBound ImageRef
	prizeBound    ImageRef
	bound         bool
}

// Index returns the card's stable index.
func (c *PhotoCard) Index() int {
	return c.Ornament.ID
}

// FlipAngle returns the inner card's current yaw in radians (0 = portrait
// toward the viewer, π = prize side).
func (c *PhotoCard) FlipAngle() float64 {
	return c.flip
}

// PhotoCards animates the photo card ornaments and presents the lottery
// winner.
type PhotoCards struct {
	Node  *Node
	Cards []*PhotoCard

	cfg       PhotoConfig
	highlight Color
	portraits []ImageRef
}

// NewPhotoCards lays out cfg.Count cards on the tree spiral.
func NewPhotoCards(rng *rand.Rand, tree TreeConfig, cfg PhotoConfig) (*PhotoCards, error) {
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
	highlight, err := ColorFromHex(cfg.HighlightColor)
	if err != nil {
		return nil, fmt.Errorf("photos: %w", err)
	}

	p := &PhotoCards{
		Node:      NewContainer("photos"),
		cfg:       cfg,
		highlight: highlight,
	}
	for _, o := range layout.Ornaments(nil) {
		c := &PhotoCard{
			Node:     NewContainer(fmt.Sprintf("photo_%d", o.ID)),
			Inner:    NewCard(fmt.Sprintf("photo_%d_card", o.ID)),
			Ornament: o,
			Blend:    NewBlendState(cfg.BlendRate),
		}
		c.Node.Position = o.TargetPosition
		c.Node.Scale = o.TargetScale
		c.Node.Rotation = radialFacing(o.TargetPosition)
		c.Node.AddChild(c.Inner)
		p.Node.AddChild(c.Node)
		p.Cards = append(p.Cards, c)
	}
	p.SetPortraits(refs(cfg.Portraits))
	return p, nil
}

// Len returns the number of cards.
func (p *PhotoCards) Len() int {
	return len(p.Cards)
}

// SetTarget sets every card's blend target.
func (p *PhotoCards) SetTarget(t float64) {
	for _, c := range p.Cards {
		c.Blend.Target = clamp01(t)
	}
}

// SetPortraits assigns portraits round-robin over the cards. Empty refs are
// dropped; an empty pool binds the default portrait everywhere.
func (p *PhotoCards) SetPortraits(pool []ImageRef) {
	p.portraits = appendRefs(p.portraits[:0], pool)
	for i, c := range p.Cards {
		c.portraitWant = DefaultPortraitRef
		if len(p.portraits) > 0 {
			c.portraitWant = p.portraits[i%len(p.portraits)]
		}
	}
}

// Portraits returns the current portrait pool.
func (p *PhotoCards) Portraits() []ImageRef {
	return p.portraits
}

// Update animates every card. winner and prize come from the lottery; only
// the winner reacts to the lottery status.
func (p *PhotoCards) Update(ctx *FrameContext, winner int, prize ImageRef) {
	for i, c := range p.Cards {
		isWinner := i == winner
		p.updateCard(ctx, c, isWinner && ctx.Showcase())

		face := c.Inner.Card
		face.Frame = Material{Color: ColorWhite, Emissive: ColorWhite, EmissiveIntensity: frameEmissive, Opacity: 1}
		if isWinner && ctx.Status == LotteryRunning {
			face.Frame = Material{Color: p.highlight, Emissive: p.highlight, EmissiveIntensity: frameHighlightEmissive, Opacity: 1}
		}

		face.ShowPrize = isWinner && ctx.Showcase() && prize != ""
		c.prizeWant = TransparentRef
		if face.ShowPrize {
			c.prizeWant = prize
		}
	}
}

func (p *PhotoCards) updateCard(ctx *FrameContext, c *PhotoCard, showcase bool) {
	t := c.Blend.Step(ctx.Dt)
	parent := c.Node.Parent
	o := &c.Ornament

	var (
		posGoal, scaleGoal Vec3
		rotGoal            Quat
		turn, flipGoal     float64
		flipRate           float64
	)
	if showcase {
		posGoal = p.cfg.FocalPoint
		rotGoal = QuatIdentity
		if parent != nil {
			posGoal = parent.WorldToLocal(p.cfg.FocalPoint)
			rotGoal = parent.WorldRotation().Inverse()
		}
		if ctx.Camera != nil {
			rotGoal = rotGoal.Mul(ctx.Camera.Rotation())
		}
		scaleGoal = Splat(p.cfg.ShowcaseScale)
		turn = p.cfg.ShowcaseTurnLerp
		flipRate = p.cfg.FlipLerp
		if ctx.Status == LotteryFlipped {
			flipGoal = math.Pi
		}
	} else {
		posGoal = o.ChaosPosition.Lerp(o.TargetPosition, t)
		scaleGoal = o.ChaosScale.Lerp(o.TargetScale, t)
		camLocal := Vec3{0, 0, 1}
		if ctx.Camera != nil {
			camLocal = ctx.Camera.Position
			if parent != nil {
				camLocal = parent.WorldToLocal(camLocal)
			}
		}
		rotGoal = orientInstance(c.Node.Position, camLocal, t)
		turn = p.cfg.TurnLerp
		flipRate = p.cfg.UnflipLerp
	}

	k := frameFactor(p.cfg.FollowLerp, ctx.Dt)
	c.Node.Position = c.Node.Position.Lerp(posGoal, k)
	c.Node.Scale = c.Node.Scale.Lerp(scaleGoal, k)
	c.Node.Rotation = c.Node.Rotation.Slerp(rotGoal, frameFactor(turn, ctx.Dt))
	c.Node.MarkDirty()

	c.flip = lerp(c.flip, flipGoal, frameFactor(flipRate, ctx.Dt))
	c.Inner.SetRotation(QuatFromAxisAngle(WorldUp, c.flip))
}

// bindTextures resolves any changed portrait or prize reference, and
// rebinds the ones whose background load failed.
func (p *PhotoCards) bindTextures(cache *textureCache) {
	for _, c := range p.Cards {
		face := c.Inner.Card
		if !c.bound || c.portraitBound != c.portraitWant || cache.failed(face.Portrait) {
			face.Portrait = cache.bind(c.portraitWant, DefaultPortraitRef)
			c.portraitBound = c.portraitWant
		}
		if !c.bound || c.prizeBound != c.prizeWant || cache.failed(face.Prize) {
			face.Prize = cache.bind(c.prizeWant, TransparentRef)
			c.prizeBound = c.prizeWant
		}
		c.bound = true
	}
}

// unbindTextures forces every card to rebind on the next frame.
func (p *PhotoCards) unbindTextures() {
	for _, c := range p.Cards {
		c.bound = false
	}
}
