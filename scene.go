package evergreen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/phanxgames/evergreen/internal/log"
)

// Scene owns the tree, its ornament animators, the lottery and the gesture
// mapper. Every method except GestureSlot().Store must be called from the
// frame goroutine.
type Scene struct {
	cfg Config
	rng *rand.Rand

	root *Node
	tree *Node

	Foliage *InstancedGroup
	Baubles *InstancedGroup
	Lights  *SpiralLights
	Star    *TopperStar
	Photos  *PhotoCards
	Camera  *Camera

	lottery  *Lottery
	gestures *GestureMapper
	slot     GestureSlot
	sched    *FrameScheduler

	clock       time.Duration
	blendTarget float64
	treeSpin    float64

	sink     EventSink
	textures *textureCache
	debug    bool
	stats    frameStats

	injectQueue     []GestureSample
	testRunner      *TestRunner
	screenshotQueue []string
}

// NewScene validates cfg and builds every ornament class.
func NewScene(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := newRand(cfg.Seed)

	s := &Scene{
		cfg:         cfg,
		rng:         rng,
		root:        NewContainer("root"),
		tree:        NewContainer("tree"),
		Camera:      NewCamera(cfg.Camera),
		gestures:    NewGestureMapper(cfg.Gesture),
		sched:       NewFrameScheduler(),
		blendTarget: BlendFormed,
	}
	s.SetDebugMode(cfg.Debug)
	s.root.AddChild(s.tree)

	var err error
	if s.Foliage, err = NewFoliage(rng, cfg.Tree, cfg.Foliage); err != nil {
		return nil, fmt.Errorf("new scene: foliage: %w", err)
	}
	if s.Baubles, err = NewBaubles(rng, cfg.Tree, cfg.Ornaments); err != nil {
		return nil, fmt.Errorf("new scene: ornaments: %w", err)
	}
	if s.Lights, err = NewSpiralLights(rng, cfg.Lights); err != nil {
		return nil, fmt.Errorf("new scene: lights: %w", err)
	}
	if s.Star, err = NewTopperStar(cfg.Star); err != nil {
		return nil, fmt.Errorf("new scene: %w", err)
	}
	if s.Photos, err = NewPhotoCards(rng, cfg.Tree, cfg.Photos); err != nil {
		return nil, fmt.Errorf("new scene: photos: %w", err)
	}
	s.tree.AddChild(s.Foliage.Node)
	s.tree.AddChild(s.Baubles.Node)
	s.tree.AddChild(s.Lights.Node)
	s.tree.AddChild(s.Photos.Node)
	s.tree.AddChild(s.Star.Node)

	s.lottery = NewLottery(s.Photos.Len(), rng, s.sched, cfg.Lottery.ShuffleInterval)
	s.lottery.SetPrizes(refs(cfg.Lottery.Prizes))
	s.lottery.SetBlend = s.SetBlendTarget
	s.lottery.Emit = s.emit

	updateWorldTransform(s.root, identityTransform, QuatIdentity, false)
	log.Info("scene created",
		"foliage", len(s.Foliage.Ornaments),
		"ornaments", len(s.Baubles.Ornaments),
		"lights", len(s.Lights.Ornaments),
		"photos", s.Photos.Len(),
	)
	return s, nil
}

// Root returns the scene's root container.
func (s *Scene) Root() *Node {
	return s.root
}

// Tree returns the spinning group that holds every ornament.
func (s *Scene) Tree() *Node {
	return s.tree
}

// Config returns the configuration the scene was built with.
func (s *Scene) Config() Config {
	return s.cfg
}

// Elapsed returns the scene clock.
func (s *Scene) Elapsed() time.Duration {
	return s.clock
}

// Update advances the scene by dt seconds: pending gestures first, then
// timers, camera, tree spin and every animator.
func (s *Scene) Update(dt float64) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	if dt < 0 {
		dt = 0
	}
	step := time.Duration(dt * float64(time.Second))
	s.clock += step

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	if !s.processInjectedGesture() {
		if g, ok := s.slot.Take(); ok {
			s.OnGestureSample(g)
		}
	}
	s.sched.Advance(step)

	status := s.lottery.Status()
	s.Camera.update(dt, s.gestures.Step(dt), status.Showcase())

	if !status.Showcase() {
		rate := s.cfg.Tree.IdleSpin
		if status == LotteryRunning {
			rate = s.cfg.Tree.RunningSpin
		}
		s.treeSpin = math.Mod(s.treeSpin+rate*dt, 2*math.Pi)
		s.tree.SetRotation(QuatFromAxisAngle(WorldUp, s.treeSpin))
	}

	// Card showcase targets are converted through parent transforms, so
	// world transforms must be current before the animators run.
	updateWorldTransform(s.root, identityTransform, QuatIdentity, false)

	ctx := &FrameContext{
		Dt:      dt,
		Elapsed: s.clock.Seconds(),
		Camera:  s.Camera,
		Status:  status,
	}
	s.Foliage.Update(ctx)
	s.Baubles.Update(ctx)
	s.Lights.Update(ctx)
	s.Star.Update(ctx)
	s.Photos.Update(ctx, s.lottery.Winner(), s.lottery.Prize())

	if s.debug {
		s.stats.updateTime = time.Since(t0)
	}
}

// Render refreshes transforms and submits every visible node to b.
func (s *Scene) Render(b Backend) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	if s.textures == nil || s.textures.backend != b {
		s.textures = newTextureCache(b)
		s.Photos.unbindTextures()
	}
	s.Photos.bindTextures(s.textures)
	updateWorldTransform(s.root, identityTransform, QuatIdentity, false)

	s.stats.instances, s.stats.meshes, s.stats.cards = 0, 0, 0
	b.BeginFrame(s.Camera)
	s.draw(b, s.root)
	b.EndFrame()

	if s.debug {
		s.stats.renderTime = time.Since(t0)
		s.debugLog()
	}
}

func (s *Scene) draw(b Backend, n *Node) {
	if !n.Visible {
		return
	}
	switch n.Type {
	case NodeTypeInstanced:
		b.DrawInstances(n.Name, n.worldTransform, n.Instances, n.Material)
		s.stats.instances += len(n.Instances)
	case NodeTypeMesh:
		b.DrawMesh(n.Name, n.worldTransform, n.Mesh, n.Material, n.Light)
		s.stats.meshes++
	case NodeTypeCard:
		b.DrawCard(n.worldTransform, n.Card)
		s.stats.cards++
	}
	for _, c := range n.children {
		s.draw(b, c)
	}
}

// --- UI operations ---

// SetBlendTarget sets the shared blend target, clamped to [0, 1]. NaN is
// ignored.
func (s *Scene) SetBlendTarget(t float64) {
	if math.IsNaN(t) {
		log.Warn("blend target ignored", "target", t)
		return
	}
	t = clamp01(t)
	if t == s.blendTarget {
		return
	}
	s.blendTarget = t
	s.Foliage.SetTarget(t)
	s.Baubles.SetTarget(t)
	s.Lights.SetTarget(t)
	s.Star.SetTarget(t)
	s.Photos.SetTarget(t)
	s.emit(SceneEvent{Kind: EventBlendTarget, Blend: t})
}

// BlendTarget returns the shared blend target.
func (s *Scene) BlendTarget() float64 {
	return s.blendTarget
}

// Blend returns the foliage's current smoothed blend, a good proxy for how
// assembled the tree looks.
func (s *Scene) Blend() float64 {
	return s.Foliage.Blend.Current
}

// ToggleExplode switches the blend target between formed and dispersed.
func (s *Scene) ToggleExplode() {
	if s.blendTarget == BlendFormed {
		s.SetBlendTarget(BlendDispersed)
		return
	}
	s.SetBlendTarget(BlendFormed)
}

// StartLotteryRound starts shuffling from IDLE, or begins the next round
// from a showcase. It reports whether a transition happened.
func (s *Scene) StartLotteryRound() bool {
	if s.lottery.Status().Showcase() {
		return s.lottery.NextRound()
	}
	return s.lottery.Start()
}

// StopLotteryRound freezes the current winner.
func (s *Scene) StopLotteryRound() bool {
	return s.lottery.Stop()
}

// FlipWinnerCard turns the winner card over.
func (s *Scene) FlipWinnerCard() bool {
	return s.lottery.Flip()
}

// ExitLottery returns to IDLE and reassembles the tree.
func (s *Scene) ExitLottery() bool {
	return s.lottery.Exit()
}

// LotteryStatus returns the lottery state.
func (s *Scene) LotteryStatus() LotteryStatus {
	return s.lottery.Status()
}

// WinnerIndex returns the winner card index, or -1 when IDLE.
func (s *Scene) WinnerIndex() int {
	return s.lottery.Winner()
}

// CurrentPrize returns the drawn prize, or "" when none.
func (s *Scene) CurrentPrize() ImageRef {
	return s.lottery.Prize()
}

// OnGestureSample applies one classifier sample immediately.
func (s *Scene) OnGestureSample(g GestureSample) {
	in := s.gestures.Handle(g, s.clock, s.lottery.Status(), s.blendTarget)
	if in.SetBlend {
		s.SetBlendTarget(in.Blend)
	}
	if in.Flip && s.lottery.Flip() {
		s.emit(SceneEvent{Kind: EventGestureFlip, Status: s.lottery.Status(), Winner: s.lottery.Winner()})
	}
}

// GestureSlot returns the latest-sample slot that classifiers running on
// other goroutines write into. Update drains it once per frame.
func (s *Scene) GestureSlot() *GestureSlot {
	return &s.slot
}

// SetGestureEnabled turns gesture control on or off.
func (s *Scene) SetGestureEnabled(on bool) {
	s.gestures.SetEnabled(on)
	log.Info("gesture control", "enabled", on)
}

// GestureEnabled reports whether gesture control is on.
func (s *Scene) GestureEnabled() bool {
	return s.gestures.Enabled()
}

// HandDetected reports whether the last gesture sample saw a hand.
func (s *Scene) HandDetected() bool {
	return s.gestures.Detected()
}

// Cursor returns the smoothed gesture cursor.
func (s *Scene) Cursor() Vec2 {
	return s.gestures.Cursor()
}

// AddPortraits appends images to the portrait pool and reassigns them
// round-robin over the cards.
func (s *Scene) AddPortraits(pool ...ImageRef) {
	if len(pool) == 0 {
		return
	}
	next := make([]ImageRef, 0, len(s.Photos.Portraits())+len(pool))
	next = append(next, s.Photos.Portraits()...)
	next = append(next, pool...)
	s.Photos.SetPortraits(next)
	log.Info("portraits added", "added", len(pool), "total", len(s.Photos.Portraits()))
}

// AddPrizes appends images to the prize pool.
func (s *Scene) AddPrizes(pool ...ImageRef) {
	if len(pool) == 0 {
		return
	}
	next := make([]ImageRef, 0, len(s.lottery.Prizes())+len(pool))
	next = append(next, s.lottery.Prizes()...)
	next = append(next, pool...)
	s.lottery.SetPrizes(next)
	log.Info("prizes added", "added", len(pool), "total", len(s.lottery.Prizes()))
}

// SetEventSink sets the optional observer of scene events.
func (s *Scene) SetEventSink(sink EventSink) {
	s.sink = sink
}

func (s *Scene) emit(e SceneEvent) {
	if s.sink == nil {
		return
	}
	e.Elapsed = s.clock.Seconds()
	s.sink.Emit(e)
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth
// and child count warnings are logged and per-frame stats are logged at
// debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	debugEnabled = enabled
}

// Screenshot queues a labeled screenshot request. Backends that can capture
// frames drain the queue with TakeScreenshots after drawing.
func (s *Scene) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// TakeScreenshots returns and clears the pending screenshot labels.
func (s *Scene) TakeScreenshots() []string {
	if len(s.screenshotQueue) == 0 {
		return nil
	}
	out := s.screenshotQueue
	s.screenshotQueue = nil
	return out
}
