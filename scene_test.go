package evergreen

import (
	"errors"
	"math"
	"slices"
	"testing"
)

const frame = 1.0 / 60

// testConfig is the default scene with lighter ornament classes.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Foliage.Count = 200
	cfg.Ornaments.Count = 12
	cfg.Lights.Count = 30
	return cfg
}

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	s, err := NewScene(testConfig())
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s
}

func runFrames(s *Scene, n int) {
	for range n {
		s.Update(frame)
	}
}

var errNoImage = errors.New("no such image")

// recordingBackend counts draw calls and serves every image reference as
// its own string, except the ones listed in fail.
type recordingBackend struct {
	frames    int
	open      bool
	instances map[string]int
	meshes    []string
	cards     []*CardFace
	loads     map[ImageRef]int
	fail      map[ImageRef]bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		instances: map[string]int{},
		loads:     map[ImageRef]int{},
		fail:      map[ImageRef]bool{},
	}
}

func (b *recordingBackend) BeginFrame(*Camera) {
	b.open = true
	b.frames++
	clear(b.instances)
	b.meshes = b.meshes[:0]
	b.cards = b.cards[:0]
}

func (b *recordingBackend) DrawInstances(name string, _ Affine, instances []Instance, _ Material) {
	b.instances[name] = len(instances)
}

func (b *recordingBackend) DrawMesh(name string, _ Affine, _ *Mesh, _ Material, _ float64) {
	b.meshes = append(b.meshes, name)
}

func (b *recordingBackend) DrawCard(_ Affine, face *CardFace) {
	b.cards = append(b.cards, face)
}

func (b *recordingBackend) LoadTexture(ref ImageRef) (Texture, error) {
	b.loads[ref]++
	if b.fail[ref] {
		return nil, errNoImage
	}
	return string(ref), nil
}

func (b *recordingBackend) EndFrame() {
	b.open = false
}

func TestNewSceneBuildsEveryClass(t *testing.T) {
	s := newTestScene(t)
	if got := len(s.Foliage.Ornaments); got != 200 {
		t.Errorf("foliage = %d, want 200", got)
	}
	if got := len(s.Baubles.Ornaments); got != 12 {
		t.Errorf("ornaments = %d, want 12", got)
	}
	if got := len(s.Lights.Ornaments); got != 30 {
		t.Errorf("lights = %d, want 30", got)
	}
	if got := s.Photos.Len(); got != 42 {
		t.Errorf("photos = %d, want 42", got)
	}
	if s.Tree().Parent != s.Root() || s.Tree().NumChildren() != 5 {
		t.Errorf("tree has %d children", s.Tree().NumChildren())
	}
	if s.LotteryStatus() != LotteryIdle || s.WinnerIndex() != -1 {
		t.Errorf("new scene lottery: %v winner %d", s.LotteryStatus(), s.WinnerIndex())
	}
	if s.BlendTarget() != BlendFormed || s.Blend() != BlendFormed {
		t.Errorf("new scene blend %v target %v, want formed", s.Blend(), s.BlendTarget())
	}
}

func TestNewSceneInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Tree.Radius = 0
	if _, err := NewScene(cfg); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("err = %v, want ErrInvalidShape", err)
	}

	cfg = testConfig()
	cfg.Star.Color = "gold"
	if _, err := NewScene(cfg); err == nil {
		t.Error("expected error for a bad star color")
	}
}

func TestSceneRender(t *testing.T) {
	s := newTestScene(t)
	b := newRecordingBackend()
	s.Update(frame)
	s.Render(b)

	if b.frames != 1 || b.open {
		t.Fatalf("frames = %d open = %v, want one closed frame", b.frames, b.open)
	}
	want := map[string]int{"foliage": 200, "ornaments": 12, "spiral_lights": 30}
	for name, n := range want {
		if b.instances[name] != n {
			t.Errorf("%s drew %d instances, want %d", name, b.instances[name], n)
		}
	}
	if !slices.Equal(b.meshes, []string{"star_mesh"}) {
		t.Errorf("meshes = %v, want [star_mesh]", b.meshes)
	}
	if len(b.cards) != 42 {
		t.Errorf("cards = %d, want 42", len(b.cards))
	}
}

func TestSceneRenderSkipsHidden(t *testing.T) {
	s := newTestScene(t)
	s.Photos.Node.Visible = false
	b := newRecordingBackend()
	s.Render(b)
	if len(b.cards) != 0 {
		t.Errorf("drew %d cards under a hidden parent", len(b.cards))
	}
}

func TestSceneBlendTarget(t *testing.T) {
	s := newTestScene(t)
	rec := &EventRecorder{}
	s.SetEventSink(rec)

	s.SetBlendTarget(-3)
	if s.BlendTarget() != BlendDispersed {
		t.Fatalf("BlendTarget = %v, want clamped to 0", s.BlendTarget())
	}
	if s.Star.Blend.Target != 0 || s.Photos.Cards[0].Blend.Target != 0 || s.Lights.Blend.Target != 0 {
		t.Error("target not shared by every class")
	}
	s.SetBlendTarget(0)
	if len(rec.Events) != 1 {
		t.Errorf("events = %d, want 1 (unchanged target is a no-op)", len(rec.Events))
	}

	prev := s.Blend()
	for range 120 {
		s.Update(frame)
		if s.Blend() > prev {
			t.Fatalf("blend moved away from its target")
		}
		prev = s.Blend()
	}
	if prev > 0.05 {
		t.Errorf("blend after 2s = %v, want near 0", prev)
	}

	s.ToggleExplode()
	if s.BlendTarget() != BlendFormed {
		t.Errorf("ToggleExplode: target %v, want 1", s.BlendTarget())
	}
	s.ToggleExplode()
	if s.BlendTarget() != BlendDispersed {
		t.Errorf("ToggleExplode: target %v, want 0", s.BlendTarget())
	}
}

func TestSceneBlendTargetIgnoresNaN(t *testing.T) {
	s := newTestScene(t)
	s.SetBlendTarget(math.NaN())
	if s.BlendTarget() != BlendFormed {
		t.Fatalf("BlendTarget = %v, want unchanged", s.BlendTarget())
	}
	runFrames(s, 2)
	s.SetBlendTarget(BlendDispersed)
	runFrames(s, 120)
	s.SetBlendTarget(math.Inf(1))
	if s.BlendTarget() != BlendFormed {
		t.Errorf("+Inf target = %v, want clamped to 1", s.BlendTarget())
	}
	runFrames(s, 600)
	for _, b := range []float64{s.Blend(), s.Star.Blend.Current, s.Photos.Cards[0].Blend.Current} {
		if math.IsNaN(b) || math.Abs(b-BlendFormed) > 1e-3 {
			t.Fatalf("blend = %v, want it back at 1", b)
		}
	}
}

func TestSceneEmptyPrizeRefs(t *testing.T) {
	cfg := testConfig()
	cfg.Lottery.Prizes = []string{"", "  "}
	cfg.Photos.Portraits = []string{""}
	s, err := NewScene(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.lottery.Prizes()); n != 0 {
		t.Errorf("prize pool = %d, want blanks dropped", n)
	}
	s.AddPrizes("")
	s.AddPortraits("")
	if len(s.lottery.Prizes()) != 0 || len(s.Photos.Portraits()) != 0 {
		t.Error("blank refs added to a pool")
	}

	s.StartLotteryRound()
	runFrames(s, 10)
	s.StopLotteryRound()
	if s.CurrentPrize() != DefaultPrizeRef {
		t.Errorf("prize = %q, want the default", s.CurrentPrize())
	}
	if !s.FlipWinnerCard() || s.LotteryStatus() != LotteryFlipped {
		t.Errorf("flip failed: status %v", s.LotteryStatus())
	}
}

func TestSceneLotteryFlow(t *testing.T) {
	s := newTestScene(t)
	s.AddPrizes("prize.png")
	rec := &EventRecorder{}
	s.SetEventSink(rec)

	if !s.StartLotteryRound() {
		t.Fatal("StartLotteryRound failed")
	}
	if s.BlendTarget() != BlendDispersed {
		t.Errorf("start should disperse the tree, target %v", s.BlendTarget())
	}
	runFrames(s, 30)
	shuffles := 0
	for _, k := range rec.Kinds() {
		if k == EventLotteryShuffled {
			shuffles++
		}
	}
	// 30 frames at 60 Hz is 500ms, seven 70ms ticks.
	if shuffles != 7 {
		t.Errorf("shuffles = %d, want 7", shuffles)
	}

	s.StopLotteryRound()
	if s.LotteryStatus() != LotteryWinner || s.CurrentPrize() != "prize.png" {
		t.Fatalf("after stop: %v prize %q", s.LotteryStatus(), s.CurrentPrize())
	}
	s.FlipWinnerCard()
	if s.LotteryStatus() != LotteryFlipped {
		t.Fatalf("after flip: %v", s.LotteryStatus())
	}

	// Start from a showcase is the next round.
	if !s.StartLotteryRound() || s.LotteryStatus() != LotteryRunning {
		t.Fatalf("next round: %v", s.LotteryStatus())
	}
	s.StopLotteryRound()
	if !s.ExitLottery() {
		t.Fatal("ExitLottery failed")
	}
	if s.LotteryStatus() != LotteryIdle || s.BlendTarget() != BlendFormed {
		t.Errorf("after exit: %v target %v", s.LotteryStatus(), s.BlendTarget())
	}

	last := rec.Events[len(rec.Events)-1]
	if last.Kind != EventLotteryExited || last.Elapsed <= 0 {
		t.Errorf("last event = %+v", last)
	}
}

func TestSceneTreeSpin(t *testing.T) {
	s := newTestScene(t)
	runFrames(s, 60)
	idle := s.treeSpin
	if math.Abs(idle-s.cfg.Tree.IdleSpin) > 1e-9 {
		t.Errorf("idle spin after 1s = %v, want %v", idle, s.cfg.Tree.IdleSpin)
	}

	s.StartLotteryRound()
	s.StopLotteryRound()
	before := s.Tree().Rotation
	runFrames(s, 30)
	if s.Tree().Rotation != before {
		t.Error("tree kept spinning during the showcase")
	}
}

func TestPhotoShowcase(t *testing.T) {
	s := newTestScene(t)
	s.AddPrizes("prize.png")
	s.StartLotteryRound()
	s.Update(frame)

	w := s.WinnerIndex()
	for i, c := range s.Photos.Cards {
		want := frameEmissive
		if i == w {
			want = frameHighlightEmissive
		}
		if got := c.Inner.Card.Frame.EmissiveIntensity; got != want {
			t.Errorf("card %d frame glow = %v, want %v", i, got, want)
		}
	}

	s.StopLotteryRound()
	w = s.WinnerIndex()
	runFrames(s, 600)
	updateWorldTransform(s.root, identityTransform, QuatIdentity, false)

	card := s.Photos.Cards[w]
	pos := card.Node.WorldTransform().Translation()
	assertVecNear(t, "winner position", pos, s.cfg.Photos.FocalPoint, 1e-3)
	assertVecNear(t, "winner scale", card.Node.Scale, Splat(s.cfg.Photos.ShowcaseScale), 1e-3)
	if a := card.Node.WorldRotation().Angle(s.Camera.Rotation()); a > 1e-2 {
		t.Errorf("winner is %v rad off facing the camera", a)
	}
	if card.FlipAngle() > 1e-3 {
		t.Errorf("unflipped winner turned %v rad", card.FlipAngle())
	}
	if !card.Inner.Card.ShowPrize || card.prizeWant != "prize.png" {
		t.Errorf("winner prize: show %v want %q", card.Inner.Card.ShowPrize, card.prizeWant)
	}
	for i, c := range s.Photos.Cards {
		if i != w && (c.Inner.Card.ShowPrize || c.prizeWant != TransparentRef) {
			t.Errorf("card %d shows a prize", i)
		}
	}

	s.FlipWinnerCard()
	runFrames(s, 600)
	if math.Abs(card.FlipAngle()-math.Pi) > 1e-3 {
		t.Errorf("flipped angle = %v, want π", card.FlipAngle())
	}

	s.ExitLottery()
	runFrames(s, 600)
	if card.FlipAngle() > 1e-3 {
		t.Errorf("angle after exit = %v, want 0", card.FlipAngle())
	}
	if card.Inner.Card.ShowPrize {
		t.Error("prize still shown after exit")
	}
	assertVecNear(t, "back on the tree", card.Node.Position, card.Ornament.TargetPosition, 1e-2)
}

func TestPortraitsRoundRobin(t *testing.T) {
	s := newTestScene(t)
	for _, c := range s.Photos.Cards {
		if c.portraitWant != DefaultPortraitRef {
			t.Fatalf("card %d portrait = %q, want the default", c.Index(), c.portraitWant)
		}
	}
	s.AddPortraits("a.jpg", "b.jpg")
	s.AddPortraits("c.jpg")
	want := []ImageRef{"a.jpg", "b.jpg", "c.jpg"}
	for i, c := range s.Photos.Cards {
		if c.portraitWant != want[i%3] {
			t.Errorf("card %d portrait = %q, want %q", i, c.portraitWant, want[i%3])
		}
	}
}

func TestTextureBinding(t *testing.T) {
	s := newTestScene(t)
	s.AddPortraits("good.jpg", "bad.jpg")
	b := newRecordingBackend()
	b.fail["bad.jpg"] = true

	s.Render(b)
	s.Render(b)

	for i, c := range s.Photos.Cards {
		face := c.Inner.Card
		want := ImageRef("good.jpg")
		if i%2 == 1 {
			want = DefaultPortraitRef
		}
		if face.Portrait.Ref != want || face.Portrait.Texture != string(want) {
			t.Errorf("card %d portrait = %+v, want %q", i, face.Portrait, want)
		}
		if face.Prize.Ref != TransparentRef {
			t.Errorf("card %d prize = %q, want transparent", i, face.Prize.Ref)
		}
	}
	for _, ref := range []ImageRef{"good.jpg", "bad.jpg", DefaultPortraitRef, TransparentRef} {
		if b.loads[ref] != 1 {
			t.Errorf("%s loaded %d times, want 1", truncateRef(ref), b.loads[ref])
		}
	}

	// A new backend gets its own cache.
	b2 := newRecordingBackend()
	s.Render(b2)
	if b2.loads["good.jpg"] != 1 {
		t.Errorf("new backend loaded good.jpg %d times, want 1", b2.loads["good.jpg"])
	}
}

// pendingTexture is a background load the test completes by hand.
type pendingTexture struct{ err error }

func (p *pendingTexture) Err() error { return p.err }

// asyncBackend serves the refs in pending as background loads.
type asyncBackend struct {
	*recordingBackend
	pending map[ImageRef]*pendingTexture
}

func (b *asyncBackend) LoadTexture(ref ImageRef) (Texture, error) {
	if p, ok := b.pending[ref]; ok {
		b.loads[ref]++
		return p, nil
	}
	return b.recordingBackend.LoadTexture(ref)
}

func TestTextureBackgroundFailureFallsBack(t *testing.T) {
	const remote = ImageRef("https://example.com/a.jpg")
	s := newTestScene(t)
	s.AddPortraits(remote)
	tex := &pendingTexture{}
	b := &asyncBackend{newRecordingBackend(), map[ImageRef]*pendingTexture{remote: tex}}

	s.Render(b)
	if p := s.Photos.Cards[0].Inner.Card.Portrait; p.Ref != remote || p.Texture != tex {
		t.Fatalf("portrait = %+v, want the pending remote texture", p)
	}

	tex.err = errNoImage
	s.Render(b)
	s.Render(b)
	for i, c := range s.Photos.Cards {
		if p := c.Inner.Card.Portrait; p.Ref != DefaultPortraitRef || p.Texture != string(DefaultPortraitRef) {
			t.Fatalf("card %d portrait = %+v, want the default", i, p)
		}
	}
	if b.loads[remote] != 1 || b.loads[DefaultPortraitRef] != 1 {
		t.Errorf("loads = %v, want each ref once", b.loads)
	}
}

func TestTextureFallbackFails(t *testing.T) {
	b := newRecordingBackend()
	b.fail["x.png"] = true
	b.fail[DefaultPortraitRef] = true
	cache := newTextureCache(b)

	got := cache.bind("x.png", DefaultPortraitRef)
	if got.Texture != nil || got.Ref != DefaultPortraitRef {
		t.Errorf("bind = %+v, want fallback ref with no texture", got)
	}
	if got := cache.bind("", TransparentRef); got.Texture != string(TransparentRef) {
		t.Errorf("empty ref bind = %+v, want the fallback texture", got)
	}
}

func TestTruncateRef(t *testing.T) {
	if got := truncateRef("a.png"); got != "a.png" {
		t.Errorf("truncateRef = %q", got)
	}
	if got := truncateRef(TransparentRef); len(got) != maxLoggedRef+3 {
		t.Errorf("len(truncateRef(data uri)) = %d, want %d", len(got), maxLoggedRef+3)
	}
}

func TestSceneScreenshotQueue(t *testing.T) {
	s := newTestScene(t)
	if s.TakeScreenshots() != nil {
		t.Error("empty queue returned labels")
	}
	s.Screenshot("a")
	s.Screenshot("b")
	if got := s.TakeScreenshots(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("TakeScreenshots = %v", got)
	}
	if s.TakeScreenshots() != nil {
		t.Error("queue not cleared")
	}
}

func TestSceneDebugMode(t *testing.T) {
	s := newTestScene(t)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	b := newRecordingBackend()
	s.Update(frame)
	s.Render(b)
	if s.stats.instances != 242 || s.stats.meshes != 1 || s.stats.cards != 42 {
		t.Errorf("stats = %+v", s.stats)
	}
}
