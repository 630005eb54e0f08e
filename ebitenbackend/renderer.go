package ebitenbackend

import (
	"image"
	"image/color"
	"math"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/evergreen"
)

// Card geometry in card-local units. The photo sits inside the frame.
const (
	cardFrameW = 1.2
	cardFrameH = 1.5
	cardPhotoW = 1.0
	cardPhotoH = 1.2
)

const (
	dotRadius      = 16
	defaultItemCap = 8192
	// minPointSize keeps distant points from vanishing.
	minPointSize = 0.75
)

// prim is one depth-sorted primitive: a triangle (n=3) or a quad (n=4,
// vertex order TL, TR, BL, BR).
type prim struct {
	depth    float64
	img      *ebiten.Image
	additive bool
	n        uint8
	verts    [4]ebiten.Vertex
}

// Renderer is an evergreen.Backend that projects the scene with the scene
// camera and paints depth-sorted primitives onto an ebiten image.
type Renderer struct {
	target *ebiten.Image
	cam    *evergreen.Camera
	view   evergreen.Affine
	w, h   float64

	prims   []prim
	sortBuf []prim

	batchVerts []ebiten.Vertex
	batchInds  []uint32

	dot    *ebiten.Image
	white  *ebiten.Image
	client *http.Client
}

// NewRenderer creates a renderer. Call SetTarget before each frame.
func NewRenderer() *Renderer {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Renderer{
		prims:   make([]prim, 0, defaultItemCap),
		sortBuf: make([]prim, 0, defaultItemCap),
		dot:     generateDot(dotRadius),
		white:   white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTarget sets the image the next frame is drawn onto.
func (r *Renderer) SetTarget(img *ebiten.Image) {
	r.target = img
}

// BeginFrame starts collecting primitives seen through cam.
func (r *Renderer) BeginFrame(cam *evergreen.Camera) {
	r.cam = cam
	r.view = cam.ViewMatrix()
	r.prims = r.prims[:0]
	if r.target != nil {
		b := r.target.Bounds()
		r.w, r.h = float64(b.Dx()), float64(b.Dy())
	}
}

// DrawInstances emits one soft round sprite per instance.
func (r *Renderer) DrawInstances(_ string, world evergreen.Affine, instances []evergreen.Instance, mat evergreen.Material) {
	if r.h == 0 {
		return
	}
	ws := worldScale(world)
	additive := mat.EmissiveIntensity >= 1
	for i := range instances {
		inst := &instances[i]
		p := world.TransformPoint(inst.Position)
		x, y, depth, ok := r.cam.ProjectView(r.view, p, r.w, r.h)
		if !ok {
			continue
		}
		size := max(inst.Scale.X*ws*r.cam.PixelsPerUnit(depth, r.h)*2, minPointSize)
		cr, cg, cb, ca := shade(mat, inst.Color, 1)
		r.prims = append(r.prims, spritePrim(r.dot, x, y, size, depth, cr, cg, cb, ca, additive))
	}
}

// DrawMesh emits one flat-shaded triangle per mesh face, plus a glow sprite
// at the mesh origin when light > 0.
func (r *Renderer) DrawMesh(_ string, world evergreen.Affine, mesh *evergreen.Mesh, mat evergreen.Material, light float64) {
	if mesh == nil || r.h == 0 {
		return
	}
	if light > 0 {
		o := world.Translation()
		if x, y, depth, ok := r.cam.ProjectView(r.view, o, r.w, r.h); ok {
			size := light * r.cam.PixelsPerUnit(depth, r.h) * 2
			a := float32(min(0.6, light*0.15) * mat.Opacity)
			c := mat.Emissive
			r.prims = append(r.prims, spritePrim(r.dot, x, y, size, depth+0.5,
				float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a, true))
		}
	}

	camPos := r.cam.Position
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := world.TransformPoint(mesh.Vertices[mesh.Indices[i]])
		b := world.TransformPoint(mesh.Vertices[mesh.Indices[i+1]])
		c := world.TransformPoint(mesh.Vertices[mesh.Indices[i+2]])

		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		center := a.Add(b).Add(c).Scale(1.0 / 3)
		facing := math.Abs(n.Dot(camPos.Sub(center).Normalize()))
		cr, cg, cb, ca := shade(mat, evergreen.ColorWhite, 0.45+0.55*facing)

		var t prim
		t.n, t.img = 3, r.white
		depth := 0.0
		ok := true
		for k, v := range [3]evergreen.Vec3{a, b, c} {
			x, y, d, vis := r.cam.ProjectView(r.view, v, r.w, r.h)
			if !vis {
				ok = false
				break
			}
			depth += d / 3
			t.verts[k] = ebiten.Vertex{DstX: float32(x), DstY: float32(y), SrcX: 1, SrcY: 1,
				ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca}
		}
		if ok {
			t.depth = depth
			r.prims = append(r.prims, t)
		}
	}
}

// DrawCard emits the frame and the visible photo face of a card.
func (r *Renderer) DrawCard(world evergreen.Affine, face *evergreen.CardFace) {
	if face == nil || r.h == 0 {
		return
	}
	center := world.TransformPoint(evergreen.Vec3{})
	normal := world.TransformPoint(evergreen.Vec3{Z: 1}).Sub(center)
	front := normal.Dot(r.cam.Position.Sub(center)) >= 0

	fr, fg, fb, fa := shade(face.Frame, evergreen.ColorWhite, 1)
	frame, ok := r.quad(world, cardFrameW, cardFrameH, 0, r.white, false, false)
	if !ok {
		return
	}
	tintQuad(&frame, fr, fg, fb, fa)
	r.prims = append(r.prims, frame)

	z := 0.01
	binding := face.Portrait
	mirror := false
	if !front {
		z = -0.01
		if !face.ShowPrize {
			return
		}
		binding = face.Prize
		mirror = true
	}
	img := textureImage(binding.Texture)
	if img == nil {
		return
	}
	photo, ok := r.quad(world, cardPhotoW, cardPhotoH, z, img, true, mirror)
	if !ok {
		return
	}
	a := float32(face.Frame.Opacity)
	tintQuad(&photo, a, a, a, a)
	// Keep the photo in front of its own frame after sorting.
	photo.depth = frame.depth - 1e-3
	r.prims = append(r.prims, photo)
}

// quad projects a w×h rectangle centered on the card origin at local z.
// A textured quad maps the whole of img, mirrored horizontally if asked.
func (r *Renderer) quad(world evergreen.Affine, w, h, z float64, img *ebiten.Image, textured, mirror bool) (prim, bool) {
	q := prim{n: 4, img: img}
	corners := [4]evergreen.Vec3{
		{X: -w / 2, Y: h / 2, Z: z},
		{X: w / 2, Y: h / 2, Z: z},
		{X: -w / 2, Y: -h / 2, Z: z},
		{X: w / 2, Y: -h / 2, Z: z},
	}
	sx := [4]float32{1, 1, 1, 1}
	sy := [4]float32{1, 1, 1, 1}
	if textured {
		b := img.Bounds()
		x0, y0 := float32(b.Min.X), float32(b.Min.Y)
		x1, y1 := float32(b.Max.X), float32(b.Max.Y)
		if mirror {
			x0, x1 = x1, x0
		}
		sx = [4]float32{x0, x1, x0, x1}
		sy = [4]float32{y0, y0, y1, y1}
	}
	for i, c := range corners {
		x, y, d, ok := r.cam.ProjectView(r.view, world.TransformPoint(c), r.w, r.h)
		if !ok {
			return prim{}, false
		}
		q.depth += d / 4
		q.verts[i] = ebiten.Vertex{DstX: float32(x), DstY: float32(y), SrcX: sx[i], SrcY: sy[i]}
	}
	return q, true
}

// EndFrame sorts far to near and submits coalesced batches.
func (r *Renderer) EndFrame() {
	if r.target == nil {
		return
	}
	r.prims, r.sortBuf = sortPrims(r.prims, r.sortBuf)
	r.submitBatches(r.target)
}

// submitBatches draws runs of primitives sharing an image and blend mode
// with a single DrawTriangles32 call each.
func (r *Renderer) submitBatches(target *ebiten.Image) {
	var (
		img      *ebiten.Image
		additive bool
	)
	for i := range r.prims {
		p := &r.prims[i]
		if len(r.batchVerts) > 0 && (p.img != img || p.additive != additive) {
			r.flush(target, img, additive)
		}
		img, additive = p.img, p.additive

		base := uint32(len(r.batchVerts))
		r.batchVerts = append(r.batchVerts, p.verts[:p.n]...)
		if p.n == 3 {
			r.batchInds = append(r.batchInds, base, base+1, base+2)
		} else {
			// Two triangles: TL-TR-BL, TR-BR-BL
			r.batchInds = append(r.batchInds, base, base+1, base+2, base+1, base+3, base+2)
		}
	}
	r.flush(target, img, additive)
}

func (r *Renderer) flush(target *ebiten.Image, img *ebiten.Image, additive bool) {
	if len(r.batchVerts) == 0 || img == nil {
		r.batchVerts = r.batchVerts[:0]
		r.batchInds = r.batchInds[:0]
		return
	}
	var triOp ebiten.DrawTrianglesOptions
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	if additive {
		triOp.Blend = ebiten.BlendLighter
	}
	target.DrawTriangles32(r.batchVerts, r.batchInds, img, &triOp)
	r.batchVerts = r.batchVerts[:0]
	r.batchInds = r.batchInds[:0]
}

// spritePrim builds a screen-aligned quad of the given pixel size centered
// on (x, y). Colors are premultiplied.
func spritePrim(img *ebiten.Image, x, y, size, depth float64, cr, cg, cb, ca float32, additive bool) prim {
	b := img.Bounds()
	x0, y0 := float32(x-size/2), float32(y-size/2)
	x1, y1 := float32(x+size/2), float32(y+size/2)
	sx0, sy0 := float32(b.Min.X), float32(b.Min.Y)
	sx1, sy1 := float32(b.Max.X), float32(b.Max.Y)
	v := func(dx, dy, sx, sy float32) ebiten.Vertex {
		return ebiten.Vertex{DstX: dx, DstY: dy, SrcX: sx, SrcY: sy, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca}
	}
	return prim{
		depth:    depth,
		img:      img,
		additive: additive,
		n:        4,
		verts: [4]ebiten.Vertex{
			v(x0, y0, sx0, sy0),
			v(x1, y0, sx1, sy0),
			v(x0, y1, sx0, sy1),
			v(x1, y1, sx1, sy1),
		},
	}
}

func tintQuad(p *prim, cr, cg, cb, ca float32) {
	for i := range p.verts[:p.n] {
		p.verts[i].ColorR, p.verts[i].ColorG, p.verts[i].ColorB, p.verts[i].ColorA = cr, cg, cb, ca
	}
}

// shade combines a material, a per-instance tint and a diffuse factor into a
// premultiplied vertex color. Emissive intensity brightens toward the
// emissive color.
func shade(mat evergreen.Material, tint evergreen.Color, diffuse float64) (r, g, b, a float32) {
	glow := max(0, min(mat.EmissiveIntensity, 4)) * 0.25
	ch := func(base, t, e float64) float64 {
		return min(1, base*t*diffuse+e*glow)
	}
	alpha := max(0, min(1, mat.Opacity*tint.A))
	return float32(ch(mat.Color.R, tint.R, mat.Emissive.R) * alpha),
		float32(ch(mat.Color.G, tint.G, mat.Emissive.G) * alpha),
		float32(ch(mat.Color.B, tint.B, mat.Emissive.B) * alpha),
		float32(alpha)
}

// worldScale approximates the uniform scale of m from its first column.
func worldScale(m evergreen.Affine) float64 {
	return math.Sqrt(m[0]*m[0] + m[3]*m[3] + m[6]*m[6])
}

// generateDot creates a feathered white circle with smoothstep falloff and
// premultiplied alpha.
func generateDot(radius float64) *ebiten.Image {
	size := int(math.Ceil(radius * 2))
	img := ebiten.NewImage(size, size)
	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			dy := float64(y) + 0.5 - radius
			dist := math.Sqrt(dx*dx+dy*dy) / radius
			alpha := 0.0
			if dist < 1 {
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}
			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0], pix[off+1], pix[off+2], pix[off+3] = a, a, a, a
		}
	}
	img.WritePixels(pix)
	return img
}
