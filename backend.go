package evergreen

// Texture is a backend-specific handle to a loaded image.
type Texture any

// AsyncTexture is implemented by textures that keep loading after
// LoadTexture returns. Err reports a load that failed later; the scene then
// rebinds the fallback image.
type AsyncTexture interface {
	Err() error
}

// TextureBinding pairs an image reference with its loaded texture. Texture
// is nil when nothing could be loaded; backends then draw a flat color.
type TextureBinding struct {
	Ref     ImageRef
	Texture Texture
}

// Backend is the render capability the scene drives. Every method is called
// from the frame goroutine, between BeginFrame and EndFrame except for
// LoadTexture, which may be called at any time on that goroutine.
type Backend interface {
	// BeginFrame starts a frame seen through cam.
	BeginFrame(cam *Camera)
	// DrawInstances draws one primitive per instance; world maps instance
	// positions into world space.
	DrawInstances(name string, world Affine, instances []Instance, mat Material)
	// DrawMesh draws a single mesh. light is the intensity of a point light
	// at the mesh origin (0 for none).
	DrawMesh(name string, world Affine, mesh *Mesh, mat Material, light float64)
	// DrawCard draws a two-sided photo card whose local +Z is the portrait side.
	DrawCard(world Affine, face *CardFace)
	// LoadTexture loads an image reference into a texture.
	LoadTexture(ref ImageRef) (Texture, error)
	// EndFrame finishes the frame.
	EndFrame()
}
