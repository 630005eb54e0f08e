package evergreen

import "github.com/phanxgames/evergreen/internal/log"

// maxLoggedRef is the longest image reference written to logs; data URIs
// are otherwise unbounded.
const maxLoggedRef = 64

type textureEntry struct {
	tex Texture
	err error
}

// textureCache loads each image reference at most once per backend.
// Failures are cached too, so a broken reference is logged once.
type textureCache struct {
	backend Backend
	entries map[ImageRef]textureEntry
}

func newTextureCache(b Backend) *textureCache {
	return &textureCache{backend: b, entries: make(map[ImageRef]textureEntry)}
}

// load returns the texture for ref, loading it on first use.
func (c *textureCache) load(ref ImageRef) (Texture, error) {
	if e, ok := c.entries[ref]; ok {
		return e.tex, e.err
	}
	tex, err := c.backend.LoadTexture(ref)
	if err != nil {
		log.Warn("texture load failed", "ref", truncateRef(ref), "error", err)
		tex = nil
	}
	c.entries[ref] = textureEntry{tex: tex, err: err}
	return tex, err
}

// bind resolves ref, substituting fallback when ref is empty or fails to
// load. If the fallback fails as well the binding has no texture.
func (c *textureCache) bind(ref, fallback ImageRef) TextureBinding {
	if ref != "" {
		if tex, err := c.load(ref); err == nil {
			return TextureBinding{Ref: ref, Texture: tex}
		}
	}
	if fallback == "" || fallback == ref {
		return TextureBinding{Ref: ref}
	}
	tex, err := c.load(fallback)
	if err != nil {
		return TextureBinding{Ref: fallback}
	}
	return TextureBinding{Ref: fallback, Texture: tex}
}

// failed reports whether b holds an asynchronous texture whose load has
// since failed. The cache entry is marked failed so the next bind falls back.
func (c *textureCache) failed(b TextureBinding) bool {
	at, ok := b.Texture.(AsyncTexture)
	if !ok {
		return false
	}
	err := at.Err()
	if err == nil {
		return false
	}
	if e, ok := c.entries[b.Ref]; ok && e.err == nil {
		log.Warn("texture load failed", "ref", truncateRef(b.Ref), "error", err)
		c.entries[b.Ref] = textureEntry{err: err}
	}
	return true
}

func truncateRef(ref ImageRef) string {
	s := string(ref)
	if len(s) > maxLoggedRef {
		return s[:maxLoggedRef] + "..."
	}
	return s
}
