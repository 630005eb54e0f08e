package ebitenbackend

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp"

	"github.com/phanxgames/evergreen"
	"github.com/phanxgames/evergreen/internal/log"
)

// maxRemoteImage caps the size of a fetched image.
const maxRemoteImage = 32 << 20

var errNotDataURI = errors.New("not a data URI")

// remoteTexture is an image fetched in the background. It draws nothing
// until the download finishes. A failed download reports its error through
// Err so the scene can bind a fallback.
type remoteTexture struct {
	mu  sync.Mutex
	src image.Image
	img *ebiten.Image
	err error
}

func (t *remoteTexture) set(src image.Image, err error) {
	t.mu.Lock()
	t.src, t.err = src, err
	t.mu.Unlock()
}

// Err returns the download error, or nil while loading or after success.
func (t *remoteTexture) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// image returns the uploaded texture, uploading on the first call after the
// download completes. Must be called from the draw goroutine.
func (t *remoteTexture) image() *ebiten.Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.img == nil && t.src != nil {
		t.img = ebiten.NewImageFromImage(t.src)
		t.src = nil
	}
	return t.img
}

// LoadTexture loads data: URIs and local files immediately, and http(s)
// URLs in the background so a slow network never stalls a frame.
func (r *Renderer) LoadTexture(ref evergreen.ImageRef) (evergreen.Texture, error) {
	s := string(ref)
	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		t := &remoteTexture{}
		go func() {
			img, err := fetchImage(r.client, s)
			if err != nil {
				log.Debug("remote texture failed", "url", s, "err", err)
			}
			t.set(img, err)
		}()
		return t, nil
	case strings.HasPrefix(s, "data:"):
		img, err := decodeDataURI(s)
		if err != nil {
			return nil, err
		}
		return ebiten.NewImageFromImage(img), nil
	default:
		img, err := decodeFile(s)
		if err != nil {
			return nil, err
		}
		return ebiten.NewImageFromImage(img), nil
	}
}

// textureImage returns the drawable image behind a texture handle, or nil.
func textureImage(tex evergreen.Texture) *ebiten.Image {
	switch t := tex.(type) {
	case *ebiten.Image:
		return t
	case *remoteTexture:
		return t.image()
	}
	return nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(s string) (image.Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URI: missing comma")
	}
	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		raw = b
	} else {
		u, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		raw = []byte(u)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("data URI: decode: %w", err)
	}
	return img, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func fetchImage(client *http.Client, u string) (image.Image, error) {
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get: status %s", resp.Status)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxRemoteImage))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
