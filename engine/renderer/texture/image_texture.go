package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/MKHenson/trike3d-sub000/common"
	"github.com/MKHenson/trike3d-sub000/engine/renderer/backend"
	"github.com/MKHenson/trike3d-sub000/engine/resource"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageTexture is a 2D texture sourced from a decoded image.
type ImageTexture struct {
	label         string
	source        *image.NRGBA
	mipmaps       bool
	powerOfTwo    bool
	filter        backend.FilterMode
	wrap          backend.WrapMode
	handle        backend.Texture
	requiresBuild bool
}

var _ Texture = &ImageTexture{}

// NewImageTexture creates a texture from an in-memory image.
//
// Parameters:
//   - img: the source image, copied into NRGBA form
//   - options: variadic list of ImageTextureOption functions to configure the texture
//
// Returns:
//   - *ImageTexture: the texture, built on first Compile
func NewImageTexture(img image.Image, options ...ImageTextureOption) *ImageTexture {
	t := &ImageTexture{
		label:         "image",
		source:        imaging.Clone(img),
		wrap:          backend.WrapRepeat,
		requiresBuild: true,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// DecodeImageTexture decodes a PNG, JPEG, BMP, TIFF or WebP stream into a texture.
//
// Parameters:
//   - r: the encoded image
//   - options: variadic list of ImageTextureOption functions to configure the texture
//
// Returns:
//   - *ImageTexture: the texture
//   - error: an error if the image could not be decoded
func DecodeImageTexture(r io.Reader, options ...ImageTextureOption) (*ImageTexture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture image: %w", err)
	}
	common.Logger().Debug("texture: decoded image", "format", format, "size", img.Bounds().Size())
	return NewImageTexture(img, options...), nil
}

// LoadImageTexture reads and decodes an image file into a texture labelled with its path.
//
// Parameters:
//   - path: the image file path
//   - options: variadic list of ImageTextureOption functions to configure the texture
//
// Returns:
//   - *ImageTexture: the texture
//   - error: an error if the file could not be read or decoded
func LoadImageTexture(path string, options ...ImageTextureOption) (*ImageTexture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer f.Close()
	return DecodeImageTexture(f, append([]ImageTextureOption{WithLabel(path)}, options...)...)
}

// Label returns the debug label of the texture.
func (t *ImageTexture) Label() string {
	return t.label
}

// Size returns the dimensions of the source image.
func (t *ImageTexture) Size() (int, int) {
	b := t.source.Bounds()
	return b.Dx(), b.Dy()
}

// SetImage replaces the source image. The previous backend object is released at the next drain.
//
// Parameters:
//   - img: the new source image
func (t *ImageTexture) SetImage(img image.Image) {
	t.source = imaging.Clone(img)
	t.release()
	t.requiresBuild = true
}

func (t *ImageTexture) RequiresBuild() bool {
	return t.requiresBuild
}

func (t *ImageTexture) Handle() backend.Texture {
	return t.handle
}

func (t *ImageTexture) Compile(b backend.Backend, unit int) error {
	if t.requiresBuild {
		if err := t.build(b); err != nil {
			return err
		}
	}
	b.BindTexture(unit, t.handle)
	return nil
}

// Levels returns the texel data uploaded for each mip level, after any power-of-two resize.
//
// Returns:
//   - [][]byte: RGBA8 texel rows per level, level 0 first
//   - int: the width of level 0
//   - int: the height of level 0
func (t *ImageTexture) Levels() ([][]byte, int, int) {
	img := t.source
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if t.powerOfTwo && (!common.IsPowerOfTwo(w) || !common.IsPowerOfTwo(h)) {
		w, h = common.NextPowerOfTwo(w), common.NextPowerOfTwo(h)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	levels := [][]byte{img.Pix}
	if !t.mipmaps {
		return levels, w, h
	}
	lw, lh := w, h
	for lw > 1 || lh > 1 {
		lw, lh = max(lw/2, 1), max(lh/2, 1)
		img = imaging.Resize(img, lw, lh, imaging.Box)
		levels = append(levels, img.Pix)
	}
	return levels, w, h
}

func (t *ImageTexture) build(b backend.Backend) error {
	levels, w, h := t.Levels()
	handle, err := b.CreateTexture(backend.TextureDescriptor{
		Label:     t.label,
		Width:     w,
		Height:    h,
		Format:    backend.FormatRGBA8,
		MipLevels: len(levels),
		Filter:    t.filter,
		Wrap:      t.wrap,
	}, levels)
	if err != nil {
		return fmt.Errorf("failed to create texture %s: %w", t.label, err)
	}
	t.handle = handle
	t.requiresBuild = false
	return nil
}

func (t *ImageTexture) release() {
	if t.handle == 0 {
		return
	}
	h := t.handle
	t.handle = 0
	resource.Enqueue(resource.ReleaseFunc(func(b backend.Backend) {
		b.DeleteTexture(h)
	}))
}

// Dispose queues the backend object for release. The texture rebuilds if compiled again.
func (t *ImageTexture) Dispose() {
	t.release()
	t.requiresBuild = true
}
