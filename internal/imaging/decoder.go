// Package imaging decodes student photos into thumbnails sized for list rows.
package imaging

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"os"

	// Register the stdlib formats with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	// Register the extended formats with image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the source images a Decoder will fully decode.
const DefaultMaxPixels = 64 << 20

// Decoder reads images from local paths and downsamples them by an integral factor.
// It carries no mutable state, so a single value can serve every worker.
type Decoder struct {
	interp    draw.Interpolator
	maxPixels int64
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithInterpolator overrides the resampling kernel used when shrinking images.
func WithInterpolator(interp draw.Interpolator) Option {
	return func(d *Decoder) {
		if interp != nil {
			d.interp = interp
		}
	}
}

// WithMaxPixels sets the largest width*height accepted before decoding.
// Non-positive values keep the default.
func WithMaxPixels(n int64) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxPixels = n
		}
	}
}

// NewDecoder returns a Decoder that resamples with draw.ApproxBiLinear and
// accepts up to DefaultMaxPixels source pixels by default.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{interp: draw.ApproxBiLinear, maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ScaleFactor returns the integral downsampling factor for a source of srcW x srcH
// displayed at targetW x targetH: max(srcW/targetW, srcH/targetH), floored, at least 1.
func ScaleFactor(srcW, srcH, targetW, targetH int) int {
	if targetW <= 0 || targetH <= 0 {
		return 1
	}
	return max(srcW/targetW, srcH/targetH, 1)
}

// Decode implements core.Decoder. Any failure to read or parse the file is reported
// as ErrDecode and no partial image is returned, as is a source larger than the
// pixel budget, which is rejected from its header alone. The context is checked
// before the file is opened and again after its bounds are read.
func (d *Decoder) Decode(ctx context.Context, locator string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidTarget, width, height)
	}
	if locator == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrDecode)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: reading bounds of %s: %w", ErrDecode, locator, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s has empty bounds", ErrDecode, locator)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > d.maxPixels {
		return nil, fmt.Errorf("%w: %s is %dx%d, over the %d pixel limit", ErrDecode, locator, cfg.Width, cfg.Height, d.maxPixels)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	src, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, locator, err)
	}

	factor := ScaleFactor(cfg.Width, cfg.Height, width, height)
	if factor == 1 {
		return src, nil
	}

	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, max(sb.Dx()/factor, 1), max(sb.Dy()/factor, 1)))
	d.interp.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst, nil
}
