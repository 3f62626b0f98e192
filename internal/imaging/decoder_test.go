package imaging

import (
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestScaleFactor(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, dstW, dstH int
		want                   int
	}{
		{name: "Same size", srcW: 100, srcH: 100, dstW: 100, dstH: 100, want: 1},
		{name: "Target larger than source", srcW: 40, srcH: 30, dstW: 100, dstH: 100, want: 1},
		{name: "Width dominates", srcW: 400, srcH: 200, dstW: 100, dstH: 100, want: 4},
		{name: "Height dominates", srcW: 200, srcH: 900, dstW: 100, dstH: 100, want: 9},
		{name: "Floored", srcW: 250, srcH: 250, dstW: 100, dstH: 100, want: 2},
		{name: "Non-positive target", srcW: 250, srcH: 250, dstW: 0, dstH: 100, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaleFactor(tt.srcW, tt.srcH, tt.dstW, tt.dstH))
		})
	}
}

func TestDecoder_Decode(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 400, 200)
	small := writePNG(t, dir, "small.png", 30, 20)

	garbage := filepath.Join(dir, "garbage.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a jpeg"), 0o600))

	truncated := filepath.Join(dir, "truncated.png")
	data, err := os.ReadFile(wide)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(truncated, data[:len(data)/2], 0o600))

	tests := []struct {
		name      string
		locator   string
		w, h      int
		wantSize  image.Point
		wantErrIs error
	}{
		{name: "Downsampled by largest factor", locator: wide, w: 100, h: 100, wantSize: image.Pt(100, 50)},
		{name: "Never upscaled", locator: small, w: 100, h: 100, wantSize: image.Pt(30, 20)},
		{name: "Missing file", locator: filepath.Join(dir, "missing.jpg"), w: 100, h: 100, wantErrIs: ErrDecode},
		{name: "Not an image", locator: garbage, w: 100, h: 100, wantErrIs: ErrDecode},
		{name: "Truncated image", locator: truncated, w: 100, h: 100, wantErrIs: ErrDecode},
		{name: "Empty locator", locator: "", w: 100, h: 100, wantErrIs: ErrDecode},
		{name: "Invalid target", locator: wide, w: 0, h: 100, wantErrIs: ErrInvalidTarget},
	}

	d := NewDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := d.Decode(context.Background(), tt.locator, tt.w, tt.h)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, img)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, img.Bounds().Size())
		})
	}
}

// writeForgedPNG copies a real PNG and rewrites its IHDR to claim w x h,
// leaving the small pixel stream behind it.
func writeForgedPNG(t *testing.T, dir, name string, w, h uint32) string {
	t.Helper()
	data, err := os.ReadFile(writePNG(t, dir, "seed-"+name, 4, 4))
	require.NoError(t, err)
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDecoder_PixelBudget(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 400, 200)
	huge := writeForgedPNG(t, dir, "huge.png", 100_000, 100_000)

	cfg, _, err := image.DecodeConfig(mustOpen(t, huge))
	require.NoError(t, err)
	require.Equal(t, 100_000, cfg.Width)

	tests := []struct {
		name      string
		decoder   *Decoder
		locator   string
		wantErrIs error
	}{
		{name: "Header over default budget", decoder: NewDecoder(), locator: huge, wantErrIs: ErrDecode},
		{name: "Over configured budget", decoder: NewDecoder(WithMaxPixels(1000)), locator: wide, wantErrIs: ErrDecode},
		{name: "Exactly at budget", decoder: NewDecoder(WithMaxPixels(400 * 200)), locator: wide},
		{name: "Non-positive budget keeps default", decoder: NewDecoder(WithMaxPixels(0)), locator: wide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.decoder.Decode(context.Background(), tt.locator, 100, 100)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.Contains(t, err.Error(), "pixel limit")
				assert.Nil(t, img)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, image.Pt(100, 50), img.Bounds().Size())
		})
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestDecoder_DecodeCancelled(t *testing.T) {
	path := writePNG(t, t.TempDir(), "photo.png", 64, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img, err := NewDecoder().Decode(ctx, path, 16, 16)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, img)
}

func TestDecoder_ConcurrentUse(t *testing.T) {
	path := writePNG(t, t.TempDir(), "photo.png", 320, 160)
	d := NewDecoder()

	var wg sync.WaitGroup
	sizes := make([]image.Point, 16)
	errs := make([]error, 16)
	for i := range sizes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := d.Decode(context.Background(), path, 32, 32)
			errs[i] = err
			if img != nil {
				sizes[i] = img.Bounds().Size()
			}
		}()
	}
	wg.Wait()

	for i := range sizes {
		require.NoError(t, errs[i])
		assert.Equal(t, image.Pt(32, 16), sizes[i])
	}
}

func TestPlaceholder(t *testing.T) {
	img := Placeholder(16, 16)
	assert.Equal(t, image.Pt(16, 16), img.Bounds().Size())
	assert.Equal(t, placeholderBackground, img.RGBAAt(0, 0))
	assert.Equal(t, placeholderFigure, img.RGBAAt(8, 6))

	assert.Equal(t, image.Pt(1, 1), Placeholder(0, -3).Bounds().Size())
}
