package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/sevigo/pocket-points/internal/imaging"
)

// thumbSurface draws whatever the coordinator binds to a row as half-block
// terminal cells, two pixels per cell. It is only touched from the update loop.
type thumbSurface struct {
	width, height int
	placeholder   []string
	lines         []string
}

func newThumbSurface(width, height int) *thumbSurface {
	placeholder := renderHalfBlocks(imaging.Placeholder(width, height), width, height)
	return &thumbSurface{
		width:       width,
		height:      height,
		placeholder: placeholder,
		lines:       placeholder,
	}
}

// SetImage shows img shrunk to fit the surface. Decoded photos can be up to
// twice the requested size on either axis.
func (s *thumbSurface) SetImage(img image.Image) {
	s.lines = renderHalfBlocks(fitImage(img, s.width, s.height), s.width, s.height)
}

func (s *thumbSurface) SetDefaultImage() {
	s.lines = s.placeholder
}

func (s *thumbSurface) View() string {
	return strings.Join(s.lines, "\n")
}

// fitImage scales img down to fit within width x height, keeping its aspect
// ratio. Images that already fit are returned as is.
func fitImage(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= width && h <= height {
		return img
	}
	dw, dh := width, max(1, h*width/w)
	if w*height < h*width {
		dw, dh = max(1, w*height/h), height
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// renderHalfBlocks maps img onto a width x ceil(height/2) grid of cells.
// Pixels outside the image, or fully transparent, are left blank.
func renderHalfBlocks(img image.Image, width, height int) []string {
	rows := (height + 1) / 2
	lines := make([]string, 0, rows)
	bounds := img.Bounds()

	for r := range rows {
		var sb strings.Builder
		for x := range width {
			px := bounds.Min.X + x
			top, hasTop := pixelColor(img, px, bounds.Min.Y+2*r)
			bottom, hasBottom := pixelColor(img, px, bounds.Min.Y+2*r+1)

			switch {
			case hasTop && hasBottom:
				sb.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
			case hasTop:
				sb.WriteString(lipgloss.NewStyle().Foreground(top).Render("▀"))
			case hasBottom:
				sb.WriteString(lipgloss.NewStyle().Foreground(bottom).Render("▄"))
			default:
				sb.WriteByte(' ')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func pixelColor(img image.Image, x, y int) (lipgloss.Color, bool) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return "", false
	}
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return "", false
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)), true
}
