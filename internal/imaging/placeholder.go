package imaging

import (
	"image"
	"image/color"
)

var (
	placeholderBackground = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	placeholderFigure     = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

// Placeholder draws the default contact picture: a light silhouette (head and
// shoulders) on a gray square. Its size also defines the decode target size.
func Placeholder(width, height int) *image.RGBA {
	width, height = max(width, 1), max(height, 1)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	w, h := float64(width), float64(height)
	headX, headY, headR := w/2, h*0.38, min(w, h)*0.22
	bodyX, bodyY, bodyRX, bodyRY := w/2, h*1.02, w*0.4, h*0.36

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			c := placeholderBackground
			if inEllipse(px, py, headX, headY, headR, headR) || inEllipse(px, py, bodyX, bodyY, bodyRX, bodyRY) {
				c = placeholderFigure
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func inEllipse(x, y, cx, cy, rx, ry float64) bool {
	if rx <= 0 || ry <= 0 {
		return false
	}
	dx, dy := (x-cx)/rx, (y-cy)/ry
	return dx*dx+dy*dy <= 1
}
