package sticker

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type rotation int

const (
	rotateNone rotation = iota
	rotateCW
	rotateCCW
)

// glyphs renders text in the 7x13 bitmap face and returns its coverage mask.
func glyphs(text string) *image.Alpha {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face, Src: image.Opaque}
	w := d.MeasureString(text).Ceil()
	m := image.NewAlpha(image.Rect(0, 0, w, face.Height))
	d.Dst = m
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(text)
	return m
}

func rotate(m *image.Alpha, r rotation) *image.Alpha {
	if r == rotateNone {
		return m
	}
	b := m.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := m.AlphaAt(b.Min.X+x, b.Min.Y+y)
			if r == rotateCW {
				out.SetAlpha(b.Dy()-1-y, x, a)
			} else {
				out.SetAlpha(y, b.Dx()-1-x, a)
			}
		}
	}
	return out
}

// paint scales mask into dst so that it fills r, then fills it with c.
func paint(dst draw.Image, r image.Rectangle, mask *image.Alpha, c color.Color) {
	if r.Empty() {
		return
	}
	scaled := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, scaled, image.Point{}, draw.Over)
}

// drawText draws a horizontal line of text of the given height, centred on cx.
func drawText(dst draw.Image, text string, cx, top, height int, c color.Color, r rotation) {
	m := rotate(glyphs(text), r)
	w := m.Bounds().Dx() * height / m.Bounds().Dy()
	paint(dst, image.Rect(cx-w/2, top, cx-w/2+w, top+height), m, c)
}

// drawTextVertical draws rotated text whose line height becomes its width,
// centred on (cx, cy).
func drawTextVertical(dst draw.Image, text string, cx, cy, height int, c color.Color, r rotation) {
	m := rotate(glyphs(text), r)
	length := m.Bounds().Dy() * height / m.Bounds().Dx()
	paint(dst, image.Rect(cx-height/2, cy-length/2, cx-height/2+height, cy-length/2+length), m, c)
}
