// Package sticker rasterizes the printable QR card that links to a public
// profile.
package sticker

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// Card size in base units. Export multiplies every coordinate by the scale.
const (
	Width  = 300
	Height = 380

	cardRadius  = 56
	inset       = 24
	panelTop    = 64
	panelHeight = 252
	panelRadius = 40
	qrSize      = 180

	DefaultColor = "#f4b00b"
)

var (
	textColor = color.RGBA{A: 0xff}
	sideColor = color.RGBA{R: 0xa1, G: 0xa1, B: 0xaa, A: 0xff}
	panelFill = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var ErrEmptyURL = errors.New("sticker: nothing to encode")

type Card struct {
	URL string
	// Color is the card background as #rgb or #rrggbb. Anything else falls
	// back to DefaultColor.
	Color string
}

func FileName(uniqueID string) string {
	return "ScanMyRide-Sticker-" + uniqueID + ".png"
}

// Preview writes the on-screen card at scale 1 with the gloss overlay.
func Preview(w io.Writer, card Card) error {
	img, err := Render(card, 1, true)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Export writes the print card at the given pixel density. Corners outside the
// rounded card stay transparent.
func Export(w io.Writer, card Card, scale int) error {
	img, err := Render(card, scale, false)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func Render(card Card, scale int, gloss bool) (*image.RGBA, error) {
	if strings.TrimSpace(card.URL) == "" {
		return nil, ErrEmptyURL
	}
	if scale < 1 {
		return nil, fmt.Errorf("sticker: invalid scale %d", scale)
	}
	sc := func(v float64) int { return int(math.Round(v * float64(scale))) }

	img := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))

	cardMask := roundRectMask(img.Bounds().Dx(), img.Bounds().Dy(), float64(sc(cardRadius)))
	draw.DrawMask(img, img.Bounds(), image.NewUniform(ParseColor(card.Color)), image.Point{}, cardMask, image.Point{}, draw.Over)

	drawText(img, "scanmyride", Width*scale/2, sc(30), sc(24), textColor, rotateNone)

	panel := image.Rect(sc(inset), sc(panelTop), sc(Width-inset), sc(panelTop+panelHeight))
	panelMask := roundRectMask(panel.Dx(), panel.Dy(), float64(sc(panelRadius)))
	draw.DrawMask(img, panel, image.NewUniform(panelFill), image.Point{}, panelMask, image.Point{}, draw.Over)

	if err := drawQR(img, card.URL, panel, sc(qrSize)); err != nil {
		return nil, err
	}

	midY := sc(panelTop + panelHeight/2)
	drawTextVertical(img, "SCAN ME", panel.Min.X+sc(10), midY, sc(9), sideColor, rotateCCW)
	drawTextVertical(img, "SCAN ME", panel.Max.X-sc(10), midY, sc(9), sideColor, rotateCW)

	drawText(img, "SCAN TO CONTACT", Width*scale/2, sc(324), sc(12), textColor, rotateNone)
	drawText(img, "THE VEHICLE OWNER", Width*scale/2, sc(339), sc(12), textColor, rotateNone)

	if gloss {
		drawGloss(img, cardMask)
	}
	return img, nil
}

func drawQR(dst *image.RGBA, content string, panel image.Rectangle, target int) error {
	code, err := qr.Encode(content, qr.H, qr.Auto)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	modules := code.Bounds().Dx()
	px := target / modules
	if px < 1 {
		return fmt.Errorf("sticker: %d modules do not fit in %dpx", modules, target)
	}
	size := modules * px
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return fmt.Errorf("scale qr: %w", err)
	}
	origin := image.Pt(panel.Min.X+(panel.Dx()-size)/2, panel.Min.Y+(panel.Dy()-size)/2)
	draw.Draw(dst, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))}, scaled, scaled.Bounds().Min, draw.Src)
	return nil
}

// drawGloss lays a faint white diagonal highlight over the card.
func drawGloss(dst *image.RGBA, cardMask *image.Alpha) {
	b := dst.Bounds()
	mask := image.NewAlpha(b)
	w, h := float64(b.Dx()), float64(b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := (float64(x)/w + float64(y)/h) / 2
			g := 1 - t/0.5
			if g <= 0 {
				continue
			}
			cov := float64(cardMask.AlphaAt(x, y).A) / 255
			mask.SetAlpha(x, y, color.Alpha{A: uint8(g * 0.1 * cov * 255)})
		}
	}
	draw.DrawMask(dst, b, image.White, image.Point{}, mask, b.Min, draw.Over)
}

// roundRectMask returns the coverage of a w×h rectangle with rounded corners,
// sampled 4×4 per pixel.
func roundRectMask(w, h int, r float64) *image.Alpha {
	const ss = 4
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	r = math.Min(r, math.Min(float64(w), float64(h))/2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hits := 0
			for sy := 0; sy < ss; sy++ {
				for sx := 0; sx < ss; sx++ {
					px := float64(x) + (float64(sx)+0.5)/ss
					py := float64(y) + (float64(sy)+0.5)/ss
					if insideRoundRect(px, py, float64(w), float64(h), r) {
						hits++
					}
				}
			}
			if hits > 0 {
				m.SetAlpha(x, y, color.Alpha{A: uint8(hits * 255 / (ss * ss))})
			}
		}
	}
	return m
}

func insideRoundRect(x, y, w, h, r float64) bool {
	cx := math.Min(math.Max(x, r), w-r)
	cy := math.Min(math.Max(y, r), h-r)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// ParseColor reads #rgb or #rrggbb.
func ParseColor(s string) color.RGBA {
	c, ok := parseHex(s)
	if !ok {
		c, _ = parseHex(DefaultColor)
	}
	return c
}

func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
