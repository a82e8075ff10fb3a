package sticker

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
)

func TestRenderLayout(t *testing.T) {
	img, err := Render(Card{URL: "https://scanmyride.test/p/abc", Color: "#ff0000"}, 1, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("expected %dx%d, got %dx%d", Width, Height, b.Dx(), b.Dy())
	}
	if a := img.RGBAAt(0, 0).A; a != 0 {
		t.Fatalf("expected transparent corner, got alpha %d", a)
	}
	if got := img.RGBAAt(10, 190); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Fatalf("expected the card colour beside the panel, got %v", got)
	}
	if got := img.RGBAAt(150, 80); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("expected the white panel above the code, got %v", got)
	}

	dark := 0
	for y := 110; y < 270; y++ {
		for x := 70; x < 230; x++ {
			if img.RGBAAt(x, y).R < 0x40 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("expected QR modules in the panel")
	}
}

func TestExportScalesAndEncodes(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, Card{URL: "https://scanmyride.test/p/abc"}, 2); err != nil {
		t.Fatalf("export: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 760 {
		t.Fatalf("expected 600x760, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, _ := img.At(20, 380).RGBA()
	if r>>8 != 0xf4 || g>>8 != 0xb0 || b>>8 != 0x0b {
		t.Fatalf("expected the default colour, got %x %x %x", r>>8, g>>8, b>>8)
	}
}

func TestPreviewAddsGloss(t *testing.T) {
	plain, _ := Render(Card{URL: "x", Color: "#000000"}, 1, false)
	glossy, _ := Render(Card{URL: "x", Color: "#000000"}, 1, true)
	if plain.RGBAAt(30, 30) == glossy.RGBAAt(30, 30) {
		t.Fatal("expected the gloss to lighten the top-left of the card")
	}
	if plain.RGBAAt(290, 370) != glossy.RGBAAt(290, 370) {
		t.Fatal("expected no gloss in the bottom-right")
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	if _, err := Render(Card{}, 1, false); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
	if _, err := Render(Card{URL: "x"}, 0, false); err == nil {
		t.Fatal("expected an error for scale 0")
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"#f4b00b": {R: 0xf4, G: 0xb0, B: 0x0b, A: 0xff},
		"#fff":    {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		"red":     {R: 0xf4, G: 0xb0, B: 0x0b, A: 0xff},
		"":        {R: 0xf4, G: 0xb0, B: 0x0b, A: 0xff},
	}
	for in, expect := range tests {
		if got := ParseColor(in); got != expect {
			t.Errorf("ParseColor(%q): expected %v, got %v", in, expect, got)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("abc123"); got != "ScanMyRide-Sticker-abc123.png" {
		t.Fatalf("unexpected name %q", got)
	}
}
