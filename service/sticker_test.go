package service

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"scanmyride/pkg/models"
)

func TestExportStickerNeedsPublicID(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ExportSticker(&buf, "https://scanmyride.test", models.NewBlankProfile(), 4); !errors.Is(err, ErrNoPublicID) {
		t.Fatalf("expected ErrNoPublicID, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("nothing should be written")
	}
}

func TestExportSticker(t *testing.T) {
	var buf bytes.Buffer
	name, err := ExportSticker(&buf, "https://scanmyride.test", car("p1", "abc123", "Supra"), 4)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != "ScanMyRide-Sticker-abc123.png" {
		t.Fatalf("unexpected file name %q", name)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1200 || b.Dy() != 1520 {
		t.Fatalf("expected 1200x1520, got %dx%d", b.Dx(), b.Dy())
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatal("expected a transparent corner")
	}
}
