package service

import (
	"fmt"
	"io"

	"scanmyride/pkg/models"
	"scanmyride/pkg/sticker"
)

// ExportSticker writes the print PNG for p and returns the download file name.
// Profiles without a uniqueId have nothing to encode and are refused.
func ExportSticker(w io.Writer, publicBase string, p models.VehicleProfile, scale int) (string, error) {
	if !p.HasPublicURL() {
		return "", ErrNoPublicID
	}
	card := sticker.Card{
		URL:   models.PublicURL(publicBase, p.UniqueID),
		Color: p.ThemeColor,
	}
	if err := sticker.Export(w, card, scale); err != nil {
		return "", fmt.Errorf("render sticker: %w", err)
	}
	return sticker.FileName(p.UniqueID), nil
}

// PreviewSticker writes the on-screen card for p.
func PreviewSticker(w io.Writer, publicBase string, p models.VehicleProfile) error {
	if !p.HasPublicURL() {
		return ErrNoPublicID
	}
	card := sticker.Card{
		URL:   models.PublicURL(publicBase, p.UniqueID),
		Color: p.ThemeColor,
	}
	if err := sticker.Preview(w, card); err != nil {
		return fmt.Errorf("render sticker preview: %w", err)
	}
	return nil
}
