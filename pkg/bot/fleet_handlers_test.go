package bot

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadPicture(t *testing.T) {
	data, err := readPicture(bytes.NewReader(make([]byte, maxImageBytes)))
	if err != nil || len(data) != maxImageBytes {
		t.Fatalf("expected a full %d byte picture, got %d %v", maxImageBytes, len(data), err)
	}

	data, err = readPicture(bytes.NewReader(make([]byte, maxImageBytes+1)))
	if !errors.Is(err, errPictureTooLarge) || data != nil {
		t.Fatalf("expected errPictureTooLarge, got %d bytes, %v", len(data), err)
	}
}
