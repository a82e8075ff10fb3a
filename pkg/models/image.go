package models

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

type ImageKind int

const (
	ImageNone ImageKind = iota
	// ImageStored is a path relative to the API's upload root.
	ImageStored
	ImageURL
	ImageDataURI
	// ImagePendingFile is a local selection that has not been uploaded yet.
	ImagePendingFile
)

func (k ImageKind) String() string {
	switch k {
	case ImageStored:
		return "stored"
	case ImageURL:
		return "url"
	case ImageDataURI:
		return "dataUri"
	case ImagePendingFile:
		return "pendingFile"
	default:
		return "none"
	}
}

type PendingFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type Image struct {
	Kind  ImageKind
	Value string
	File  *PendingFile
}

// ParseImage classifies a value received from the API. Only a parsed http(s)
// URL with a host counts as absolute, so stored paths that merely start with
// "http" stay relative.
func ParseImage(raw string) Image {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Image{}
	}
	u, err := url.Parse(raw)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "data":
			return Image{Kind: ImageDataURI, Value: raw}
		case "http", "https":
			if u.Host != "" {
				return Image{Kind: ImageURL, Value: raw}
			}
		}
	}
	return Image{Kind: ImageStored, Value: raw}
}

func PendingImage(f PendingFile) Image {
	return Image{Kind: ImagePendingFile, Value: f.Name, File: &f}
}

func (i Image) IsZero() bool {
	return i.Kind == ImageNone
}

// Preview resolves the image to something a viewer can load. Stored paths are
// joined to apiBase; pending files become data URIs.
func (i Image) Preview(apiBase string) string {
	switch i.Kind {
	case ImageURL, ImageDataURI:
		return i.Value
	case ImageStored:
		return strings.TrimRight(apiBase, "/") + "/" + strings.TrimLeft(i.Value, "/")
	case ImagePendingFile:
		if i.File == nil {
			return ""
		}
		ct := i.File.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(i.File.Data)
	}
	return ""
}

// MarshalJSON emits the wire string. Pending files have no wire form.
func (i Image) MarshalJSON() ([]byte, error) {
	if i.Kind == ImagePendingFile {
		return json.Marshal("")
	}
	return json.Marshal(i.Value)
}

func (i *Image) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*i = Image{}
		return nil
	}
	*i = ParseImage(*s)
	return nil
}
