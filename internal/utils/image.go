package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidImagePayload = errors.New("invalid base64 image payload")

// ParseBase64Image decodes a data-URI image payload of the form
// "data:image/png;base64,...." and returns the raw bytes and content type.
// A bare base64 string without the prefix is accepted and defaults to JPEG.
func ParseBase64Image(payload string) ([]byte, string, error) {
	if payload == "" {
		return nil, "", ErrInvalidImagePayload
	}

	contentType := "image/jpeg"
	data := payload
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", ErrInvalidImagePayload
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		meta = strings.TrimSuffix(meta, ";base64")
		if meta != "" {
			contentType = meta
		}
		data = parts[1]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", ErrInvalidImagePayload
	}
	if len(raw) == 0 {
		return nil, "", ErrInvalidImagePayload
	}
	return raw, contentType, nil
}

// ImageExtension maps a content type to a file extension for object keys.
func ImageExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
