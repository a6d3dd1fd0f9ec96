package filestore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnknownType is returned when an attachment's MIME type cannot be
// resolved or falls outside the supported image/video/audio classes.
var ErrUnknownType = errors.New("unknown or unsupported mime type")

// DetectMimeType sniffs the MIME type from the payload bytes.
func DetectMimeType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrUnknownType
	}
	detected := mimetype.Detect(data)
	return supported(detected.String())
}

// ParseMimeType resolves a declared MIME type string.
func ParseMimeType(declared string) (string, error) {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return "", ErrUnknownType
	}
	known := mimetype.Lookup(declared)
	if known == nil {
		return "", ErrUnknownType
	}
	return supported(known.String())
}

// Filename derives the deterministic attachment name from the owner's kind
// and id plus the extension registered for the MIME type.
func Filename(ownerKind string, ownerID int64, mimeType string) string {
	ext := ""
	if known := mimetype.Lookup(mimeType); known != nil {
		ext = known.Extension()
	}
	return fmt.Sprintf("%s_%d%s", ownerKind, ownerID, ext)
}

func supported(mimeType string) (string, error) {
	// Parameters like "; charset=..." are irrelevant for the class check.
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch {
	case strings.HasPrefix(mimeType, "image/"),
		strings.HasPrefix(mimeType, "video/"),
		strings.HasPrefix(mimeType, "audio/"):
		return mimeType, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownType, mimeType)
	}
}
