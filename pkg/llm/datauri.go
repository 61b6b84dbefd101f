package llm

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
)

var imageFormats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
}

var ErrUnsupportedImage = errors.Errorf("unsupported image extension")

var ErrNotDataURI = errors.Errorf("not a base64 data uri")

// ImageFormat maps a file extension onto the image subtype used in data URIs.
func ImageFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := imageFormats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, filepath.Ext(path))
	}
	return format, nil
}

// DataURI encodes b as data:image/<format>;base64,<payload>.
func DataURI(format string, b []byte) string {
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// FileDataURI reads the image at path into a data URI.
// The extension is checked before the file is read.
func FileDataURI(path string) (string, error) {
	format, err := ImageFormat(path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DataURI(format, b), nil
}

// ParseDataURI splits a base64 data URI into its media type and still-encoded payload.
func ParseDataURI(uri string) (mediaType string, payload string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrNotDataURI
	}
	mediaType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", "", ErrNotDataURI
	}
	return mediaType, payload, nil
}
