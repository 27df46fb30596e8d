package docpipe

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// ParseDataURL splits a base64 data URL into its media type and decoded
// bytes. Frontends ship canvas frames and picked files in this form.
func ParseDataURL(dataURL string) (data []byte, mediaType string, err error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", fmt.Errorf("not a data URL")
	}
	parts := strings.SplitN(dataURL, ",", 2)
	if len(parts) != 2 {
		return nil, "", fmt.Errorf("malformed data URL")
	}

	header := strings.TrimPrefix(parts[0], "data:")
	mediaType = strings.TrimSuffix(header, ";base64")
	if mediaType == header {
		return nil, "", fmt.Errorf("data URL is not base64 encoded")
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	data, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, "", fmt.Errorf("decode data URL: %w", err)
	}
	return data, mediaType, nil
}

// BuildDataURL is the inverse of ParseDataURL.
func BuildDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// MediaTypeForPath guesses the image media type from a file extension.
func MediaTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "image/png"
	}
}
