package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
)

// MaxCoverSize caps uploaded cover images at 5 MB.
const MaxCoverSize = 5 << 20

var allowedCoverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ProcessCoverUpload validates an uploaded cover image and returns it as a
// base64 string ready for storage. The content type is sniffed from the
// first bytes rather than trusted from the client, and the payload must
// decode as an actual image.
func ProcessCoverUpload(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxCoverSize {
		return "", fmt.Errorf("cover image too large (%d bytes, max %d)", fileHeader.Size, MaxCoverSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded cover: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxCoverSize+1))
	if err != nil {
		return "", fmt.Errorf("read uploaded cover: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("uploaded cover is empty")
	}
	if len(data) > MaxCoverSize {
		return "", fmt.Errorf("cover image too large (max %d bytes)", MaxCoverSize)
	}

	contentType := http.DetectContentType(data)
	if !allowedCoverTypes[contentType] {
		return "", fmt.Errorf("unsupported cover type %s (JPEG, PNG and GIF are allowed)", contentType)
	}

	// Decoding rejects corrupt files that merely carry an image signature.
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("decode cover image: %w", err)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
