package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coverFileHeader builds a multipart file header carrying the given bytes,
// the way gin hands uploads to handlers.
func coverFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("cover", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["cover"][0]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessCoverUpload(t *testing.T) {
	raw := pngBytes(t)
	fh := coverFileHeader(t, "cover.png", raw)

	encoded, err := ProcessCoverUpload(fh)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestProcessCoverUploadRejectsNonImage(t *testing.T) {
	fh := coverFileHeader(t, "cover.txt", []byte("just some text, not an image"))
	_, err := ProcessCoverUpload(fh)
	assert.Error(t, err)
}

func TestProcessCoverUploadRejectsOversize(t *testing.T) {
	fh := coverFileHeader(t, "cover.png", make([]byte, MaxCoverSize+1))
	_, err := ProcessCoverUpload(fh)
	assert.Error(t, err)
}
