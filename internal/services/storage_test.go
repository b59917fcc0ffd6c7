package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("cv", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["cv"][0]
}

func TestUploadReader_ReadCV(t *testing.T) {
	reader := NewUploadReader(64, []string{".pdf", "txt", " .DOCX "})

	t.Run("reads allowed file", func(t *testing.T) {
		file, err := reader.ReadCV(fileHeader(t, "Resume.TXT", []byte("Jane Doe")))

		require.NoError(t, err)
		assert.Equal(t, "Resume.TXT", file.Name)
		assert.Equal(t, []byte("Jane Doe"), file.Data)
	})

	t.Run("missing upload", func(t *testing.T) {
		file, err := reader.ReadCV(nil)

		assert.NoError(t, err)
		assert.Nil(t, file)
	})

	t.Run("extension not allowed", func(t *testing.T) {
		_, err := reader.ReadCV(fileHeader(t, "photo.png", []byte("png")))

		assert.ErrorIs(t, err, ErrExtensionNotAllowed)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := reader.ReadCV(fileHeader(t, "cv.pdf", bytes.Repeat([]byte("a"), 65)))

		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("docx allowed after normalisation", func(t *testing.T) {
		_, err := reader.ReadCV(fileHeader(t, "cv.docx", []byte("x")))

		assert.NoError(t, err)
	})
}
