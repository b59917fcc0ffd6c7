package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
)

// Minimal PNG signature; any non-document binary works here.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestTextExtractor_PlainText(t *testing.T) {
	extractor := NewTextExtractor(logger.Nop())

	text, err := extractor.Extract(context.Background(), &models.CVFile{
		Name: "cv.txt",
		Data: []byte("  Jane Doe  \n\n\n  Seoul National University\n"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSeoul National University", text)
}

func TestTextExtractor_PDF(t *testing.T) {
	extractor := NewTextExtractor(logger.Nop())
	data := buildPDF(t, "Jane Doe", "PhD in Computer Science")
	require.Equal(t, MimePDF, DetectMIME(data))

	text, err := extractor.Extract(context.Background(), &models.CVFile{Name: "cv.pdf", Data: data})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nPhD in Computer Science", text)
}

func TestTextExtractor_DOCX(t *testing.T) {
	extractor := NewTextExtractor(logger.Nop())
	data := buildDOCX(t, "Jane Doe", "PhD &amp; MSc")
	require.Equal(t, MimeDOCX, DetectMIME(data))

	text, err := extractor.Extract(context.Background(), &models.CVFile{Name: "cv.docx", Data: data})

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nPhD & MSc", text)
}

func TestTextExtractor_EmptyFile(t *testing.T) {
	extractor := NewTextExtractor(logger.Nop())

	text, err := extractor.Extract(context.Background(), &models.CVFile{Name: "cv.txt", Data: []byte{}})

	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestTextExtractor_Errors(t *testing.T) {
	extractor := NewTextExtractor(logger.Nop())

	t.Run("nil file", func(t *testing.T) {
		_, err := extractor.Extract(context.Background(), nil)
		assert.ErrorIs(t, err, errNoFile)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := extractor.Extract(context.Background(), &models.CVFile{Name: "cv.png", Data: pngHeader})
		assert.ErrorIs(t, err, errUnsupportedType)
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		_, err := extractor.Extract(context.Background(), &models.CVFile{Name: "cv.pdf", Data: []byte("%PDF-1.4\ngarbage")})
		assert.Error(t, err)
	})
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, MimeText, DetectMIME([]byte("hello world")))
	assert.Equal(t, MimePDF, DetectMIME([]byte("%PDF-1.7\n%âãÏÓ\n")))
	assert.Equal(t, "image/png", DetectMIME(pngHeader))
}

func TestDocxPlainText(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Jane</w:t></w:r><w:r><w:tab/><w:t>Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>PhD candidate</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := docxPlainText(body)

	require.NoError(t, err)
	assert.Equal(t, "Jane\tDoe\nPhD candidate", CleanText(text))
}

// buildPDF writes a single-page PDF with one text object per line.
func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()

	var content strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", 720-i*20, line)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return buf.Bytes()
}

// buildDOCX zips the minimal WordprocessingML parts, one paragraph per
// line. Lines are inserted as-is, so XML entities must be escaped.
func buildDOCX(t *testing.T, lines ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", line)
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(part.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}
