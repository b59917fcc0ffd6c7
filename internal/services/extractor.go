package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var (
	errNoFile          = errors.New("no file provided")
	errUnsupportedType = errors.New("unsupported file type")
)

// TextExtractor turns an uploaded document into plain text. An empty string
// is a valid result.
type TextExtractor interface {
	Extract(ctx context.Context, file *models.CVFile) (string, error)
}

type textExtractor struct {
	log *logger.Logger
}

func NewTextExtractor(log *logger.Logger) TextExtractor {
	return &textExtractor{log: log.WithComponent("extractor")}
}

// DetectMIME sniffs the content type of data, ignoring charset parameters.
func DetectMIME(data []byte) string {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is(MimePDF):
		return MimePDF
	case mtype.Is(MimeDOCX):
		return MimeDOCX
	case mtype.Is(MimeText):
		return MimeText
	}
	return strings.SplitN(mtype.String(), ";", 2)[0]
}

// Extract implements TextExtractor.
func (e *textExtractor) Extract(ctx context.Context, file *models.CVFile) (string, error) {
	if file == nil {
		return "", errNoFile
	}
	if len(file.Data) == 0 {
		return "", nil
	}

	mime := DetectMIME(file.Data)

	var (
		text string
		err  error
	)
	switch mime {
	case MimePDF:
		text, err = e.extractPDF(ctx, file.Data)
	case MimeDOCX:
		text, err = extractDOCX(file.Data)
	case MimeText:
		text = string(file.Data)
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	e.log.Debug().
		Str("file", file.Name).
		Str("mime", mime).
		Int("chars", len(text)).
		Msg("text extracted")

	return text, nil
}

func (e *textExtractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip the unreadable page, keep the rest
			e.log.Warn().Err(err).Int("page", pageIndex).Msg("failed to read PDF page")
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent())
}

// docxPlainText strips WordprocessingML markup, one line per paragraph.
func docxPlainText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var textBuilder strings.Builder
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read docx body: %w", err)
		}

		switch t := token.(type) {
		case xml.CharData:
			textBuilder.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				textBuilder.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				textBuilder.WriteString("\n")
			}
		}
	}

	return textBuilder.String(), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
