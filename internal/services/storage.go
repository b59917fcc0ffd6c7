package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"alfredoptarigan/research-advisor/internal/models"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// UploadReader turns a multipart upload into an in-memory CVFile. Uploads are
// never written to disk.
type UploadReader interface {
	ReadCV(file *multipart.FileHeader) (*models.CVFile, error)
	MaxFileSize() int64
}

type uploadReader struct {
	maxFileSize       int64
	allowedExtensions map[string]struct{}
}

func NewUploadReader(maxFileSize int64, allowedExtensions []string) UploadReader {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	return &uploadReader{
		maxFileSize:       maxFileSize,
		allowedExtensions: allowed,
	}
}

func (u *uploadReader) MaxFileSize() int64 {
	return u.maxFileSize
}

// ReadCV implements UploadReader. A nil header yields a nil file so the
// orchestrator can reject the request uniformly.
func (u *uploadReader) ReadCV(file *multipart.FileHeader) (*models.CVFile, error) {
	if file == nil {
		return nil, nil
	}

	// Validate file extension
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(u.allowedExtensions) > 0 {
		if _, ok := u.allowedExtensions[ext]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
		}
	}

	if u.maxFileSize > 0 && file.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, file.Size, u.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &models.CVFile{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
