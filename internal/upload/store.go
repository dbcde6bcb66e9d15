package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxFileSize = 10 * 1024 * 1024 // 10 MB

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrInvalidMimeType = errors.New("file type not allowed")
)

// AllowedImageTypes defines which image types are accepted for avatars and
// cover images.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store saves images to local disk and returns their public URL.
// Simple: sniff type -> write file -> return URL.
type Store struct {
	baseDir    string // absolute or relative path to uploads dir
	staticBase string // URL prefix for serving files
}

func NewStore(baseDir, staticBase string) *Store {
	return &Store{baseDir: baseDir, staticBase: staticBase}
}

// BaseDir exposes the on-disk directory so the router can mount it as static.
func (s *Store) BaseDir() string { return s.baseDir }

// SaveImage writes the uploaded image under a uuid name and returns the URL
// it will be served from.
func (s *Store) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size == 0 {
		return "", ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	// Detect MIME type from the first 512 bytes, never trust the extension.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedImageTypes[mimeType] {
		return "", ErrInvalidMimeType
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	ext := extensionFor(mimeType)
	name := uuid.NewString() + ext
	dstPath := filepath.Join(s.baseDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.staticBase + "/" + name, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
