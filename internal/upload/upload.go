// Package upload inspects the image a user picked for OCR before it is sent.
package upload

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxSize is the largest file accepted for upload.
const MaxSize = 10 << 20

var (
	ErrNoFile     = errors.New("no file selected")
	ErrNotRegular = errors.New("not a regular file")
	ErrTooLarge   = errors.New("file is too large")
	ErrNotImage   = errors.New("file is not a supported image")
)

// Selection describes a validated image file.
type Selection struct {
	Path   string
	Name   string
	Format string
	Width  int
	Height int
	Size   int64
}

// Inspect resolves path and checks that it names a readable image.
func Inspect(path string) (Selection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Selection{}, ErrNoFile
	}
	resolved, err := expandHome(path)
	if err != nil {
		return Selection{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Selection{}, fmt.Errorf("open %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Selection{}, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if info.Size() > MaxSize {
		return Selection{}, fmt.Errorf("%s is %d bytes (limit %d): %w", path, info.Size(), MaxSize, ErrTooLarge)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return Selection{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Selection{}, fmt.Errorf("%s: %w", path, ErrNotImage)
	}

	return Selection{
		Path:   resolved,
		Name:   filepath.Base(resolved),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   info.Size(),
	}, nil
}

// ContentType returns the MIME type for the decoded format.
func (s Selection) ContentType() string {
	switch s.Format {
	case "jpeg":
		return "image/jpeg"
	case "png", "gif", "bmp", "tiff", "webp":
		return "image/" + s.Format
	default:
		return "application/octet-stream"
	}
}

// Open opens the selected file for reading.
func (s Selection) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// ReadAll reads the selected file, refusing more than MaxSize bytes
// even if the file grew after Inspect.
func (s Selection) ReadAll() ([]byte, error) {
	f, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Name, err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%s grew past %d bytes: %w", s.Name, MaxSize, ErrTooLarge)
	}
	return data, nil
}

// Describe renders a short summary for the status line.
func (s Selection) Describe() string {
	return fmt.Sprintf("%s (%s, %dx%d)", s.Name, s.Format, s.Width, s.Height)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
