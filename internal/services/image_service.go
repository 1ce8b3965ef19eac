package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bux-api/internal/pkg/errors"
)

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"png":  true,
}

// ImageInfo describes one stored image file.
type ImageInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// ImageService stores uploaded images as-is below a root directory.
type ImageService interface {
	Save(ctx context.Context, name string, src io.Reader) (string, error)
	List(ctx context.Context) ([]ImageInfo, error)
	Stat(ctx context.Context, name string) (*ImageInfo, error)
	Delete(ctx context.Context, name string) error
	// URL is the public address of a stored image, or "" when it has to be
	// derived from the incoming request.
	URL(name string) string
}

type fileImageService struct {
	root     string
	baseURL  string
	maxBytes int64
}

// NewImageService stores images on the local filesystem below root,
// creating it if needed. Files are served statically under /images/.
func NewImageService(root, baseURL string, maxBytes int64) (ImageService, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}
	return &fileImageService{root: root, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *fileImageService) URL(name string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/" + name
}

func (s *fileImageService) Save(ctx context.Context, name string, src io.Reader) (string, error) {
	clean, err := cleanImageName(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create image file")
	}
	defer os.Remove(tmp.Name())

	// Read one byte past the limit to detect oversize uploads.
	written, err := io.Copy(tmp, io.LimitReader(src, s.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return "", errors.Wrap(err, "failed to write image file")
	}
	if closeErr != nil {
		return "", errors.Wrap(closeErr, "failed to write image file")
	}
	if written > s.maxBytes {
		return "", errors.New(errors.ErrInvalidInput, fmt.Sprintf("Image file size exceeds the limit of %d bytes.", s.maxBytes))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, clean)); err != nil {
		return "", errors.Wrap(err, "failed to store image file")
	}
	return clean, nil
}

func (s *fileImageService) List(ctx context.Context) ([]ImageInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image directory")
	}

	images := make([]ImageInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, ImageInfo{Name: entry.Name(), Size: info.Size(), ModifiedAt: info.ModTime()})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

func (s *fileImageService) Stat(ctx context.Context, name string) (*ImageInfo, error) {
	clean, err := cleanImageName(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrNotFound, "No such image")
		}
		return nil, errors.Wrap(err, "failed to stat image")
	}
	return &ImageInfo{Name: clean, Size: info.Size(), ModifiedAt: info.ModTime()}, nil
}

func (s *fileImageService) Delete(ctx context.Context, name string) error {
	clean, err := cleanImageName(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, clean)); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrNotFound, "No such image")
		}
		return errors.Wrap(err, "failed to delete image")
	}
	return nil
}

// Extension returns the lower-cased text after the last dot.
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return imageExtensions[Extension(name)]
}

// cleanImageName keeps the base name only, so callers cannot escape the root.
func cleanImageName(name string) (string, error) {
	base := strings.ToLower(filepath.Base(strings.TrimSpace(name)))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) || strings.HasPrefix(base, ".") {
		return "", errors.New(errors.ErrInvalidInput, "Invalid image name.")
	}
	if !IsImage(base) {
		return "", errors.New(errors.ErrInvalidInput, fmt.Sprintf("Unsupported image file type: %s", Extension(base)))
	}
	return base, nil
}
