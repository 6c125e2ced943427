package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum upload size (10MB)
	MaxImageSize = 10 * 1024 * 1024

	projectImageDir    = "projects"
	projectImageWidth  = 1200
	projectImageHeight = 800
)

var ErrUnsupportedImage = errors.New("unsupported image format. Allowed formats: jpg, jpeg, png, gif")

var imageFormats = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
	".gif":  imaging.GIF,
}

// ImageStore writes uploaded images under a base directory served at /uploads
type ImageStore struct {
	baseDir string
}

func NewImageStore(baseDir string) *ImageStore {
	return &ImageStore{baseDir: baseDir}
}

// InitializeStorage creates the directories uploads are written to
func (s *ImageStore) InitializeStorage() error {
	dir := filepath.Join(s.baseDir, projectImageDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// SaveProjectImage decodes an upload, shrinks it to fit 1200x800 and writes
// it under a fresh name. It returns the public URL.
func (s *ImageStore) SaveProjectImage(data []byte, filename string) (string, error) {
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", MaxImageSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := imageFormats[ext]
	if !ok {
		return "", ErrUnsupportedImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = fitWithin(img, projectImageWidth, projectImageHeight)

	if err := s.InitializeStorage(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	fullPath := filepath.Join(s.baseDir, projectImageDir, name)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", baseURL, projectImageDir, name), nil
}

// RemoveUpload deletes a file previously returned by SaveProjectImage. URLs
// that do not point into the upload directory are ignored.
func (s *ImageStore) RemoveUpload(url string) error {
	if !strings.HasPrefix(url, baseURL+"/") {
		return nil
	}
	rel := filepath.Clean(strings.TrimPrefix(url, baseURL+"/"))
	if strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fitWithin only ever shrinks
func fitWithin(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return img
	}
	return imaging.Fit(img, width, height, imaging.Lanczos)
}
