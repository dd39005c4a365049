// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded images: decodes, applies EXIF
// orientation, strips metadata by re-encoding, and generates the thumbnail
// sizes used by the gallery and product pages.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/corpcms-go/internal/util"
)

// Standard derivative sizes.
const (
	ThumbWidth  = 400
	ThumbHeight = 300

	// Quality used for JPEG re-encoding.
	originalQuality = 95
	thumbQuality    = 85
)

// Result describes a processed image on disk.
type Result struct {
	Width    int
	Height   int
	MimeType string
	Size     int64
	FilePath string
}

// Processor handles image normalization using pure Go libraries.
type Processor struct {
	uploadDir string
}

// NewProcessor creates an image processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// Process reads an uploaded image, auto-rotates it per its EXIF orientation,
// re-encodes it (dropping metadata), and saves it under subDir/filename
// inside the upload root.
func (p *Processor) Process(reader io.Reader, subDir, filename string) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()

	processed, err := encodeImage(img, format, originalQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	filePath, err := p.save(subDir, filename, processed)
	if err != nil {
		return nil, err
	}

	return &Result{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: formatToMimeType(format),
		Size:     int64(len(processed)),
		FilePath: filePath,
	}, nil
}

// Thumbnail creates a center-cropped thumbnail of a previously saved image
// and writes it under subDir/filename inside the upload root.
func (p *Processor) Thumbnail(sourcePath, subDir, filename string) (*Result, error) {
	img, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening source image: %w", err)
	}

	resized := imaging.Fill(img, ThumbWidth, ThumbHeight, imaging.Center, imaging.Lanczos)

	format := detectFormatFromFilename(filename)
	processed, err := encodeImage(resized, format, thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	filePath, err := p.save(subDir, filename, processed)
	if err != nil {
		return nil, err
	}

	bounds := resized.Bounds()
	return &Result{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: formatToMimeType(format),
		Size:     int64(len(processed)),
		FilePath: filePath,
	}, nil
}

// Dimensions returns the pixel size of an image file without decoding it
// fully.
func (p *Processor) Dimensions(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening image: %w", err)
	}
	defer func() { _ = file.Close() }()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("reading image config: %w", err)
	}

	return config.Width, config.Height, nil
}

// IsImage reports whether data looks like a processable image.
func (p *Processor) IsImage(data []byte) bool {
	return detectFormat(data) != ""
}

// DetectMimeType detects the MIME type of raw data.
func (p *Processor) DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies the EXIF orientation transformation.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image with the given format and quality. WebP is
// decoded but re-encoded as JPEG since pure Go has no WebP encoder.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// detectFormatFromFilename extracts the format from the filename extension.
func detectFormatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	default:
		return "jpeg"
	}
}

// formatToMimeType converts a format string to a MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// save writes image data under the upload root, rejecting traversal in both
// the subdirectory and the filename.
func (p *Processor) save(subDir, filename string, data []byte) (string, error) {
	safeName, err := util.SanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	targetDir, err := util.SafeJoinPath(p.uploadDir, subDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	filePath := filepath.Join(targetDir, safeName)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return filePath, nil
}
