// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"strings"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(width, height), nil); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"image.jpg", "jpeg"},
		{"image.PNG", "png"},
		{"image.gif", "gif"},
		{"image.unknown", "jpeg"},
		{"noextension", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := detectFormatFromFilename(tt.filename); got != tt.want {
				t.Errorf("detectFormatFromFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	// Verify no panic for all orientation values including out-of-range
	for _, orientation := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9} {
		img := createTestImage(10, 10)
		if result := applyOrientation(img, orientation); result == nil {
			t.Errorf("applyOrientation(%d) returned nil", orientation)
		}
	}

	// Rotations by 90 degrees swap dimensions
	img := createTestImage(20, 10)
	rotated := applyOrientation(img, 6)
	bounds := rotated.Bounds()
	if bounds.Dx() != 10 || bounds.Dy() != 20 {
		t.Errorf("orientation 6 bounds = %dx%d, want 10x20", bounds.Dx(), bounds.Dy())
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 800, 600)

	result, err := p.Process(bytes.NewReader(data), "gallery", "photo.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Width != 800 || result.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", result.Width, result.Height)
	}
	if result.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want image/jpeg", result.MimeType)
	}
	if !strings.HasPrefix(result.FilePath, dir) {
		t.Errorf("FilePath = %q, want under %q", result.FilePath, dir)
	}

	w, h, err := p.Dimensions(result.FilePath)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 800 || h != 600 {
		t.Errorf("saved dimensions = %dx%d, want 800x600", w, h)
	}
}

func TestProcess_RejectsGarbage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.Process(bytes.NewReader([]byte("not an image")), "gallery", "x.jpg")
	if err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestProcess_RejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())
	data := encodeTestJPEG(t, 10, 10)

	_, err := p.Process(bytes.NewReader(data), "../escape", "x.jpg")
	if err == nil {
		t.Fatal("expected error for traversal subdirectory")
	}
}

func TestThumbnail(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 1600, 1200)
	original, err := p.Process(bytes.NewReader(data), "gallery", "photo.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	thumb, err := p.Thumbnail(original.FilePath, filepath.Join("gallery", "thumbs"), "photo.jpg")
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	if thumb.Width != ThumbWidth || thumb.Height != ThumbHeight {
		t.Errorf("thumb dimensions = %dx%d, want %dx%d",
			thumb.Width, thumb.Height, ThumbWidth, ThumbHeight)
	}
}
