// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/corpcms-go/internal/imaging"
	"github.com/olegiv/corpcms-go/internal/util"
)

// Upload limits
const (
	MaxUploadSize    = 20 * 1024 * 1024 // 20MB
	DefaultUploadDir = "./uploads"
)

// UploadedFile describes a stored upload.
type UploadedFile struct {
	Path      string // public path of the stored file
	ThumbPath string // thumbnail path, empty for non-image uploads
	MimeType  string
	Size      int64
	Width     int
	Height    int
}

// MediaService stores uploaded files under per-resource directories. Files
// are renamed to a UUID before saving so user-supplied names never reach
// the filesystem.
type MediaService struct {
	processor *imaging.Processor
	uploadDir string
}

// NewMediaService creates a media service rooted at uploadDir.
func NewMediaService(uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &MediaService{
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// UploadDir returns the root directory uploads are stored under.
func (s *MediaService) UploadDir() string {
	return s.uploadDir
}

// SaveImage processes and stores an image upload for the given resource
// directory, producing a thumbnail variant alongside the original.
func (s *MediaService) SaveImage(file multipart.File, header *multipart.FileHeader, resourceDir string) (*UploadedFile, error) {
	if header.Size > MaxUploadSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))

	result, err := s.processor.Process(file, resourceDir, name)
	if err != nil {
		return nil, fmt.Errorf("processing image: %w", err)
	}

	thumb, err := s.processor.Thumbnail(result.FilePath, resourceDir, "thumb_"+name)
	if err != nil {
		// The original is stored; a missing thumbnail degrades, not fails.
		slog.Error("thumbnail generation failed", "file", result.FilePath, "error", err)
		thumb = &imaging.Result{}
	}

	return &UploadedFile{
		Path:      result.FilePath,
		ThumbPath: thumb.FilePath,
		MimeType:  result.MimeType,
		Size:      result.Size,
		Width:     result.Width,
		Height:    result.Height,
	}, nil
}

// SaveDocument stores a non-image upload (product spec sheets) without
// image processing. Only PDF is accepted.
func (s *MediaService) SaveDocument(file multipart.File, header *multipart.FileHeader, resourceDir string) (*UploadedFile, error) {
	if header.Size > MaxUploadSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return nil, fmt.Errorf("unsupported document type")
	}

	name := uuid.New().String() + ".pdf"
	dir, err := util.SafeJoinPath(s.uploadDir, resourceDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	return &UploadedFile{
		Path:     path,
		MimeType: "application/pdf",
		Size:     int64(len(data)),
	}, nil
}

// Remove deletes stored files best-effort. The database row is the source
// of truth; a failed unlink is logged and otherwise ignored.
func (s *MediaService) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Error("upload file removal failed", "path", p, "error", err)
		}
	}
}
