// Package media provides image processing for captured scan snapshots
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// SnapshotProcessor persists the face frame captured at scan time and
// produces the square thumbnail shown on the admin dashboard.
type SnapshotProcessor struct {
	basePath string // Points to the kiosk media directory
}

// NewSnapshotProcessor creates a new SnapshotProcessor instance
func NewSnapshotProcessor(basePath string) *SnapshotProcessor {
	return &SnapshotProcessor{
		basePath: basePath,
	}
}

// thumbnailSize is the square edge of the dashboard thumbnail in pixels.
const thumbnailSize = 200

// ProcessScanSnapshot saves the captured frame for a session and generates a
// 200x200 WebP thumbnail. Returns the relative URL paths of the original and
// the thumbnail.
func (p *SnapshotProcessor) ProcessScanSnapshot(data, sessionID string) (string, string, error) {
	if data == "" {
		return "", "", fmt.Errorf("empty base64 data")
	}

	ext := extractExtension(data)
	if ext == "" {
		return "", "", fmt.Errorf("unsupported image format")
	}

	// Timestamped filename keeps repeated scans within a session apart.
	timestamp := time.Now().UnixMilli()
	filename := fmt.Sprintf("%s-%d.%s", sessionID, timestamp, ext)

	snapshotDir := filepath.Join(p.basePath, "snapshots")
	thumbsDir := filepath.Join(p.basePath, "snapshots", "thumbs")

	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.MkdirAll(thumbsDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create thumbs directory: %w", err)
	}

	originalPath, err := processBinaryImage(data, filename, snapshotDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to save snapshot: %w", err)
	}

	thumbPath, err := p.generateThumbnail(originalPath, sessionID, timestamp, thumbsDir)
	if err != nil {
		// Without a thumbnail the snapshot is useless to the dashboard.
		os.Remove(originalPath)
		return "", "", fmt.Errorf("failed to generate thumbnail: %w", err)
	}

	relativeOriginal := fmt.Sprintf("/media/snapshots/%s", filename)
	relativeThumb := fmt.Sprintf("/media/snapshots/thumbs/%s", filepath.Base(thumbPath))
	return relativeOriginal, relativeThumb, nil
}

// generateThumbnail crops the frame to a centered square and saves it as WebP.
func (p *SnapshotProcessor) generateThumbnail(originalPath, sessionID string, timestamp int64, thumbsDir string) (string, error) {
	originalFile, err := os.Open(originalPath)
	if err != nil {
		return "", fmt.Errorf("failed to open original file: %w", err)
	}
	defer originalFile.Close()

	img, err := imaging.Decode(originalFile)
	if err != nil {
		return "", fmt.Errorf("failed to decode snapshot: %w", err)
	}

	thumb := imaging.Fill(img, thumbnailSize, thumbnailSize, imaging.Center, imaging.Lanczos)

	thumbFilename := fmt.Sprintf("%s-%d_%dpx.webp", sessionID, timestamp, thumbnailSize)
	thumbPath := filepath.Join(thumbsDir, thumbFilename)

	// Save as WebP using the webp library, NOT imaging.Save()
	if err := webp.Save(thumbPath, thumb, &webp.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to save WebP thumbnail %s: %w", thumbFilename, err)
	}

	return thumbPath, nil
}

// DeleteSnapshot removes a stored snapshot and its thumbnail.
func (p *SnapshotProcessor) DeleteSnapshot(snapshotPath string) error {
	if snapshotPath == "" {
		return fmt.Errorf("empty snapshot path")
	}
	if strings.Contains(snapshotPath, "..") {
		return fmt.Errorf("invalid snapshot path")
	}

	filename := filepath.Base(snapshotPath)
	basename := filename
	if dotIndex := strings.LastIndex(filename, "."); dotIndex != -1 {
		basename = filename[:dotIndex]
	}

	originalPath := filepath.Join(p.basePath, strings.TrimPrefix(snapshotPath, "/media/"))
	if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}

	thumbPath := filepath.Join(p.basePath, "snapshots", "thumbs",
		fmt.Sprintf("%s_%dpx.webp", basename, thumbnailSize))
	if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove thumbnail: %w", err)
	}

	return nil
}

// extractExtension auto-detects file extension from MIME type
func extractExtension(data string) string {
	if strings.Contains(data, "data:image/png") {
		return "png"
	} else if strings.Contains(data, "data:image/jpeg") || strings.Contains(data, "data:image/jpg") {
		return "jpg"
	} else if strings.Contains(data, "data:image/webp") {
		return "webp"
	}
	return ""
}

// processBinaryImage handles binary image persistence (PNG, JPG, WebP)
func processBinaryImage(data, filename, targetDir string) (string, error) {
	binaryPattern := regexp.MustCompile(`^data:image/\w+;base64,`)
	if !binaryPattern.MatchString(data) {
		return "", fmt.Errorf("invalid binary image base64 format")
	}

	b64Data := binaryPattern.ReplaceAllString(data, "")
	decoded, err := base64.StdEncoding.DecodeString(b64Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	fullPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return fullPath, nil
}
