package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteSnapshotRemovesOriginalAndThumbnail(t *testing.T) {
	base := t.TempDir()
	p := NewSnapshotProcessor(base)

	snapshotDir := filepath.Join(base, "snapshots")
	thumbsDir := filepath.Join(snapshotDir, "thumbs")
	require.NoError(t, os.MkdirAll(thumbsDir, 0755))

	original := filepath.Join(snapshotDir, "sess-1700000000000.png")
	thumb := filepath.Join(thumbsDir, "sess-1700000000000_200px.webp")
	require.NoError(t, os.WriteFile(original, []byte("png"), 0644))
	require.NoError(t, os.WriteFile(thumb, []byte("webp"), 0644))

	require.NoError(t, p.DeleteSnapshot("/media/snapshots/sess-1700000000000.png"))

	assert.NoFileExists(t, original)
	assert.NoFileExists(t, thumb)
}

func TestDeleteSnapshotMissingFilesIsNotAnError(t *testing.T) {
	p := NewSnapshotProcessor(t.TempDir())
	assert.NoError(t, p.DeleteSnapshot("/media/snapshots/gone.png"))
}

func TestDeleteSnapshotRejectsBadPaths(t *testing.T) {
	p := NewSnapshotProcessor(t.TempDir())
	assert.Error(t, p.DeleteSnapshot(""))
	assert.Error(t, p.DeleteSnapshot("/media/snapshots/../../etc/passwd"))
}

func TestExtractExtensionDetectsMIME(t *testing.T) {
	assert.Equal(t, "png", extractExtension("data:image/png;base64,AAAA"))
	assert.Equal(t, "jpg", extractExtension("data:image/jpeg;base64,AAAA"))
	assert.Equal(t, "webp", extractExtension("data:image/webp;base64,AAAA"))
	assert.Equal(t, "", extractExtension("data:text/plain;base64,AAAA"))
}
