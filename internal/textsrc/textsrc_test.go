package textsrc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monologue.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffБыть или не быть,\r\nвот в чём вопрос.\r\n"), 0o644))

	text, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Быть или не быть,\nвот в чём вопрос.\n", text)
}

func TestLoadFileRejectsNonText(t *testing.T) {
	for _, name := range []string{"song.mp3", "notes.docx", "README", "image.TXT.png"} {
		_, err := LoadFile(filepath.Join(t.TempDir(), name))
		assert.ErrorIs(t, err, apperrors.ErrFileTypeRejected, name)
	}
	assert.NoError(t, CheckExt("POEM.TXT"))
	assert.NoError(t, CheckExt("speech.text"))
}

func TestLoadFileReadFailure(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, apperrors.ErrFileReadFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRejectsInvalidUTF8(t *testing.T) {
	_, err := Read(strings.NewReader("ok \xff\xfe"), "stdin")
	assert.ErrorIs(t, err, apperrors.ErrFileReadFailure)
}

func TestReadRejectsOversize(t *testing.T) {
	_, err := Read(strings.NewReader(strings.Repeat("a", MaxSize+1)), "big.txt")
	assert.ErrorIs(t, err, apperrors.ErrFileReadFailure)

	text, err := Read(strings.NewReader(strings.Repeat("a", MaxSize)), "exact.txt")
	require.NoError(t, err)
	assert.Len(t, text, MaxSize)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Normalize("a\r\nb\rc"))
	assert.Equal(t, "x", Normalize("\ufeffx"))
}

func TestWatchReportsRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.txt")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads, err := Watch(ctx, path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("second\r\nline"), 0o644))

	select {
	case r := <-reloads:
		require.NoError(t, r.Err)
		assert.Equal(t, "second\nline", r.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("expected reload event")
	}

	cancel()
	select {
	case _, ok := <-reloads:
		for ok {
			_, ok = <-reloads
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected channel to close after cancel")
	}
}
