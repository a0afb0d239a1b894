package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveLayout(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	rel, err := store.Save(context.Background(), strings.NewReader("pdf-bytes"), "Offer Letter.PDF", "placements", KindFile, "7")
	require.NoError(t, err)
	assert.Equal(t, "placements/files/Offer_Letter_7.PDF", rel)

	f, err := store.Open(rel)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(body))

	require.NoError(t, store.Delete(rel))
	require.NoError(t, store.Delete(rel))
}

func TestLocalStorageImageKind(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	rel, err := store.Save(context.Background(), strings.NewReader("img"), "logo.png", "jobs", KindImage, "")
	require.NoError(t, err)
	assert.Equal(t, "jobs/images/logo.png", rel)
}

func TestLocalStorageRejectsDisallowedType(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), strings.NewReader("x"), "payload.exe", "jobs", KindFile, "1")
	assert.ErrorIs(t, err, ErrDisallowedType)
	assert.False(t, Allowed("notes.txt"))
	assert.True(t, Allowed("scan.JPEG"))
}

func TestLocalStorageSizeLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), strings.NewReader("too large"), "a.pdf", "jobs", KindFile, "1")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLocalStorageConfinesPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(store.resolve("../../etc/passwd"), dir))
}
