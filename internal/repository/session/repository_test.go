package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFileRepository_NotFound verifies Load and Exists for a missing session.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())

	exists, err := repo.Exists(context.Background(), "kickoff")
	require.NoError(t, err)
	require.False(t, exists)

	data, err := repo.Load(context.Background(), "kickoff")
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, data)
}

// TestFileRepository_SaveLoad stores a blob under the hashed password only.
func TestFileRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewFileRepository(dir)
	ctx := context.Background()

	blob := []byte(`{"home":2,"away":1}`)
	require.NoError(t, repo.Save(ctx, "kickoff", blob))

	exists, err := repo.Exists(ctx, "kickoff")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := repo.Load(ctx, "kickoff")
	require.NoError(t, err)
	require.Equal(t, blob, got)

	// The raw password never appears on disk.
	key := Key("kickoff")
	_, err = os.Stat(filepath.Join(dir, key[:2], key))
	require.NoError(t, err)

	err = filepath.WalkDir(dir, func(path string, _ os.DirEntry, err error) error {
		require.NoError(t, err)
		require.NotContains(t, path, "kickoff")

		return nil
	})
	require.NoError(t, err)
}

// TestFileRepository_EmptyPassword rejects blank passwords.
func TestFileRepository_EmptyPassword(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	_, err := repo.Exists(ctx, "")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = repo.Load(ctx, "")
	require.ErrorIs(t, err, ErrEmptyPassword)

	require.ErrorIs(t, repo.Save(ctx, "", []byte("{}")), ErrEmptyPassword)
}

// TestFileRepository_Prune removes only sessions older than the retention.
func TestFileRepository_Prune(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewFileRepository(dir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "old", []byte("{}")))
	require.NoError(t, repo.Save(ctx, "fresh", []byte("{}")))

	now := time.Now()
	old := Key("old")
	require.NoError(t, os.Chtimes(filepath.Join(dir, old[:2], old), now, now.Add(-61*24*time.Hour)))

	removed, err := repo.Prune(ctx, 60*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	exists, err := repo.Exists(ctx, "old")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = repo.Exists(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, exists)

	// Disabled retention keeps everything.
	repo.now = func() time.Time { return now.Add(365 * 24 * time.Hour) }

	removed, err = repo.Prune(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, removed)

	removed, err = repo.Prune(ctx, 60*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
}

// TestKey is stable and hex encoded.
func TestKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Key(""))
	require.Len(t, Key("kickoff"), 64)
}
