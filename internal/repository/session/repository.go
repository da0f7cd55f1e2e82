package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/logger"
)

// Repository defines the session operations used by the HTTP endpoint.
type Repository interface {
	Exists(ctx context.Context, password string) (bool, error)
	Load(ctx context.Context, password string) ([]byte, error)
	Save(ctx context.Context, password string, data []byte) error
	Prune(ctx context.Context, maxAge time.Duration) (int, error)
}

var (
	// ErrNotFound is returned when no session is stored for a password.
	ErrNotFound = errors.New("session not found")
	// ErrEmptyPassword is returned for blank passwords.
	ErrEmptyPassword = errors.New("password is required")
)

// cacheSizeMax bounds the in-memory read cache of the store.
const cacheSizeMax = 1024 * 1024

// shardWidth is the length of the directory prefix taken from the key.
const shardWidth = 2

// FileRepository stores sessions under a base directory.
type FileRepository struct {
	// basePath is the root of the store.
	basePath string
	// store reads and writes the blobs.
	store *diskv.Diskv
	// now returns the current time; replaced in tests.
	now func() time.Time
}

// NewFileRepository creates a repository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	basePath := filepath.Clean(dir)

	return &FileRepository{
		basePath: basePath,
		store: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      cacheSizeMax,
			FilePerm:          config.DefaultFilePermissions,
			PathPerm:          0o700,
		}),
		now: time.Now,
	}
}

// Key returns the storage key of password.
func Key(password string) string {
	sum := sha256.Sum256([]byte(password))

	return hex.EncodeToString(sum[:])
}

// Exists reports whether a session is stored for password.
func (r *FileRepository) Exists(_ context.Context, password string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}

	return r.store.Has(Key(password)), nil
}

// Load returns the stored blob for password.
func (r *FileRepository) Load(_ context.Context, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	data, err := r.store.Read(Key(password))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read session: %w", err)
	}

	return data, nil
}

// Save stores data for password, replacing any previous blob.
func (r *FileRepository) Save(_ context.Context, password string, data []byte) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if err := r.store.Write(Key(password), data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// Prune erases sessions last written more than maxAge ago and returns how
// many were removed.
func (r *FileRepository) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	var (
		cutoff  = r.now().Add(-maxAge)
		removed int
		errs    []error
	)

	for key := range r.store.Keys(ctx.Done()) {
		info, err := os.Stat(r.path(key))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}

			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err = r.store.Erase(key); err != nil {
			errs = append(errs, fmt.Errorf("erase session: %w", err))

			continue
		}

		removed++
	}

	if removed > 0 {
		logger.InfoKV(ctx, "Pruned stale sessions", "removed", removed, "max_age", maxAge)
	}

	return removed, errors.Join(errs...)
}

// path is the file holding key.
func (r *FileRepository) path(key string) string {
	pk := keyToPath(key)

	return filepath.Join(append([]string{r.basePath}, append(pk.Path, pk.FileName)...)...)
}

func keyToPath(key string) *diskv.PathKey {
	if len(key) <= shardWidth {
		return &diskv.PathKey{FileName: key}
	}

	return &diskv.PathKey{
		Path:     []string{key[:shardWidth]},
		FileName: key,
	}
}

func pathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}
