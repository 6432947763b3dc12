package filestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files on the local filesystem under a base directory. The
// returned reference is "<ownerID>_<uuid><ext>" relative to the base dir, so
// references stay stable if the directory is moved.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Local{baseDir: baseDir}, nil
}

func (l *Local) Store(ctx context.Context, r io.Reader, ownerID, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := ownerID + "_" + uuid.NewString() + ext

	f, err := os.Create(filepath.Join(l.baseDir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return name, nil
}

func (l *Local) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (l *Local) Delete(ctx context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (l *Local) Exists(ctx context.Context, name string) (bool, error) {
	p, err := l.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// path rejects names that escape the base directory.
func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", errors.New("invalid file name")
	}
	return filepath.Join(l.baseDir, name), nil
}

var _ FileStore = (*Local)(nil)
