package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/secanalytics/internal/filex"
)

// FileBlobStore keeps blobs as files in one directory.
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates dir if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FileBlobStore{dir: abs}, nil
}

func (f *FileBlobStore) Put(_ context.Context, key string, data []byte) error {
	return filex.WriteAtomic(filepath.Join(f.dir, key), data)
}

func (f *FileBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
