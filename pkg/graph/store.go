package graph

import (
	"context"
	"os"
	"path/filepath"

	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/record"
)

// FileStore serves record files as a record.Store.
//
// When path is a directory each owner maps to "<owner>.json" or
// "<owner>.toml" inside it; when path is a file, every owner sees that file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List reads the owner's record file.
func (s *FileStore) List(ctx context.Context, owner string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(owner)
	if err != nil {
		return nil, err
	}
	return ReadRecordsFile(path)
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) resolve(owner string) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", pederrors.Wrap(pederrors.ErrCodeNotFound, err, "record file %s", s.path)
	}
	if !info.IsDir() {
		return s.path, nil
	}
	if err := pederrors.ValidateOwner(owner); err != nil {
		return "", err
	}
	for _, ext := range []string{".json", ".toml"} {
		p := filepath.Join(s.path, owner+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", pederrors.New(pederrors.ErrCodeNotFound, "no records for owner %q", owner)
}

var _ record.Store[record.Attributes] = (*FileStore)(nil)
