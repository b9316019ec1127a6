package payslip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps generated statements under a base directory.
type FileStore struct {
	basePath string
}

func NewFileStore(basePath string) (*FileStore, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create payslip directory: %w", err)
	}
	return &FileStore{basePath: abs}, nil
}

func (s *FileStore) resolve(path string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.Clean("/"+path))
	if fullPath != s.basePath && !strings.HasPrefix(fullPath, s.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return fullPath, nil
}

// Save writes data to path relative to the base directory and returns the
// cleaned relative path.
func (s *FileStore) Save(ctx context.Context, path string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filepath.Rel(s.basePath, fullPath)
}

// Open returns ErrNotFound when nothing is stored at path.
func (s *FileStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// SavePDF stores a rendered statement as <businessId>/<period>/<file name>.
func (s *FileStore) SavePDF(ctx context.Context, r Report, data []byte) (string, error) {
	return s.Save(ctx, filepath.Join(sanitize(r.BusinessID), sanitize(r.PeriodKey), FileName(r)), data)
}

// SaveZip stores a bulk archive as <businessId>/<period>/payslips_<period>.zip.
func (s *FileStore) SaveZip(ctx context.Context, businessID, periodKey string, data []byte) (string, error) {
	name := fmt.Sprintf("payslips_%s.zip", sanitize(periodKey))
	return s.Save(ctx, filepath.Join(sanitize(businessID), sanitize(periodKey), name), data)
}
