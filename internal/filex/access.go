package filex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/entrykeeper/internal/common"
)

// FileAccess reads and writes whole files for attachment import and export.
// Errors wrap common.ErrFileAccess; a refused overwrite wraps
// common.ErrFileExists so callers can ask the user and retry.
type FileAccess interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error
}

// LocalFileAccess is a FileAccess over the local filesystem.
type LocalFileAccess struct {
	perm os.FileMode
}

func NewLocalFileAccess() *LocalFileAccess {
	return &LocalFileAccess{perm: 0o600}
}

func (l *LocalFileAccess) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open file: %w", common.ErrFileAccess, err)
	}
	return data, nil
}

func (l *LocalFileAccess) WriteFile(ctx context.Context, path string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, l.perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", common.ErrFileExists, path)
		}
		return fmt.Errorf("%w: unable to save the attachment: %w", common.ErrFileAccess, err)
	}

	n, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: unable to save the attachment: %w", common.ErrFileAccess, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write to %s", common.ErrFileAccess, path)
	}
	return nil
}
