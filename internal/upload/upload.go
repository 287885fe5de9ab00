// Package upload is the blob uploader contract for design photos, plus a
// local-disk implementation that serves files back under /uploads/.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MaxBytes is the upload size limit, enforced before any bytes move.
const MaxBytes = 5 << 20 // 5MB

// ErrTooLarge is returned when the declared size exceeds MaxBytes.
var ErrTooLarge = errors.New("file exceeds 5MB upload limit")

// ProgressFunc receives completion percentages from 0 to 100.
type ProgressFunc func(percent int)

// Uploader stores a blob and returns a URL it can be fetched from later.
// Failures are terminal for the call; retries are user-initiated.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, size int64, destPath string, progress ProgressFunc) (string, error)
}

// Local writes uploads under a base directory and addresses them under the
// /uploads/ URL prefix.
type Local struct {
	baseDir string
}

// NewLocal creates a Local uploader rooted at baseDir.
func NewLocal(baseDir string) *Local {
	return &Local{baseDir: baseDir}
}

// Upload streams r to disk in chunks, reporting progress after each chunk,
// and returns the public URL. The destination path is cleaned and confined
// to the base directory. A partial file from a failed copy is removed.
func (l *Local) Upload(ctx context.Context, r io.Reader, size int64, destPath string, progress ProgressFunc) (string, error) {
	if size > MaxBytes {
		return "", ErrTooLarge
	}

	clean := path.Clean("/" + destPath)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid destination path %q", destPath)
	}
	full := filepath.Join(l.baseDir, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(full)
			return "", err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			if written+int64(n) > MaxBytes {
				f.Close()
				os.Remove(full)
				return "", ErrTooLarge
			}
			if _, err := f.Write(buf[:n]); err != nil {
				f.Close()
				os.Remove(full)
				return "", fmt.Errorf("write upload: %w", err)
			}
			written += int64(n)
			if progress != nil && size > 0 {
				pct := int(written * 100 / size)
				if pct > 100 {
					pct = 100
				}
				progress(pct)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(full)
			return "", fmt.Errorf("read upload: %w", readErr)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close upload: %w", err)
	}
	if progress != nil {
		progress(100)
	}
	return "/uploads" + clean, nil
}
