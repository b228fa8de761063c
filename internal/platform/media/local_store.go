package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"

	"opinion_backend/internal/feature/auth/usecase"
)

// LocalStore keeps uploads on the local filesystem.
type LocalStore struct {
	cfg Config
}

var _ usecase.MediaStore = (*LocalStore)(nil)

// NewLocalStore creates the media and upload directories if needed.
func NewLocalStore(cfg Config) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Dir, cfg.Folder), 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	if cfg.UploadDir != "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &LocalStore{cfg: cfg}, nil
}

// Upload moves localPath into the media folder and returns its public reference.
// The stored name is desiredName's base plus a ksuid, so repeated uploads never
// overwrite each other. The temporary file is removed in every case.
func (s *LocalStore) Upload(ctx context.Context, localPath, desiredName string) (string, error) {
	defer func() { _ = os.Remove(localPath) }()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(desiredName))
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(localPath))
	}
	base := strings.TrimSuffix(filepath.Base(desiredName), filepath.Ext(desiredName))
	name := fmt.Sprintf("%s-%s%s", base, ksuid.New().String(), ext)
	dst := filepath.Join(s.cfg.Dir, s.cfg.Folder, name)

	if err := move(localPath, dst); err != nil {
		return "", fmt.Errorf("store media: %w", err)
	}
	return path.Join(s.cfg.BaseURL, s.cfg.Folder, name), nil
}

// move renames src to dst, copying when they are on different devices.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		return errors.Join(err, out.Close(), os.Remove(dst))
	}
	return out.Close()
}

// IsLocalPath reports whether ref is a filesystem path rather than a hosted URL.
func IsLocalPath(ref string) bool {
	if ref == "" {
		return false
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return false
	}
	return strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "./") ||
		strings.HasPrefix(ref, "../") || filepath.IsAbs(ref) || strings.ContainsRune(ref, filepath.Separator)
}

// NormalizeReference returns the public form of a stored avatar reference.
// Hosted URLs are returned unchanged, bare file names are resolved under the
// media base URL, and empty input yields fallback.
func NormalizeReference(ref, baseURL, fallback string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fallback
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, strings.TrimRight(baseURL, "/")+"/") {
		return ref
	}
	return path.Join(baseURL, filepath.ToSlash(filepath.Base(ref)))
}
