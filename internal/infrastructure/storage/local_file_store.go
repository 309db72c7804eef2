package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	domainerrors "finid.backend/internal/domain/errors"
	"finid.backend/pkg/crypto"
	"finid.backend/pkg/utils"
)

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

const maxNameAttempts = 8

// MaxPathLength bounds stored relative paths; it is the width of the
// document_file and profile_photo columns.
const MaxPathLength = 255

var (
	mkdirAll  = os.MkdirAll
	openFile  = os.OpenFile
	suffixGen = func() (string, error) { return crypto.GenerateRandomToken(4) }
)

// LocalFileStore keeps uploaded files on the local filesystem under root.
// Stored paths are relative and slash separated, e.g. kyc/<user id>/passport.pdf.
type LocalFileStore struct {
	root    string
	baseURL string
}

// NewLocalFileStore creates a file store rooted at root and served under baseURL
func NewLocalFileStore(root, baseURL string) *LocalFileStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalFileStore{root: root, baseURL: baseURL}
}

// Root returns the filesystem directory backing the store
func (s *LocalFileStore) Root() string {
	return s.root
}

// Save writes content at relPath. Long file names are shortened so the
// path fits MaxPathLength, and when the name is taken a random suffix is
// appended before the extension. The stored relative path is returned.
func (s *LocalFileStore) Save(ctx context.Context, relPath string, content io.Reader) (string, error) {
	clean, err := cleanRelPath(relPath)
	if err != nil {
		return "", err
	}
	if clean, err = fitPath(clean, 0); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := path.Dir(clean)
	if err := mkdirAll(filepath.Join(s.root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	candidate := clean
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		f, err := openFile(s.fullPath(candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			suffix, serr := suffixGen()
			if serr != nil {
				return "", serr
			}
			base, err := fitPath(clean, len(suffix)+1)
			if err != nil {
				return "", err
			}
			candidate = withSuffix(base, suffix)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file: %w", err)
		}

		if _, err := io.Copy(f, content); err != nil {
			_ = f.Close()
			_ = os.Remove(s.fullPath(candidate))
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(s.fullPath(candidate))
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free file name for %s", clean)
}

// Open opens a stored file for reading
func (s *LocalFileStore) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	clean, err := cleanRelPath(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.fullPath(clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return nil, domainerrors.ErrNotFound
	}
	return f, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalFileStore) Delete(ctx context.Context, relPath string) error {
	clean, err := cleanRelPath(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(s.fullPath(clean)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// DeleteDir removes a directory and everything below it
func (s *LocalFileStore) DeleteDir(ctx context.Context, relDir string) error {
	clean, err := cleanRelPath(relDir)
	if err != nil {
		return err
	}
	return os.RemoveAll(s.fullPath(clean))
}

// URL returns the public URL of a stored file
func (s *LocalFileStore) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(relPath, "/")
}

func (s *LocalFileStore) fullPath(clean string) string {
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

func cleanRelPath(p string) (string, error) {
	if p == "" || strings.ContainsRune(p, 0) || strings.Contains(p, `\`) {
		return "", ErrInvalidPath
	}
	if path.IsAbs(p) {
		return "", ErrInvalidPath
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}

// fitPath shortens the file name of p so that p plus reserve more
// characters stays within MaxPathLength
func fitPath(p string, reserve int) (string, error) {
	dir, name := path.Split(p)
	budget := MaxPathLength - len([]rune(dir)) - reserve
	if budget < 1 {
		return "", ErrInvalidPath
	}
	return dir + utils.TruncateFilename(name, budget), nil
}

func withSuffix(p, suffix string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "_" + suffix + ext
}
