// Package storage keeps uploaded files and returns the public URL they are
// served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	FolderAvatars   = "users"
	FolderDocuments = "author_documents"
)

type Uploader interface {
	// Upload stores r under folder and returns its public URL. name is only
	// used for its extension.
	Upload(ctx context.Context, folder, name string, r io.Reader) (string, error)
}

// Local writes files below a root directory. The files are expected to be
// served at baseURL, see handlers.NewRouter.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Upload(ctx context.Context, folder, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder = path.Clean("/" + folder)[1:]
	if folder == "" {
		return "", fmt.Errorf("upload folder required")
	}
	dir := filepath.Join(l.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	file := uuid.NewString() + cleanExt(name)
	dst := filepath.Join(dir, file)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close file: %w", err)
	}
	return l.baseURL + "/" + folder + "/" + file, nil
}

func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
