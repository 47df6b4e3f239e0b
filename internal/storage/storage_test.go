package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalUpload(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	url, err := l.Upload(context.Background(), FolderAvatars, "me.PNG", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	prefix := "http://localhost:8080/uploads/users/"
	if !strings.HasPrefix(url, prefix) || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %s", url)
	}

	data, err := os.ReadFile(filepath.Join(root, "users", strings.TrimPrefix(url, prefix)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected content %q", data)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalUploadRemovesPartialFile(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/uploads")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, err := l.Upload(context.Background(), FolderDocuments, "cv.pdf", failingReader{}); err == nil {
		t.Fatalf("expected upload error")
	}
	entries, err := os.ReadDir(filepath.Join(root, FolderDocuments))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial file left behind: %v", entries)
	}
}

func TestLocalUploadStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/uploads")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	url, err := l.Upload(context.Background(), "../../etc", "x.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/etc/") {
		t.Fatalf("folder escaped root: %s", url)
	}
}

func TestCleanExt(t *testing.T) {
	cases := map[string]string{
		"a.pdf":           ".pdf",
		"noext":           "",
		"weird.p%df":      "",
		"long.abcdefghij": "",
	}
	for in, want := range cases {
		if got := cleanExt(in); got != want {
			t.Fatalf("cleanExt(%q) = %q, want %q", in, got, want)
		}
	}
}
