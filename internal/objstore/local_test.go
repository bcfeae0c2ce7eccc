package objstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

func TestLocalFSPutAndGetRange(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir(), "", cyberpunkpath.DefaultSafeChars)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	payload := []byte("0123456789")

	if err := fs.Put(ctx, "ab/cd/song.mp3", bytes.NewReader(payload), int64(len(payload))); err != nil {
		t.Fatal(err)
	}

	rc, err := fs.GetRange(ctx, "ab/cd/song.mp3", 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "23456" {
		t.Errorf("got %q, want %q", got, "23456")
	}
}

func TestLocalFSExistsAndSize(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir(), "", cyberpunkpath.DefaultSafeChars)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("should not exist yet")
	}

	if err := fs.Put(ctx, "key", bytes.NewReader([]byte("hello")), 5); err != nil {
		t.Fatal(err)
	}

	exists, err = fs.Exists(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("should exist after Put")
	}

	size, err := fs.Size(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
}

func TestLocalFSDelete(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir(), "", cyberpunkpath.DefaultSafeChars)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Put(ctx, "key", bytes.NewReader([]byte("x")), 1); err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(ctx, "key"); err != nil {
		t.Fatal(err)
	}
	exists, err := fs.Exists(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("should not exist after delete")
	}
}

func TestLocalFSDeleteMissingIsNoop(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir(), "", cyberpunkpath.DefaultSafeChars)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}

func TestLocalFSAppliesPathPrefix(t *testing.T) {
	root := t.TempDir()
	fs, err := NewLocalFS(root, "audio_files", cyberpunkpath.DefaultSafeChars)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Put(ctx, "song.mp3", bytes.NewReader([]byte("x")), 1); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(root, "audio_files", "song.mp3")); err != nil {
		t.Errorf("expected object under the configured path_prefix: %v", err)
	}
}

func TestLocalFSNormalizesTrailingSlashes(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir(), "", cyberpunkpath.DefaultSafeChars)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Put(ctx, "/ab/cd/song.mp3/", bytes.NewReader([]byte("x")), 1); err != nil {
		t.Fatal(err)
	}
	exists, err := fs.Exists(ctx, "ab/cd/song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("expected leading/trailing slashes to normalize to the same key")
	}
}
