package objstore

import (
	"testing"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

func TestFullKeyJoinsPathPrefix(t *testing.T) {
	got := fullKey("audio_files", "a/song.mp3", cyberpunkpath.DefaultSafeChars)
	if want := "audio_files/a/song.mp3"; got != want {
		t.Errorf("fullKey = %q, want %q", got, want)
	}
}

func TestFullKeyWithoutPathPrefix(t *testing.T) {
	got := fullKey("", "a/song.mp3", cyberpunkpath.DefaultSafeChars)
	if want := "a/song.mp3"; got != want {
		t.Errorf("fullKey = %q, want %q", got, want)
	}
}

func TestFullKeyAppliesSafeChars(t *testing.T) {
	got := fullKey("prefix", "hello world.mp3", cyberpunkpath.DefaultSafeChars)
	if want := "prefix/hello+world.mp3"; got != want {
		t.Errorf("fullKey = %q, want %q", got, want)
	}
}
