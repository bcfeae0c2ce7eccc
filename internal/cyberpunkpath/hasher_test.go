package cyberpunkpath

import (
	"strings"
	"testing"

	"github.com/cyberpunkpath/gateway/internal/audio"
)

func TestDigestResultFormat(t *testing.T) {
	mp3 := audio.Mp3
	q := 0.5
	p := Params{Key: "test.mp3", Format: &mp3, Quality: &q}

	result := DigestResult(p)
	if len(result) < 36 {
		t.Fatalf("result too short: %q", result)
	}
	if result[2] != '/' || result[5] != '/' {
		t.Errorf("expected xx/yy/rest shape, got %q", result)
	}
}

func TestSuffixResult(t *testing.T) {
	wav := audio.Wav
	sr := 44100
	p := Params{Key: "test.mp3", Format: &wav, SampleRate: &sr}

	result := SuffixResult(p)
	if !strings.HasPrefix(result, "test.") || !strings.HasSuffix(result, ".wav") {
		t.Fatalf("unexpected shape: %q", result)
	}

	parts := strings.Split(result, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 dot-separated parts, got %v", parts)
	}
	if len(parts[1]) != 20 {
		t.Errorf("expected 20-char hex hash, got %d chars: %q", len(parts[1]), parts[1])
	}
	for _, c := range parts[1] {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("hash contains non-hex char: %q", parts[1])
		}
	}
}

func TestSuffixResultNoExtensionInKey(t *testing.T) {
	p := Params{Key: "track-with-no-ext"}
	result := SuffixResult(p)
	if !strings.HasPrefix(result, "track-with-no-ext.") {
		t.Fatalf("expected hash appended after key, got %q", result)
	}
}

func TestSuffixResultStripsScheme(t *testing.T) {
	p := Params{Key: "https://cdn.example.com/audio/song.flac"}
	result := SuffixResult(p)
	if strings.Contains(result, "https://") {
		t.Errorf("scheme should be stripped: %q", result)
	}
	if !strings.HasPrefix(result, "cdn.example.com/audio/song.") {
		t.Errorf("unexpected prefix: %q", result)
	}
}

func TestSuffixResultWithFilters(t *testing.T) {
	mp3 := audio.Mp3
	vol := 1.5
	lp := 1000.0
	p := Params{Key: "input.mp3", Format: &mp3, Volume: &vol, Lowpass: &lp}

	result := SuffixResult(p)
	if !strings.HasPrefix(result, "input.") || !strings.HasSuffix(result, ".mp3") {
		t.Fatalf("unexpected shape: %q", result)
	}
}

func TestDigestPathDeterministic(t *testing.T) {
	a := DigestPath("same/key")
	b := DigestPath("same/key")
	if a != b {
		t.Errorf("DigestPath should be deterministic: %q != %q", a, b)
	}
	if DigestPath("same/key") == DigestPath("different/key") {
		t.Error("different keys should not collide")
	}
}
