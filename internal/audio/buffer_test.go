package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBufferFromBytes(t *testing.T) {
	data := append([]byte{0xFF, 0xFB}, make([]byte, 1024)...)
	buf := FromBytes(data)

	if buf.Format() != Mp3 {
		t.Errorf("format = %v, want Mp3", buf.Format())
	}
	if buf.MIME() != "audio/mpeg" {
		t.Errorf("mime = %q", buf.MIME())
	}
	if buf.Len() != 1026 {
		t.Errorf("len = %d, want 1026", buf.Len())
	}
	if buf.Empty() {
		t.Error("buffer should not be empty")
	}
}

func TestBufferFromBytesWithFormat(t *testing.T) {
	buf := FromBytesWithFormat([]byte{0x00, 0x01}, Flac)
	if buf.Format() != Flac {
		t.Errorf("format = %v, want Flac", buf.Format())
	}
}

func TestBufferEmpty(t *testing.T) {
	buf := FromBytes(nil)
	if !buf.Empty() {
		t.Error("expected empty buffer")
	}
	if buf.Format() != Unknown {
		t.Errorf("format = %v, want Unknown", buf.Format())
	}
}

func TestFromFileFallsBackToExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, []byte("not a real flac header"), 0o644); err != nil {
		t.Fatal(err)
	}

	buf, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format() != Flac {
		t.Errorf("format = %v, want Flac (from extension fallback)", buf.Format())
	}
}

func TestFromFilePrefersMagicBytesOverExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	data := append([]byte{0xFF, 0xFB}, make([]byte, 16)...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	buf, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format() != Mp3 {
		t.Errorf("format = %v, want Mp3 (magic bytes over extension)", buf.Format())
	}
}

func TestFromFileUnrecognisedIsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.bin")
	if err := os.WriteFile(path, []byte{0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	buf, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Format() != Unknown {
		t.Errorf("format = %v, want Unknown", buf.Format())
	}
}

func TestBufferIntoBytesZeroesReceiver(t *testing.T) {
	buf := FromBytes([]byte{0xFF, 0xFB, 0x00})
	data := buf.IntoBytes()
	if len(data) != 3 {
		t.Errorf("IntoBytes len = %d, want 3", len(data))
	}
	if !buf.Empty() {
		t.Error("buffer should be zeroed after IntoBytes")
	}
}
