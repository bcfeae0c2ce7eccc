package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Buffer is an immutable, in-memory audio payload paired with its sniffed or
// assigned Format. It never mutates its backing slice after construction.
type Buffer struct {
	data   []byte
	format Format
}

// FromFile reads path fully into memory and determines its format: magic
// bytes first, falling back to the file extension when the header is
// unrecognised, and Unknown when neither resolves it.
func FromFile(path string) (Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("read %q: %w", path, err)
	}
	format := FromHeader(data)
	if format == Unknown {
		if byExt, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
			format = byExt
		}
	}
	return Buffer{data: data, format: format}, nil
}

// FromBytes wraps data, sniffing its format from the leading bytes.
func FromBytes(data []byte) Buffer {
	return Buffer{data: data, format: FromHeader(data)}
}

// FromBytesWithFormat wraps data with an explicitly assigned format, skipping
// header sniffing entirely — used when the caller already knows the format
// (e.g. right after ffmpeg produced it with a requested -f).
func FromBytesWithFormat(data []byte, format Format) Buffer {
	return Buffer{data: data, format: format}
}

// Format returns the buffer's audio format.
func (b Buffer) Format() Format { return b.format }

// Ext returns the buffer format's canonical extension.
func (b Buffer) Ext() string { return b.format.Ext() }

// MIME returns the buffer format's canonical Content-Type.
func (b Buffer) MIME() string { return b.format.MIME() }

// Len returns the byte length of the buffer.
func (b Buffer) Len() int { return len(b.data) }

// Empty reports whether the buffer holds no bytes.
func (b Buffer) Empty() bool { return len(b.data) == 0 }

// Bytes returns the buffer's backing slice. Callers must not mutate it.
func (b Buffer) Bytes() []byte { return b.data }

// IntoBytes consumes the buffer and returns its backing slice, leaving b
// zeroed. Use this over Bytes when the caller is taking sole ownership of
// the data (e.g. handing it off to an io.Writer) and the Buffer itself is
// discarded immediately after.
func (b *Buffer) IntoBytes() []byte {
	data := b.data
	*b = Buffer{}
	return data
}
