// Package audio holds the sniffed audio container format and the immutable
// byte buffer that carries decoded/encoded audio payloads through the
// gateway.
package audio

import (
	"encoding/json"
	"strings"
)

// Format is a closed set of container formats the gateway understands.
type Format int

const (
	Unknown Format = iota
	Mp3
	Wav
	Flac
	Ogg
	M4a
	Opus
)

// FromHeader sniffs a Format from the leading bytes of a file, the same magic
// numbers ffprobe itself would recognise.
func FromHeader(data []byte) Format {
	switch {
	case hasPrefix(data, 0xFF, 0xFB):
		return Mp3
	case hasPrefixString(data, "RIFF"):
		return Wav
	case hasPrefixString(data, "fLaC"):
		return Flac
	case hasPrefixString(data, "OggS"):
		return Ogg
	case hasPrefixString(data, "ftypM4A "):
		return M4a
	case hasPrefixString(data, "OpusHead"):
		return Opus
	default:
		return Unknown
	}
}

func hasPrefix(data []byte, prefix ...byte) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}

func hasPrefixString(data []byte, prefix string) bool {
	return len(data) >= len(prefix) && string(data[:len(prefix)]) == prefix
}

// MIME returns the canonical Content-Type for the format.
func (f Format) MIME() string {
	switch f {
	case Mp3:
		return "audio/mpeg"
	case Wav:
		return "audio/wav"
	case Flac:
		return "audio/flac"
	case Ogg:
		return "audio/ogg"
	case M4a:
		return "audio/mp4"
	case Opus:
		return "audio/opus"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the canonical extension (without a leading dot), or the empty
// string for Unknown.
func (f Format) Ext() string {
	switch f {
	case Mp3:
		return "mp3"
	case Wav:
		return "wav"
	case Flac:
		return "flac"
	case Ogg:
		return "ogg"
	case M4a:
		return "m4a"
	case Opus:
		return "opus"
	default:
		return ""
	}
}

// String satisfies fmt.Stringer; it's also the wire representation used in
// query strings.
func (f Format) String() string {
	return f.Ext()
}

// ParseFormat parses the query-string spelling of a format. An empty string
// parses as Unknown; anything else unrecognised is an error.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "mp3":
		return Mp3, nil
	case "wav":
		return Wav, nil
	case "flac":
		return Flac, nil
	case "ogg":
		return Ogg, nil
	case "m4a":
		return M4a, nil
	case "opus":
		return Opus, nil
	case "":
		return Unknown, nil
	default:
		return Unknown, &UnknownFormatError{Value: s}
	}
}

// MarshalJSON writes the format as its extension string, matching the wire
// representation used in query strings.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON parses the format from its extension string.
func (f *Format) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnknownFormatError reports an unrecognised format string.
type UnknownFormatError struct {
	Value string
}

func (e *UnknownFormatError) Error() string {
	return "unknown audio format: " + e.Value
}
