package cyberpunkpath

import (
	"strings"
)

const upperHex = "0123456789ABCDEF"

// SafeCharsType selects which bytes normalize leaves unescaped beyond the
// always-safe set (alphanumerics, '/', '-', '_', '.', '~').
type SafeCharsType struct {
	noop bool
	set  map[byte]struct{}
}

// DefaultSafeChars escapes everything outside the always-safe set.
var DefaultSafeChars = SafeCharsType{}

// NoopSafeChars escapes nothing at all.
var NoopSafeChars = SafeCharsType{noop: true}

// NewCustomSafeChars returns a SafeCharsType that additionally treats every
// byte in extra as safe.
func NewCustomSafeChars(extra string) SafeCharsType {
	set := make(map[byte]struct{}, len(extra))
	for i := 0; i < len(extra); i++ {
		set[extra[i]] = struct{}{}
	}
	return SafeCharsType{set: set}
}

// ParseSafeChars interprets the config spelling of a safe-chars selector:
// "" is Default, "--" is Noop, anything else is a Custom set of those bytes.
func ParseSafeChars(s string) SafeCharsType {
	switch {
	case s == "--":
		return NoopSafeChars
	case s == "":
		return DefaultSafeChars
	default:
		return NewCustomSafeChars(s)
	}
}

func (s SafeCharsType) shouldEscape(c byte) bool {
	if s.noop {
		return false
	}
	if isAlphanumeric(c) || c == '/' || c == '-' || c == '_' || c == '.' || c == '~' {
		return false
	}
	if s.set != nil {
		if _, ok := s.set[c]; ok {
			return false
		}
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func escape(s string, shouldEscape func(byte) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			if c == ' ' {
				b.WriteByte('+')
			} else {
				b.WriteByte('%')
				b.WriteByte(upperHex[c>>4])
				b.WriteByte(upperHex[c&0xF])
			}
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// lineBreakRunes are stripped outright before normalization: CR, LF, vertical
// tab, form feed, NEL, line separator, paragraph separator. Left in place
// they'd let a crafted key split an HTTP header or a log line when echoed
// back unescaped.
var lineBreakRunes = []rune{
	'\r', '\n', '\v', '\f',
	'\u0085', '\u2028', '\u2029',
}

func stripLineBreaks(s string) string {
	return strings.Map(func(r rune) rune {
		for _, lb := range lineBreakRunes {
			if r == lb {
				return -1
			}
		}
		return r
	}, s)
}

// Normalize cleans a raw key: it strips line-break characters, trims leading
// and trailing slashes, then percent-encodes bytes not in the safe set. It
// is an identity pass on the path structure itself — it does not collapse
// "//" or resolve ".." segments.
func Normalize(key string, safeChars SafeCharsType) string {
	cleaned := stripLineBreaks(key)
	cleaned = strings.Trim(cleaned, "/")
	return escape(cleaned, safeChars.shouldEscape)
}

