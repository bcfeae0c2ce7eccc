package cyberpunkpath

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

func hexDigestPath(path string) string {
	sum := sha1.Sum([]byte(path))
	hash := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s/%s/%s", hash[:2], hash[2:4], hash[4:])
}

// DigestPath returns the sharded on-disk/on-bucket path for a raw source
// audio key: xx/yy/rest, so no single directory ever holds more than a
// handful of thousand entries.
func DigestPath(audio string) string {
	return hexDigestPath(audio)
}

// DigestResult returns the sharded storage path for a fully-resolved set of
// transformation Params, keyed on their canonical string form.
func DigestResult(p Params) string {
	return hexDigestPath(p.String())
}

// SuffixResult returns a cache-friendly variant of the source key with a
// 10-byte (20 hex char) content hash spliced in before the extension — e.g.
// "track.a1b2c3d4e5f6a1b2c3d4.mp3" — so two different transformations of the
// same source audio produce distinct, still-recognisable filenames.
func SuffixResult(p Params) string {
	path := p.String()
	sum := sha1.Sum([]byte(path))
	hash := "." + hex.EncodeToString(sum[:10])

	audio := p.Key
	switch {
	case strings.HasPrefix(audio, "https://"):
		audio = audio[8:]
	case strings.HasPrefix(audio, "http://"):
		audio = audio[7:]
	}

	dotIdx := strings.LastIndexByte(audio, '.')
	slashIdx := strings.LastIndexByte(audio, '/')

	if dotIdx >= 0 && (slashIdx < 0 || slashIdx < dotIdx) {
		ext := audio[dotIdx:]
		if p.Format != nil {
			ext = "." + strings.ToLower(p.Format.String())
		}
		return audio[:dotIdx] + hash + ext
	}
	return audio + hash
}

// SizeSuffixResult is SuffixResult with an additional byte-size marker
// spliced in ahead of the content hash, used when the same transformation
// parameters can legitimately produce different byte sizes across runs (for
// example a variable-bitrate encode) and the cache key must disambiguate
// them.
func SizeSuffixResult(p Params, size int64) string {
	suffixed := SuffixResult(p)
	dotIdx := strings.LastIndexByte(suffixed, '.')
	marker := fmt.Sprintf(".%d", size)
	if dotIdx < 0 {
		return suffixed + marker
	}
	// The content hash segment is the final ".xxxxxxxxxxxxxxxxxxxx" run
	// before the extension; splice the size marker ahead of it.
	hashDot := strings.LastIndexByte(suffixed[:dotIdx], '.')
	if hashDot < 0 {
		return suffixed[:dotIdx] + marker + suffixed[dotIdx:]
	}
	return suffixed[:hashDot] + marker + suffixed[hashDot:]
}
