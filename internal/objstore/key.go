package objstore

import (
	"strings"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

// fullKey composes the object key an S3- or GCS-style backend addresses:
// {pathPrefix}/{normalize(key, safeChars)}. Bucket-based backends have no
// base_dir component of their own — the bucket itself plays that role.
func fullKey(pathPrefix, key string, safeChars cyberpunkpath.SafeCharsType) string {
	safe := cyberpunkpath.Normalize(key, safeChars)
	if pathPrefix == "" {
		return safe
	}
	return strings.TrimSuffix(pathPrefix, "/") + "/" + safe
}
