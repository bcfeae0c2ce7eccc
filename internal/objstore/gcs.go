package objstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

// GCS stores objects in a Google Cloud Storage bucket, using the simple
// (non-resumable) upload and download API — the gateway's objects are small
// enough that resumable upload sessions would be pure overhead.
type GCS struct {
	client     *storage.Client
	bucket     string
	pathPrefix string
	safeChars  cyberpunkpath.SafeCharsType
}

// NewGCS builds a GCS backend from an already-authenticated client — created
// with storage.NewClient(ctx), which picks up Application Default
// Credentials the way the rest of the Google Cloud Go SDK does.
func NewGCS(client *storage.Client, bucket, pathPrefix string, safeChars cyberpunkpath.SafeCharsType) *GCS {
	return &GCS{client: client, bucket: bucket, pathPrefix: pathPrefix, safeChars: safeChars}
}

func (g *GCS) object(key string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(fullKey(g.pathPrefix, key, g.safeChars))
}

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, _ int64) error {
	w := g.object(key).NewWriter(ctx)
	w.ChunkSize = 0 // single-request upload, no resumable session
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs upload %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs finalize upload %q: %w", key, err)
	}
	return nil
}

func (g *GCS) GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	r, err := g.object(key).NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, fmt.Errorf("gcs download %q: %w", key, err)
	}
	return r, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.object(key).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (g *GCS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.object(key).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (g *GCS) Size(ctx context.Context, key string) (int64, error) {
	attrs, err := g.object(key).Attrs(ctx)
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}
