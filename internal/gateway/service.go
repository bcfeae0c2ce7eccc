// Package gateway wires the cyberpunkpath pipeline into HTTP: signature
// verification, path parsing, the two-level cache, storage, and the
// ffmpeg-backed processor.
package gateway

import (
	"net/http"
	"time"

	"github.com/cyberpunkpath/gateway/internal/cache"
	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
	"github.com/cyberpunkpath/gateway/internal/ledger"
	"github.com/cyberpunkpath/gateway/internal/objstore"
	"github.com/cyberpunkpath/gateway/internal/processor"
)

// ResponseCacheTTL is how long a fully-rendered response is kept in the
// response cache after a processing run.
const ResponseCacheTTL = time.Hour

// Service holds the process-wide references the pipeline needs for the
// lifetime of the server: storage, cache, processor, and (optionally) the
// audit ledger. Built once at startup and never rebuilt.
type Service struct {
	Storage   objstore.ObjectStore
	Cache     cache.Cache
	Processor *processor.Processor
	Signer    *cyberpunkpath.Signer
	Ledger    *ledger.Ledger // nil disables ledger writes
	HTTPGet   func(url string) (*http.Response, error)
}

// New returns a Service whose HTTPGet is http.Get; tests may replace the
// field afterwards.
func New(storage objstore.ObjectStore, respCache cache.Cache, proc *processor.Processor, signer *cyberpunkpath.Signer) *Service {
	return &Service{
		Storage:   storage,
		Cache:     respCache,
		Processor: proc,
		Signer:    signer,
		HTTPGet:   http.Get,
	}
}
