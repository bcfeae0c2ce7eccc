package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cyberpunkpath/gateway/internal/audio"
	"github.com/cyberpunkpath/gateway/internal/cachekeys"
	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
	"github.com/cyberpunkpath/gateway/internal/ledger"
	"github.com/cyberpunkpath/gateway/internal/metrics"
	"github.com/cyberpunkpath/gateway/internal/processor"
)

// resolveParams splits the wildcard path into its signature-or-"unsafe"
// segment and the actual cyberpunkpath, verifies the signature, and parses
// the remainder plus the query string into Params.
func (s *Service) resolveParams(r *http.Request) (cyberpunkpath.Params, error) {
	wildcard := chi.URLParam(r, "*")
	segments := strings.SplitN(wildcard, "/", 2)
	if len(segments) != 2 || segments[1] == "" {
		return cyberpunkpath.Params{}, badRequest("path must be {signature|unsafe}/{key}")
	}
	sigOrUnsafe, rest := segments[0], segments[1]
	if r.URL.RawQuery != "" {
		rest += "?" + r.URL.RawQuery
	}

	params, err := cyberpunkpath.ParseString(rest)
	if err != nil {
		return cyberpunkpath.Params{}, badRequest("failed to parse params: " + err.Error())
	}

	if sigOrUnsafe != "unsafe" {
		if s.Signer == nil {
			return cyberpunkpath.Params{}, badRequest("signed paths are disabled")
		}
		// Verify against the re-serialized canonical form, not the raw path,
		// so that clients whose query parameters arrive in a different order
		// than when the URL was signed still verify correctly.
		ok, err := s.Signer.Verify(sigOrUnsafe, params.String())
		if err != nil || !ok {
			return cyberpunkpath.Params{}, badRequest("signature verification failed")
		}
	}

	return params, nil
}

// ShowParams handles GET /params/*cyberpunkpath — echoes the parsed Params.
func (s *Service) ShowParams(w http.ResponseWriter, r *http.Request) {
	params, err := s.resolveParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(params)
}

// ShowMeta handles GET /meta/*cyberpunkpath — probes the processed audio and
// returns its metadata as JSON, caching the probe result under a
// method+result key in the same shape as the response cache.
func (s *Service) ShowMeta(w http.ResponseWriter, r *http.Request) {
	params, err := s.resolveParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	metaKey := cachekeys.MetaCache(r.Method, cyberpunkpath.SuffixResult(params))

	if raw, ok, err := s.Cache.Get(r.Context(), metaKey); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
		return
	}

	buf, err := s.fetchSource(r, params)
	if err != nil {
		writeError(w, err)
		return
	}

	processed, err := s.Processor.Process(r.Context(), buf, params)
	if err != nil {
		if errors.Is(err, processor.ErrFilterDisabled) || errors.Is(err, processor.ErrTooManyFilters) {
			writeError(w, badRequest(err.Error()))
			return
		}
		writeError(w, serverError("failed to process audio: "+err.Error()))
		return
	}

	meta, err := s.Processor.Probe(r.Context(), processed)
	if err != nil {
		writeError(w, serverError("failed to extract metadata: "+err.Error()))
		return
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		writeError(w, serverError("failed to encode metadata: "+err.Error()))
		return
	}
	if err := s.Cache.Set(r.Context(), metaKey, raw, ResponseCacheTTL); err != nil {
		slog.Warn("metadata cache write failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

// Process handles GET /*cyberpunkpath — the full pipeline: cache, storage,
// source fetch, process, persist, respond.
func (s *Service) Process(w http.ResponseWriter, r *http.Request) {
	params, err := s.resolveParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	fingerprint := cyberpunkpath.DigestResult(params)
	resultKey := cyberpunkpath.SuffixResult(params)
	respCacheKey := cachekeys.ResponseCache(r.Method, resultKey)

	if data, ok := s.lookupResponseCache(r, respCacheKey); ok {
		metrics.CacheOutcomes.WithLabelValues("hit").Inc()
		s.record(r, fingerprint, resultKey, ledger.CacheHit, int64(len(data)), time.Since(start), nil)
		serveBytes(w, r, data, audio.FromBytes(data).MIME())
		return
	}

	if data, ok := s.lookupResultStorage(r, resultKey); ok {
		metrics.CacheOutcomes.WithLabelValues("miss").Inc()
		s.storeResponseCache(r, respCacheKey, data)
		s.record(r, fingerprint, resultKey, ledger.CacheMiss, int64(len(data)), time.Since(start), nil)
		serveBytes(w, r, data, audio.FromBytes(data).MIME())
		return
	}
	metrics.CacheOutcomes.WithLabelValues("bypass").Inc()

	buf, err := s.fetchSource(r, params)
	if err != nil {
		writeError(w, err)
		return
	}

	processed, err := s.Processor.Process(r.Context(), buf, params)
	if err != nil {
		s.record(r, fingerprint, resultKey, ledger.CacheBypass, 0, time.Since(start), err)
		if errors.Is(err, processor.ErrFilterDisabled) || errors.Is(err, processor.ErrTooManyFilters) {
			writeError(w, badRequest(err.Error()))
			return
		}
		writeError(w, serverError("failed to process audio: "+err.Error()))
		return
	}

	if err := s.Storage.Put(r.Context(), resultKey, bytes.NewReader(processed.Bytes()), int64(processed.Len())); err != nil {
		slog.Warn("result storage write failed", "key", resultKey, "err", err)
		s.record(r, fingerprint, resultKey, ledger.CacheBypass, int64(processed.Len()), time.Since(start), err)
		writeError(w, serverError("failed to save result audio: "+err.Error()))
		return
	}

	s.storeResponseCache(r, respCacheKey, processed.Bytes())
	metrics.JobDuration.Observe(time.Since(start).Seconds())
	s.record(r, fingerprint, resultKey, ledger.CacheBypass, int64(processed.Len()), time.Since(start), nil)

	serveBytes(w, r, processed.Bytes(), processed.MIME())
}

func (s *Service) lookupResponseCache(r *http.Request, key string) ([]byte, bool) {
	data, ok, err := s.Cache.Get(r.Context(), key)
	if err != nil {
		slog.Warn("response cache read failed", "err", err)
		return nil, false
	}
	return data, ok
}

func (s *Service) storeResponseCache(r *http.Request, key string, data []byte) {
	if err := s.Cache.Set(r.Context(), key, data, ResponseCacheTTL); err != nil {
		slog.Warn("response cache write failed", "err", err)
	}
}

func (s *Service) lookupResultStorage(r *http.Request, key string) ([]byte, bool) {
	size, err := s.Storage.Size(r.Context(), key)
	if err != nil {
		return nil, false
	}
	rc, err := s.Storage.GetRange(r.Context(), key, 0, size)
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

// fetchSource resolves the audio referenced by params.Key, either by
// fetching params.Key as a URL or by reading it from source storage.
func (s *Service) fetchSource(r *http.Request, params cyberpunkpath.Params) (audio.Buffer, error) {
	if strings.HasPrefix(params.Key, "https://") || strings.HasPrefix(params.Key, "http://") {
		resp, err := s.HTTPGet(params.Key)
		if err != nil {
			return audio.Buffer{}, notFound("failed to fetch audio: " + err.Error())
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return audio.Buffer{}, notFound("failed to fetch audio: upstream returned " + resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return audio.Buffer{}, serverError("failed to read upstream body: " + err.Error())
		}
		return audio.FromBytes(body), nil
	}

	size, err := s.Storage.Size(r.Context(), params.Key)
	if err != nil {
		return audio.Buffer{}, notFound("failed to fetch audio: " + err.Error())
	}
	rc, err := s.Storage.GetRange(r.Context(), params.Key, 0, size)
	if err != nil {
		return audio.Buffer{}, notFound("failed to fetch audio: " + err.Error())
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return audio.Buffer{}, notFound("failed to read audio: " + err.Error())
	}
	return audio.FromBytes(data), nil
}

func (s *Service) record(r *http.Request, fingerprint, key string, outcome ledger.CacheOutcome, size int64, dur time.Duration, err error) {
	if s.Ledger == nil {
		return
	}
	s.Ledger.Record(r.Context(), ledger.Entry{
		Fingerprint:  fingerprint,
		ObjectKey:    key,
		CacheOutcome: outcome,
		ByteSize:     size,
		Duration:     dur,
		Failed:       err != nil,
		Err:          err,
	})
}
