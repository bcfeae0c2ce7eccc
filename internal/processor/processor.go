// Package processor runs ffmpeg transforms against audio buffers under a
// bounded-concurrency gate, so a burst of expensive requests can't fork an
// unbounded number of ffmpeg children.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/cyberpunkpath/gateway/internal/audio"
	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
	"github.com/cyberpunkpath/gateway/internal/metrics"
)

// ErrBusy is returned when the processor's concurrency gate could not be
// acquired before the context was cancelled.
var ErrBusy = errors.New("processor: too many concurrent transforms")

// ErrFilterDisabled is returned when params requests a filter the operator
// has disabled.
var ErrFilterDisabled = errors.New("processor: filter disabled")

// ErrTooManyFilters is returned when params requests more filter operations
// than the configured maximum.
var ErrTooManyFilters = errors.New("processor: too many filter operations")

// Config controls how a Processor invokes ffmpeg.
type Config struct {
	// MaxConcurrency bounds how many ffmpeg processes may run at once.
	// Zero means unlimited.
	MaxConcurrency int64
	// Timeout bounds a single transform's wall-clock time. Zero means no
	// timeout beyond the caller's context.
	Timeout time.Duration
	// FFmpegPath overrides the binary resolved via exec.LookPath.
	FFmpegPath string
	// FFprobePath overrides the binary resolved via exec.LookPath.
	FFprobePath string
	// CustomTags are the process-wide metadata tags merged into every
	// transcode, in addition to each request's own tag_* query params.
	CustomTags map[string]string
	// DisabledFilters names ffmpeg audio filters (by their filter-graph
	// token, e.g. "loudnorm") that requests may never invoke regardless of
	// what params ask for.
	DisabledFilters []string
	// MaxFilterOps bounds how many filter operations a single request's
	// filter graph may chain. Zero means unlimited.
	MaxFilterOps uint32
}

// Processor transforms audio.Buffer values according to cyberpunkpath.Params.
type Processor struct {
	cfg Config
	sem *semaphore.Weighted
}

// New builds a Processor. When cfg.MaxConcurrency is zero the processor
// never blocks on its own gate.
func New(cfg Config) *Processor {
	p := &Processor{cfg: cfg}
	if cfg.MaxConcurrency > 0 {
		p.sem = semaphore.NewWeighted(cfg.MaxConcurrency)
	}
	return p
}

// Process runs the ffmpeg pipeline described by params against src and
// returns the transformed buffer. When params carries no audible
// transforms, it still re-encodes through ffmpeg so that Format overrides
// and output codecs are honored consistently.
func (p *Processor) Process(ctx context.Context, src audio.Buffer, params cyberpunkpath.Params) (audio.Buffer, error) {
	if err := p.validateFilters(params); err != nil {
		return audio.Buffer{}, err
	}

	if p.sem != nil {
		metrics.ProcessorQueueDepth.Inc()
		err := p.sem.Acquire(ctx, 1)
		metrics.ProcessorQueueDepth.Dec()
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		defer p.sem.Release(1)
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	out, format, err := p.runFFmpeg(ctx, src, params)
	if err != nil {
		return audio.Buffer{}, err
	}
	return audio.FromBytesWithFormat(out, format), nil
}

// validateFilters rejects params whose filter graph names a disabled filter
// or chains more operations than the operator allows.
func (p *Processor) validateFilters(params cyberpunkpath.Params) error {
	ops := params.FilterOps()
	if p.cfg.MaxFilterOps > 0 && uint32(len(ops)) > p.cfg.MaxFilterOps {
		return fmt.Errorf("%w: %d exceeds the configured maximum of %d", ErrTooManyFilters, len(ops), p.cfg.MaxFilterOps)
	}
	if len(p.cfg.DisabledFilters) == 0 {
		return nil
	}
	for _, op := range ops {
		name := op
		if idx := strings.IndexByte(op, '='); idx >= 0 {
			name = op[:idx]
		}
		for _, disabled := range p.cfg.DisabledFilters {
			if name == disabled {
				return fmt.Errorf("%w: %q", ErrFilterDisabled, name)
			}
		}
	}
	return nil
}
