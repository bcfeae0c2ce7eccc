package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cyberpunkpath/gateway/internal/audio"
	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
	"github.com/cyberpunkpath/gateway/internal/tags"
)

// runFFmpeg writes src to a scratch file, invokes ffmpeg with the argument
// vector params.FFmpegArgs describes, and reads back the transformed bytes.
func (p *Processor) runFFmpeg(ctx context.Context, src audio.Buffer, params cyberpunkpath.Params) ([]byte, audio.Format, error) {
	ffmpegPath, err := p.lookup(p.cfg.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, audio.Unknown, err
	}

	outputFormat := src.Format()
	if params.Format != nil {
		outputFormat = *params.Format
	}
	if outputFormat == audio.Unknown {
		outputFormat = audio.Mp3
	}

	dir, err := os.MkdirTemp("", "cyberpunkpath-*")
	if err != nil {
		return nil, audio.Unknown, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "in."+src.Format().Ext())
	outputPath := filepath.Join(dir, "out."+outputFormat.Ext())

	if err := os.WriteFile(inputPath, src.Bytes(), 0o644); err != nil {
		return nil, audio.Unknown, fmt.Errorf("write scratch input: %w", err)
	}

	merged, err := tags.Build(p.cfg.CustomTags)
	if err != nil {
		return nil, audio.Unknown, fmt.Errorf("compose tags: %w", err)
	}
	for k, v := range params.Tags {
		merged[k] = v
	}

	args := []string{"-i", inputPath, "-y"}
	for k, v := range merged {
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, params.FFmpegArgs()...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, audio.Unknown, fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}
		return nil, audio.Unknown, fmt.Errorf("ffmpeg failed: %s: %w", stderr.String(), err)
	}

	out, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, audio.Unknown, fmt.Errorf("read scratch output: %w", err)
	}
	return out, outputFormat, nil
}

func (p *Processor) lookup(override, name string) (string, error) {
	if override != "" {
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return path, nil
}
