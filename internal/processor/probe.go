package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/dhowden/tag"

	"github.com/cyberpunkpath/gateway/internal/audio"
)

// Metadata describes a probed audio buffer: the container/stream facts
// ffprobe reports, plus the tag fields dhowden/tag reads directly out of
// ID3/Vorbis/MP4 containers — ffprobe's own "format.tags" map is often
// sparse or differently-cased across containers, so the two are merged
// rather than one replacing the other.
type Metadata struct {
	Format     string            `json:"format"`
	Duration   float64           `json:"duration,omitempty"`
	BitRate    int64             `json:"bit_rate,omitempty"`
	SampleRate int64             `json:"sample_rate,omitempty"`
	Channels   int64             `json:"channels,omitempty"`
	Codec      string            `json:"codec,omitempty"`
	Size       int64             `json:"size,omitempty"`
	Tags       map[string]string `json:"tags"`
}

type probeOutput struct {
	Format struct {
		FormatName string            `json:"format_name"`
		Duration   string            `json:"duration"`
		BitRate    string            `json:"bit_rate"`
		Size       string            `json:"size"`
		Tags       map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType  string            `json:"codec_type"`
		CodecName  string            `json:"codec_name"`
		SampleRate string            `json:"sample_rate"`
		Channels   int64             `json:"channels"`
		Tags       map[string]string `json:"tags"`
	} `json:"streams"`
}

// Probe runs ffprobe against buf and enriches the result with tags read
// directly from the container by dhowden/tag.
func (p *Processor) Probe(ctx context.Context, buf audio.Buffer) (Metadata, error) {
	ffprobePath, err := p.lookup(p.cfg.FFprobePath, "ffprobe")
	if err != nil {
		return Metadata{}, err
	}

	dir, err := os.MkdirTemp("", "cyberpunkpath-probe-*")
	if err != nil {
		return Metadata{}, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "in."+buf.Format().Ext())
	if err := os.WriteFile(inputPath, buf.Bytes(), 0o644); err != nil {
		return Metadata{}, fmt.Errorf("write scratch input: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.Output()
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe failed: %s: %w", stderr.String(), err)
	}

	var raw probeOutput
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return Metadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := Metadata{
		Format:   raw.Format.FormatName,
		Duration: parseFloat(raw.Format.Duration),
		BitRate:  parseInt(raw.Format.BitRate),
		Size:     parseInt(raw.Format.Size),
		Tags:     map[string]string{},
	}
	for k, v := range raw.Format.Tags {
		meta.Tags[k] = v
	}

	for _, stream := range raw.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		meta.Codec = stream.CodecName
		meta.SampleRate = parseInt(stream.SampleRate)
		meta.Channels = stream.Channels
		for k, v := range stream.Tags {
			meta.Tags[k] = v
		}
		break
	}

	enrichWithTagLib(buf, &meta)

	return meta, nil
}

// enrichWithTagLib fills in any tag fields ffprobe missed by reading the
// container's own tag frames. Failures here are non-fatal: ffprobe's view
// already stands on its own.
func enrichWithTagLib(buf audio.Buffer, meta *Metadata) {
	m, err := tag.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return
	}
	setIfMissing(meta.Tags, "title", m.Title())
	setIfMissing(meta.Tags, "artist", m.Artist())
	setIfMissing(meta.Tags, "album", m.Album())
	setIfMissing(meta.Tags, "album_artist", m.AlbumArtist())
	setIfMissing(meta.Tags, "genre", m.Genre())
	setIfMissing(meta.Tags, "composer", m.Composer())
	if year := m.Year(); year != 0 {
		setIfMissing(meta.Tags, "year", strconv.Itoa(year))
	}
	if track, _ := m.Track(); track != 0 {
		setIfMissing(meta.Tags, "track", strconv.Itoa(track))
	}
}

func setIfMissing(tags map[string]string, key, value string) {
	if value == "" {
		return
	}
	if _, ok := tags[key]; ok {
		return
	}
	tags[key] = value
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
