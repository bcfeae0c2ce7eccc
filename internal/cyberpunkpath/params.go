// Package cyberpunkpath implements the canonical path/query parsing,
// normalization, fingerprinting and signing rules shared by every route that
// accepts a "/{signature}/{key}?{transform-params}" path.
package cyberpunkpath

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cyberpunkpath/gateway/internal/audio"
)

// Params is the canonical, fully-parsed representation of a transformation
// request: the source audio key plus every optional transcode/filter/tag
// directive the query string can carry.
type Params struct {
	// Key is the source audio identifier — usually the last path segment,
	// which may itself be a full http(s) URL.
	Key string

	Format           *audio.Format
	Codec            *string
	SampleRate       *int
	Channels         *int
	BitRate          *int
	BitDepth         *int
	Quality          *float64
	CompressionLevel *int

	StartTime *float64
	Duration  *float64
	Speed     *float64
	Reverse   *bool

	Volume         *float64
	Normalize      *bool
	NormalizeLevel *float64

	Lowpass        *float64
	Highpass       *float64
	Bandpass       *string
	Bass           *float64
	Treble         *float64
	Echo           *string
	Chorus         *string
	Flanger        *string
	Phaser         *string
	Tremolo        *string
	Compressor     *string
	NoiseReduction *string

	FadeIn    *float64
	FadeOut   *float64
	CrossFade *float64

	CustomFilters []string
	CustomOptions []string

	Tags map[string]string
}

// FromPath parses a path component and its query values into a Params. path
// is expected to already have any "/params" or "/meta" route prefix
// stripped; only its final "/"-delimited segment becomes the Key.
func FromPath(path string, query url.Values) (Params, error) {
	var p Params

	segments := strings.Split(path, "/")
	p.Key = segments[len(segments)-1]
	if p.Key == "" {
		return Params{}, fmt.Errorf("invalid audio path %q: no key segment", path)
	}

	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		value := values[0]

		switch key {
		case "format":
			if f, err := audio.ParseFormat(value); err == nil {
				p.Format = &f
			} else {
				mp3 := audio.Mp3
				p.Format = &mp3
			}
		case "codec":
			p.Codec = strPtr(value)
		case "sample_rate":
			p.SampleRate = intPtr(value)
		case "channels":
			p.Channels = intPtr(value)
		case "bit_rate":
			p.BitRate = intPtr(value)
		case "bit_depth":
			p.BitDepth = intPtr(value)
		case "quality":
			p.Quality = floatPtr(value)
		case "compression_level":
			p.CompressionLevel = intPtr(value)
		case "start_time":
			p.StartTime = floatPtr(value)
		case "duration":
			p.Duration = floatPtr(value)
		case "speed":
			p.Speed = floatPtr(value)
		case "reverse":
			p.Reverse = boolPtr(value)
		case "volume":
			p.Volume = floatPtr(value)
		case "normalize":
			p.Normalize = boolPtr(value)
		case "normalize_level":
			p.NormalizeLevel = floatPtr(value)
		case "lowpass":
			p.Lowpass = floatPtr(value)
		case "highpass":
			p.Highpass = floatPtr(value)
		case "bandpass":
			p.Bandpass = strPtr(value)
		case "bass":
			p.Bass = floatPtr(value)
		case "treble":
			p.Treble = floatPtr(value)
		case "echo":
			p.Echo = strPtr(value)
		case "chorus":
			p.Chorus = strPtr(value)
		case "flanger":
			p.Flanger = strPtr(value)
		case "phaser":
			p.Phaser = strPtr(value)
		case "tremolo":
			p.Tremolo = strPtr(value)
		case "compressor":
			p.Compressor = strPtr(value)
		case "noise_reduction":
			p.NoiseReduction = strPtr(value)
		case "fade_in":
			p.FadeIn = floatPtr(value)
		case "fade_out":
			p.FadeOut = floatPtr(value)
		case "cross_fade":
			p.CrossFade = floatPtr(value)
		default:
			switch {
			case strings.HasPrefix(key, "tag_"):
				if p.Tags == nil {
					p.Tags = make(map[string]string)
				}
				p.Tags[strings.TrimPrefix(key, "tag_")] = value
			case strings.HasPrefix(key, "filter_"):
				p.CustomFilters = append(p.CustomFilters, value)
			case strings.HasPrefix(key, "option_"):
				p.CustomOptions = append(p.CustomOptions, value)
			}
		}
	}

	return p, nil
}

// ParseString parses a "{path}?{query}" string, e.g. as stripped from an
// incoming request URI after any signature segment has been removed.
func ParseString(s string) (Params, error) {
	path, rawQuery, _ := strings.Cut(s, "?")
	path = strings.TrimPrefix(path, "/")

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Params{}, fmt.Errorf("parse query: %w", err)
	}
	return FromPath(path, query)
}

func strPtr(s string) *string { return &s }

func intPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func floatPtr(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func boolPtr(s string) *bool {
	v := s == "true" || s == "1"
	return &v
}

// ToQuery reconstructs the query string values that would reparse into an
// equal Params. Custom filters and options are emitted as numbered
// filter_N / option_N entries, the prefixed names FromPath reads back;
// FromPath walks the query in map order, so the relative order of several
// custom filters or options is not preserved on reparse. url.Values itself
// is unordered: String's Encode call sorts the keys.
func (p Params) ToQuery() url.Values {
	q := url.Values{}

	if p.Format != nil {
		q.Set("format", p.Format.String())
	}
	if p.Codec != nil {
		q.Set("codec", *p.Codec)
	}
	if p.SampleRate != nil {
		q.Set("sample_rate", strconv.Itoa(*p.SampleRate))
	}
	if p.Channels != nil {
		q.Set("channels", strconv.Itoa(*p.Channels))
	}
	if p.BitRate != nil {
		q.Set("bit_rate", strconv.Itoa(*p.BitRate))
	}
	if p.BitDepth != nil {
		q.Set("bit_depth", strconv.Itoa(*p.BitDepth))
	}
	if p.Quality != nil {
		q.Set("quality", formatFloat(*p.Quality))
	}
	if p.CompressionLevel != nil {
		q.Set("compression_level", strconv.Itoa(*p.CompressionLevel))
	}
	if p.StartTime != nil {
		q.Set("start_time", formatFloat(*p.StartTime))
	}
	if p.Duration != nil {
		q.Set("duration", formatFloat(*p.Duration))
	}
	if p.Speed != nil {
		q.Set("speed", formatFloat(*p.Speed))
	}
	if p.Reverse != nil {
		q.Set("reverse", strconv.FormatBool(*p.Reverse))
	}
	if p.Volume != nil {
		q.Set("volume", formatFloat(*p.Volume))
	}
	if p.Normalize != nil {
		q.Set("normalize", strconv.FormatBool(*p.Normalize))
	}
	if p.NormalizeLevel != nil {
		q.Set("normalize_level", formatFloat(*p.NormalizeLevel))
	}
	if p.Lowpass != nil {
		q.Set("lowpass", formatFloat(*p.Lowpass))
	}
	if p.Highpass != nil {
		q.Set("highpass", formatFloat(*p.Highpass))
	}
	if p.Bandpass != nil {
		q.Set("bandpass", *p.Bandpass)
	}
	if p.Bass != nil {
		q.Set("bass", formatFloat(*p.Bass))
	}
	if p.Treble != nil {
		q.Set("treble", formatFloat(*p.Treble))
	}
	if p.Echo != nil {
		q.Set("echo", *p.Echo)
	}
	if p.Chorus != nil {
		q.Set("chorus", *p.Chorus)
	}
	if p.Flanger != nil {
		q.Set("flanger", *p.Flanger)
	}
	if p.Phaser != nil {
		q.Set("phaser", *p.Phaser)
	}
	if p.Tremolo != nil {
		q.Set("tremolo", *p.Tremolo)
	}
	if p.Compressor != nil {
		q.Set("compressor", *p.Compressor)
	}
	if p.NoiseReduction != nil {
		q.Set("noise_reduction", *p.NoiseReduction)
	}
	if p.FadeIn != nil {
		q.Set("fade_in", formatFloat(*p.FadeIn))
	}
	if p.FadeOut != nil {
		q.Set("fade_out", formatFloat(*p.FadeOut))
	}
	if p.CrossFade != nil {
		q.Set("cross_fade", formatFloat(*p.CrossFade))
	}
	for i, f := range p.CustomFilters {
		q.Set(fmt.Sprintf("filter_%d", i), f)
	}
	for i, o := range p.CustomOptions {
		q.Set(fmt.Sprintf("option_%d", i), o)
	}
	if len(p.Tags) > 0 {
		keys := make([]string, 0, len(p.Tags))
		for k := range p.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set("tag_"+k, p.Tags[k])
		}
	}

	return q
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// String renders the canonical "{key}?{sorted query}" form used as the input
// to both fingerprinting and signing. Query keys are emitted in sorted order
// (url.Values.Encode already does this), so Params with equal field values
// always serialize identically regardless of how the query arrived.
func (p Params) String() string {
	query := p.ToQuery().Encode()
	if query == "" {
		return p.Key
	}
	return p.Key + "?" + query
}

// FFmpegArgs builds the ffmpeg argument vector for these Params, in the exact
// field order ffmpeg expects global/output options: format, codec, sample
// rate, channels, bit rate, quality, compression level, seek, duration,
// filter graph, then any raw custom options appended verbatim.
func (p Params) FFmpegArgs() []string {
	var args []string

	if p.Format != nil {
		args = append(args, "-f", p.Format.String())
	}
	if p.Codec != nil {
		args = append(args, "-c:a", *p.Codec)
	}
	if p.SampleRate != nil {
		args = append(args, "-ar", strconv.Itoa(*p.SampleRate))
	}
	if p.Channels != nil {
		args = append(args, "-ac", strconv.Itoa(*p.Channels))
	}
	if p.BitRate != nil {
		args = append(args, "-b:a", fmt.Sprintf("%dk", *p.BitRate))
	}
	if p.Quality != nil {
		args = append(args, "-q:a", fmt.Sprintf("%.1f", *p.Quality))
	}
	if p.CompressionLevel != nil {
		args = append(args, "-compression_level", strconv.Itoa(*p.CompressionLevel))
	}
	if p.StartTime != nil {
		args = append(args, "-ss", fmt.Sprintf("%.3f", *p.StartTime))
	}
	if p.Duration != nil {
		args = append(args, "-t", fmt.Sprintf("%.3f", *p.Duration))
	}

	if filters := p.collectFilters(); len(filters) > 0 {
		args = append(args, "-filter:a", strings.Join(filters, ","))
	}

	args = append(args, p.CustomOptions...)

	return args
}

// FilterOps returns the ordered list of ffmpeg filter-graph operations these
// Params would apply, each as its filter-graph token (e.g. "atempo=1.500"
// or "areverse") — the same list FFmpegArgs joins into -filter:a. Exposed
// so callers can police the filter chain (disabled filters, op-count caps)
// without re-deriving it.
func (p Params) FilterOps() []string {
	return p.collectFilters()
}

// collectFilters builds the comma-joined -filter:a graph, applying audio
// effects in a fixed order: tempo, direction, level, then the named filter
// bank, then fades, then any custom filters.
func (p Params) collectFilters() []string {
	var filters []string

	if p.Speed != nil && *p.Speed != 1.0 {
		filters = append(filters, fmt.Sprintf("atempo=%.3f", *p.Speed))
	}
	if p.Reverse != nil && *p.Reverse {
		filters = append(filters, "areverse")
	}
	if p.Volume != nil && *p.Volume != 1.0 {
		filters = append(filters, fmt.Sprintf("volume=%.2f", *p.Volume))
	}
	if p.Normalize != nil && *p.Normalize {
		level := -16.0
		if p.NormalizeLevel != nil {
			level = *p.NormalizeLevel
		}
		filters = append(filters, fmt.Sprintf("loudnorm=I=%.1f", level))
	}
	if p.Lowpass != nil {
		filters = append(filters, fmt.Sprintf("lowpass=f=%.1f", *p.Lowpass))
	}
	if p.Highpass != nil {
		filters = append(filters, fmt.Sprintf("highpass=f=%.1f", *p.Highpass))
	}
	if p.Bandpass != nil {
		filters = append(filters, fmt.Sprintf("bandpass=%s", *p.Bandpass))
	}
	if p.Bass != nil {
		filters = append(filters, fmt.Sprintf("bass=g=%.1f", *p.Bass))
	}
	if p.Treble != nil {
		filters = append(filters, fmt.Sprintf("treble=g=%.1f", *p.Treble))
	}
	if p.Echo != nil {
		filters = append(filters, fmt.Sprintf("aecho=%s", *p.Echo))
	}
	if p.Chorus != nil {
		filters = append(filters, fmt.Sprintf("chorus=%s", *p.Chorus))
	}
	if p.Flanger != nil {
		filters = append(filters, fmt.Sprintf("flanger=%s", *p.Flanger))
	}
	if p.Phaser != nil {
		filters = append(filters, fmt.Sprintf("aphaser=%s", *p.Phaser))
	}
	if p.Tremolo != nil {
		filters = append(filters, fmt.Sprintf("tremolo=%s", *p.Tremolo))
	}
	if p.Compressor != nil {
		filters = append(filters, fmt.Sprintf("acompressor=%s", *p.Compressor))
	}
	if p.NoiseReduction != nil {
		filters = append(filters, fmt.Sprintf("anlmdn=%s", *p.NoiseReduction))
	}
	if p.FadeIn != nil {
		filters = append(filters, fmt.Sprintf("afade=t=in:d=%.3f", *p.FadeIn))
	}
	if p.FadeOut != nil {
		filters = append(filters, fmt.Sprintf("afade=t=out:d=%.3f", *p.FadeOut))
	}
	if p.CrossFade != nil {
		filters = append(filters, fmt.Sprintf("acrossfade=d=%.3f", *p.CrossFade))
	}

	filters = append(filters, p.CustomFilters...)

	return filters
}
