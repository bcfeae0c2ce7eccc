package cyberpunkpath

import (
	"net/url"
	"strings"
	"testing"

	"github.com/cyberpunkpath/gateway/internal/audio"
)

func TestParamsString(t *testing.T) {
	mp3 := audio.Mp3
	q := 0.5
	p := Params{Key: "test.mp3", Format: &mp3, Quality: &q}

	out := p.String()
	if !strings.HasPrefix(out, "test.mp3?") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "format=mp3") {
		t.Errorf("missing format: %q", out)
	}
	if !strings.Contains(out, "quality=0.5") {
		t.Errorf("missing quality: %q", out)
	}
}

func TestFromPathBasic(t *testing.T) {
	p, err := FromPath("audio/test.mp3", url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Key != "test.mp3" {
		t.Errorf("key = %q, want test.mp3", p.Key)
	}
	if p.Format != nil {
		t.Error("format should be nil")
	}
}

func TestFromPathWithFormat(t *testing.T) {
	q := url.Values{"format": {"wav"}}
	p, err := FromPath("audio/test.mp3", q)
	if err != nil {
		t.Fatal(err)
	}
	if p.Format == nil || *p.Format != audio.Wav {
		t.Errorf("format = %v, want Wav", p.Format)
	}
}

func TestFromPathWithMultipleParams(t *testing.T) {
	q := url.Values{
		"format":  {"wav"},
		"volume":  {"0.8"},
		"reverse": {"true"},
	}
	p, err := FromPath("audio/test.mp3", q)
	if err != nil {
		t.Fatal(err)
	}
	if p.Format == nil || *p.Format != audio.Wav {
		t.Errorf("format = %v", p.Format)
	}
	if p.Volume == nil || *p.Volume != 0.8 {
		t.Errorf("volume = %v", p.Volume)
	}
	if p.Reverse == nil || !*p.Reverse {
		t.Errorf("reverse = %v", p.Reverse)
	}
}

func TestParseString(t *testing.T) {
	p, err := ParseString("/audio/test.mp3?format=wav&volume=0.8&reverse=true")
	if err != nil {
		t.Fatal(err)
	}
	if p.Key != "test.mp3" {
		t.Errorf("key = %q", p.Key)
	}
	if p.Format == nil || *p.Format != audio.Wav {
		t.Errorf("format = %v", p.Format)
	}
	if p.Volume == nil || *p.Volume != 0.8 {
		t.Errorf("volume = %v", p.Volume)
	}
}

func TestParseStringNoQuery(t *testing.T) {
	p, err := ParseString("/audio/test.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if p.Key != "test.mp3" {
		t.Errorf("key = %q", p.Key)
	}
}

func TestToQuery(t *testing.T) {
	wav := audio.Wav
	vol := 0.8
	rev := true
	p := Params{Key: "test.mp3", Format: &wav, Volume: &vol, Reverse: &rev}

	q := p.ToQuery()
	if q.Get("format") != "wav" {
		t.Errorf("format = %q", q.Get("format"))
	}
	if q.Get("volume") != "0.8" {
		t.Errorf("volume = %q", q.Get("volume"))
	}
	if q.Get("reverse") != "true" {
		t.Errorf("reverse = %q", q.Get("reverse"))
	}
}

func TestFFmpegArgs(t *testing.T) {
	wav := audio.Wav
	codec := "pcm_s16le"
	sr := 44100
	ch := 2
	p := Params{Key: "test.mp3", Format: &wav, Codec: &codec, SampleRate: &sr, Channels: &ch}

	args := p.FFmpegArgs()
	want := []string{"-f", "wav", "-c:a", "pcm_s16le", "-ar", "44100", "-ac", "2"}
	for i, w := range want {
		if i >= len(args) || args[i] != w {
			t.Fatalf("args = %v, want prefix %v", args, want)
		}
	}
}

func TestCollectFilters(t *testing.T) {
	vol := 0.8
	rev := true
	lp := 1000.0
	fi := 2.0
	fo := 3.0
	p := Params{Key: "test.mp3", Volume: &vol, Reverse: &rev, Lowpass: &lp, FadeIn: &fi, FadeOut: &fo}

	filters := p.collectFilters()
	want := []string{"volume=0.80", "areverse", "lowpass=f=1000.0", "afade=t=in:d=2.000", "afade=t=out:d=3.000"}
	for _, w := range want {
		found := false
		for _, f := range filters {
			if f == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing filter %q in %v", w, filters)
		}
	}
}

func TestToUnsafeStringContent(t *testing.T) {
	mp3 := audio.Mp3
	p := Params{Key: "test.mp3", Format: &mp3}
	result := ToUnsafeString(p)
	if !strings.HasPrefix(result, "unsafe/") {
		t.Errorf("expected unsafe/ prefix, got %q", result)
	}
	if !strings.Contains(result, "test.mp3?format=mp3") {
		t.Errorf("unexpected content: %q", result)
	}
}

func TestCustomFiltersAndOptions(t *testing.T) {
	q := url.Values{
		"filter_1": {"vibrato=f=5:d=0.5"},
		"option_1": {"-map_metadata"},
	}
	p, err := FromPath("test.mp3", q)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.CustomFilters) != 1 || p.CustomFilters[0] != "vibrato=f=5:d=0.5" {
		t.Errorf("custom filters = %v", p.CustomFilters)
	}
	if len(p.CustomOptions) != 1 || p.CustomOptions[0] != "-map_metadata" {
		t.Errorf("custom options = %v", p.CustomOptions)
	}
}

func TestTags(t *testing.T) {
	q := url.Values{
		"tag_artist": {"Test Artist"},
		"tag_album":  {"Test Album"},
	}
	p, err := FromPath("test.mp3", q)
	if err != nil {
		t.Fatal(err)
	}
	if p.Tags["artist"] != "Test Artist" {
		t.Errorf("artist tag = %q", p.Tags["artist"])
	}
	if p.Tags["album"] != "Test Album" {
		t.Errorf("album tag = %q", p.Tags["album"])
	}
}

func TestNormalizeLevelDefault(t *testing.T) {
	norm := true
	p := Params{Key: "t.mp3", Normalize: &norm}
	filters := p.collectFilters()
	found := false
	for _, f := range filters {
		if f == "loudnorm=I=-16.0" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected default normalize level -16.0, got %v", filters)
	}
}
