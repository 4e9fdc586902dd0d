package chunk

import (
	"errors"
	"strings"
	"testing"
)

// rejoin reconstructs the original text by stripping the declared overlap
// from every segment after the first.
func rejoin(segments []string, overlap int) string {
	var b strings.Builder
	for i, seg := range segments {
		runes := []rune(seg)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func sampleText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString("lorem ipsum dolor sit amet consectetur")
	}
	return b.String()
}

func TestSplit_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		cfg  Config
	}{
		{"default_config", sampleText(200), DefaultConfig()},
		{"small_windows", sampleText(40), Config{MinLength: 16, MaxLength: 64, Overlap: 8}},
		{"no_overlap", sampleText(40), Config{MinLength: 16, MaxLength: 64, Overlap: 0}},
		{"no_whitespace", strings.Repeat("x", 5000), DefaultConfig()},
		{"unicode", strings.Repeat("héllo wörld über größe ", 300), DefaultConfig()},
		{"short_text", "tiny", DefaultConfig()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := Split(tt.text, tt.cfg)
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			if got := rejoin(segments, tt.cfg.Overlap); got != tt.text {
				t.Errorf("round trip mismatch: got %d runes, want %d", len([]rune(got)), len([]rune(tt.text)))
			}
		})
	}
}

func TestSplit_Bounds(t *testing.T) {
	cfg := Config{MinLength: 32, MaxLength: 128, Overlap: 16}
	segments, err := Split(sampleText(100), cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	for i, seg := range segments {
		n := len([]rune(seg))
		if n > cfg.MaxLength {
			t.Errorf("segment %d has %d runes, exceeds max %d", i, n, cfg.MaxLength)
		}
		if i < len(segments)-1 && n < cfg.MinLength {
			t.Errorf("non-final segment %d has %d runes, below min %d", i, n, cfg.MinLength)
		}
	}
}

func TestSplit_OverlapShared(t *testing.T) {
	cfg := Config{MinLength: 32, MaxLength: 128, Overlap: 16}
	segments, err := Split(sampleText(100), cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i := 1; i < len(segments); i++ {
		prev := []rune(segments[i-1])
		cur := []rune(segments[i])
		tail := string(prev[len(prev)-cfg.Overlap:])
		head := string(cur[:cfg.Overlap])
		if tail != head {
			t.Errorf("segments %d/%d do not share %d runes: %q vs %q", i-1, i, cfg.Overlap, tail, head)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := sampleText(150)
	cfg := DefaultConfig()
	first, err := Split(text, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	second, err := Split(text, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("segment count differs between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs between calls", i)
		}
	}
}

func TestSplit_EmptyText(t *testing.T) {
	segments, err := Split("", DefaultConfig())
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected no segments for empty text, got %d", len(segments))
	}
}

func TestSplit_PrefersWhitespaceBoundary(t *testing.T) {
	// A space sits inside the [min, max] window; the cut should land after it
	// rather than mid-word.
	text := strings.Repeat("a", 60) + " " + strings.Repeat("b", 60)
	cfg := Config{MinLength: 20, MaxLength: 80, Overlap: 0}
	segments, err := Split(text, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if !strings.HasSuffix(segments[0], " ") {
		t.Errorf("first segment should end at the whitespace boundary, got %q", segments[0][len(segments[0])-10:])
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{MinLength: 128, MaxLength: 1024, Overlap: 128}, false},
		{"overlap_equals_min", Config{MinLength: 64, MaxLength: 128, Overlap: 64}, false},
		{"overlap_above_min", Config{MinLength: 64, MaxLength: 128, Overlap: 100}, false},
		{"min_exceeds_max", Config{MinLength: 100, MaxLength: 50, Overlap: 0}, true},
		{"overlap_equals_max", Config{MinLength: 64, MaxLength: 128, Overlap: 128}, true},
		{"negative_overlap", Config{MinLength: 64, MaxLength: 128, Overlap: -1}, true},
		{"zero_min", Config{MinLength: 0, MaxLength: 128, Overlap: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected *ConfigError, got %T", err)
				}
			}
		})
	}
}

func TestConfig_DefaultIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

// Overlap equal to MinLength with a whitespace rune sitting exactly at the
// minimum cut position: without the forward-progress guard the next segment
// would start where the current one did.
func TestSplit_AdvancesWhenOverlapEqualsMin(t *testing.T) {
	cfg := Config{MinLength: 8, MaxLength: 10, Overlap: 8}
	text := strings.Repeat(strings.Repeat("y", 7)+" ", 40)

	segments, err := Split(text, cfg)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	if got := rejoin(segments, cfg.Overlap); got != text {
		t.Errorf("round trip mismatch: got %d runes, want %d", len([]rune(got)), len([]rune(text)))
	}
}

func TestSplit_RoundTripWithDefaultOverlap(t *testing.T) {
	segments, err := Split(sampleText(300), DefaultConfig())
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	if got := rejoin(segments, DefaultConfig().Overlap); got != sampleText(300) {
		t.Error("round trip mismatch with the default overlap")
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	_, err := Split("some text", Config{MinLength: 100, MaxLength: 50, Overlap: 0})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}
