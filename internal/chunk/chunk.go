// Package chunk splits long text into bounded, overlapping segments
// suitable for independent embedding.
package chunk

import (
	"fmt"
	"unicode"
)

// Config controls how text is segmented.
type Config struct {
	// MinLength is the minimum length of a non-final chunk, in runes.
	MinLength int
	// MaxLength is the maximum length of any chunk, in runes.
	MaxLength int
	// Overlap is the number of runes shared between consecutive chunks.
	Overlap int
}

// DefaultConfig returns the segmentation parameters used for web-page
// ingestion.
func DefaultConfig() Config {
	return Config{
		MinLength: 128,
		MaxLength: 1024,
		Overlap:   128,
	}
}

// ConfigError reports invalid segmentation parameters.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "chunk config: " + e.Reason
}

// Validate checks the constraint 0 < MinLength <= MaxLength and
// 0 <= Overlap < MaxLength. Overlap may equal or exceed MinLength; Split
// still advances on every segment.
func (c Config) Validate() error {
	if c.MinLength <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("min length must be positive, got %d", c.MinLength)}
	}
	if c.MinLength > c.MaxLength {
		return &ConfigError{Reason: fmt.Sprintf("min length %d exceeds max length %d", c.MinLength, c.MaxLength)}
	}
	if c.Overlap < 0 {
		return &ConfigError{Reason: fmt.Sprintf("overlap must be non-negative, got %d", c.Overlap)}
	}
	if c.Overlap >= c.MaxLength {
		return &ConfigError{Reason: fmt.Sprintf("overlap %d must be smaller than max length %d", c.Overlap, c.MaxLength)}
	}
	return nil
}

// Split divides text into consecutive segments. Every segment except
// possibly the last has a length in [MinLength, MaxLength], and each segment
// after the first begins Overlap runes before the end of the previous one,
// so consecutive segments share exactly Overlap runes of content.
//
// Cut points prefer a whitespace boundary near MaxLength and fall back to a
// hard cut when the window [MinLength, MaxLength] contains none. Stripping
// the leading Overlap runes from every segment after the first and
// concatenating reconstructs the input exactly.
//
// Split is pure: same (text, cfg) always yields the same result, and an
// empty text yields no segments.
func Split(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	var segments []string
	start := 0
	for {
		if n-start <= cfg.MaxLength {
			segments = append(segments, string(runes[start:]))
			return segments, nil
		}
		// The cut must land past start+Overlap, or the next segment would
		// start at or before this one and Split would never terminate.
		lo := start + cfg.MinLength
		if lo <= start+cfg.Overlap {
			lo = start + cfg.Overlap + 1
		}
		end := cutPoint(runes, lo, start+cfg.MaxLength)
		segments = append(segments, string(runes[start:end]))
		start = end - cfg.Overlap
	}
}

// cutPoint returns the segment end in [lo, hi], preferring the rightmost
// position that follows a whitespace rune.
func cutPoint(runes []rune, lo, hi int) int {
	for end := hi; end >= lo; end-- {
		if unicode.IsSpace(runes[end-1]) {
			return end
		}
	}
	return hi
}
