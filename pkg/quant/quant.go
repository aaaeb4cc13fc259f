// Package quant names the in-situ quantization schemes a UQFF artifact can
// be built with, and the catalogs the batch driver iterates.
package quant

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownScheme = errors.New("unknown quantization scheme")

// Scheme is a closed set of quantization type identifiers understood by the
// build engine.
type Scheme uint8

const (
	Q4_0 Scheme = iota + 1
	Q4_1
	Q5_0
	Q5_1
	Q8_0
	Q8_1
	Q2K
	Q3K
	Q4K
	Q5K
	Q6K
	Q8K
	HQQ4
	HQQ8
	F8E4M3
)

var schemeNames = [...]string{
	Q4_0:   "Q4_0",
	Q4_1:   "Q4_1",
	Q5_0:   "Q5_0",
	Q5_1:   "Q5_1",
	Q8_0:   "Q8_0",
	Q8_1:   "Q8_1",
	Q2K:    "Q2K",
	Q3K:    "Q3K",
	Q4K:    "Q4K",
	Q5K:    "Q5K",
	Q6K:    "Q6K",
	Q8K:    "Q8K",
	HQQ4:   "HQQ4",
	HQQ8:   "HQQ8",
	F8E4M3: "F8E4M3",
}

func (s Scheme) String() string {
	if s == 0 || int(s) >= len(schemeNames) {
		return fmt.Sprintf("Scheme(%d)", uint8(s))
	}
	return schemeNames[s]
}

// Lower is the name used in artifact filenames (Q8_0 -> q8_0).
func (s Scheme) Lower() string {
	return strings.ToLower(s.String())
}

func (s Scheme) Valid() bool {
	return s != 0 && int(s) < len(schemeNames)
}

// MarshalText lets schemes appear by name in YAML and JSON documents.
func (s Scheme) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Scheme) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse resolves a scheme name case-insensitively.
func Parse(name string) (Scheme, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range schemeNames {
		if n != "" && n == want {
			return Scheme(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// ParseList parses a comma separated scheme list, keeping the given order.
// Empty entries are skipped and duplicates are dropped.
func ParseList(list string) ([]Scheme, error) {
	var out []Scheme
	seen := make(map[Scheme]bool)
	for part := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := Parse(part)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}
