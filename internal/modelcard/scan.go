// Package modelcard reconstructs quantization metadata from a directory of
// UQFF artifacts and renders a Markdown model card for them.
package modelcard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samcharles93/uqff/internal/layout"
)

// ErrNoArtifacts is returned when a directory holds no artifact files.
var ErrNoArtifacts = errors.New("no ." + layout.Extension + " files found")

// Artifact is one artifact file found by Scan.
type Artifact struct {
	Path string // path as found under the scanned directory
	Name string // base filename
	Stem string // Name without its extension
	Key  string // grouping key, see GroupingKey
}

// Group is the set of artifact files sharing a grouping key, in discovery
// order. The first member represents the group.
type Group struct {
	Key     string
	Members []Artifact
}

func (g *Group) Representative() Artifact { return g.Members[0] }

// GroupingKey strips a trailing "-<digits>" shard suffix from stem:
// "model-q4k-1" and "model-q4k" both key to "model-q4k".
func GroupingKey(stem string) string {
	i := strings.LastIndexByte(stem, '-')
	if i < 0 || !isDigits(stem[i+1:]) {
		return stem
	}
	return stem[:i]
}

// Scan lists the regular files in dir whose extension is .uqff (any case)
// and groups them by GroupingKey. Groups are returned sorted by key.
func Scan(dir string) ([]*Group, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	byKey := make(map[string]*Group)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, "."+layout.Extension) {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		a := Artifact{
			Path: filepath.Join(dir, name),
			Name: name,
			Stem: stem,
			Key:  GroupingKey(stem),
		}
		g, ok := byKey[a.Key]
		if !ok {
			g = &Group{Key: a.Key}
			byKey[a.Key] = g
		}
		g.Members = append(g.Members, a)
	}

	groups := make([]*Group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
