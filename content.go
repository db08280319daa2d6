package orrery

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

//go:embed data/content.yaml
var defaultContent []byte

var contentPolicy = bluemonday.UGCPolicy()

// Content is the detail fragment of a body, ready for display.
type Content struct {
	Key   BodyKey `json:"key"`
	Title string  `json:"title"`
	HTML  string  `json:"html"`
}

// ContentLookup resolves a body to its detail content. A miss is a valid result.
type ContentLookup interface {
	Lookup(key BodyKey) (Content, bool)
}

// ContentStore is an in memory ContentLookup.
type ContentStore struct {
	entries map[BodyKey]Content
}

type contentEntry struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

// DefaultContent returns the embedded content for the provided bodies.
func DefaultContent(bodies []BodyDefinition) (*ContentStore, error) {
	return NewContentStore(defaultContent, bodies)
}

// LoadContentFile reads the content from a YAML file.
func LoadContentFile(path string, bodies []BodyDefinition) (*ContentStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewContentStore(data, bodies)
}

// NewContentStore parses YAML content keyed by body name. The markdown summary of each entry
// is rendered to sanitized HTML, followed by the physical facts of the matching body if any.
func NewContentStore(data []byte, bodies []BodyDefinition) (*ContentStore, error) {
	raw := map[string]contentEntry{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	known := make(map[BodyKey]BodyDefinition, len(bodies))
	for _, b := range bodies {
		known[b.Key()] = b
	}
	store := &ContentStore{entries: make(map[BodyKey]Content, len(raw))}
	for name, entry := range raw {
		key := KeyOf(name)
		md := entry.Summary
		if b, ok := known[key]; ok {
			md += "\n" + bodyFacts(b)
		}
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(md), &buf); err != nil {
			return nil, fmt.Errorf("content '%s': %w", key, err)
		}
		title := entry.Title
		if title == "" {
			title = name
		}
		store.entries[key] = Content{Key: key, Title: title, HTML: contentPolicy.Sanitize(buf.String())}
	}
	return store, nil
}

// Lookup implements ContentLookup.
func (s *ContentStore) Lookup(key BodyKey) (Content, bool) {
	if s == nil {
		return Content{}, false
	}
	c, ok := s.entries[key]
	return c, ok
}

// Len returns the number of entries.
func (s *ContentStore) Len() int {
	return len(s.entries)
}

func bodyFacts(b BodyDefinition) string {
	facts := fmt.Sprintf("- Radius: %s km\n", humanize.Commaf(b.RadiusKm))
	if b.SemiMajorAxisKm > 0 {
		facts += fmt.Sprintf("- Semi-major axis: %s km (%.3f AU)\n", humanize.Comma(int64(b.SemiMajorAxisKm)), b.SemiMajorAxisKm/AU)
	}
	if b.OrbitalPeriodDays > 0 {
		facts += fmt.Sprintf("- Orbital period: %s days\n", humanize.Commaf(b.OrbitalPeriodDays))
	}
	return facts
}
