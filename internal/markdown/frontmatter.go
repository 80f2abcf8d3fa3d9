package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ParseFrontMatter splits source into its metadata block and Markdown body.
// Files without a metadata block yield an empty FrontMatter.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return env.frontMatter(), body, nil
}

// BuildDocument parses source into a Document for path.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}

type envelope struct {
	Title   string         `yaml:"title"`
	Slug    string         `yaml:"slug"`
	Lead    string         `yaml:"lead"`
	Summary string         `yaml:"summary"`
	Author  string         `yaml:"author"`
	Date    time.Time      `yaml:"date"`
	Tags    []string       `yaml:"tags"`
	CSS     string         `yaml:"css"`
	JS      string         `yaml:"js"`
	Draft   bool           `yaml:"draft"`
	Custom  map[string]any `yaml:",inline"`
}

func (e envelope) frontMatter() interfaces.FrontMatter {
	lead := e.Lead
	if lead == "" {
		lead = e.Summary
	}

	tags := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	custom := maps.Clone(e.Custom)
	if custom == nil {
		custom = map[string]any{}
	}

	return interfaces.FrontMatter{
		Title:  strings.TrimSpace(e.Title),
		Slug:   strings.TrimSpace(e.Slug),
		Lead:   strings.TrimSpace(lead),
		Author: strings.TrimSpace(e.Author),
		Date:   e.Date,
		Tags:   tags,
		CSS:    strings.TrimSpace(e.CSS),
		JS:     strings.TrimSpace(e.JS),
		Draft:  e.Draft,
		Custom: custom,
	}
}
