package interfaces

import (
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// Document represents a Markdown post file with parsed metadata and body.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	LastModified time.Time
	// Checksum stores a SHA-256 digest of the original file content so
	// repeated imports can skip unchanged files.
	Checksum []byte
}

// FrontMatter models the metadata block at the top of a Markdown post.
type FrontMatter struct {
	Title  string         `yaml:"title" json:"title"`
	Slug   string         `yaml:"slug" json:"slug"`
	Lead   string         `yaml:"lead" json:"lead"`
	Author string         `yaml:"author" json:"author"`
	Date   time.Time      `yaml:"date" json:"date"`
	Tags   []string       `yaml:"tags" json:"tags"`
	CSS    string         `yaml:"css" json:"css"`
	JS     string         `yaml:"js" json:"js"`
	Draft  bool           `yaml:"draft" json:"draft"`
	Custom map[string]any `yaml:",inline" json:"custom"`
}
