package render

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fragmede/hnflat/internal/thread"
)

const (
	frontmatterType        = "Hacker News Discussions"
	frontmatterDescription = "discussions are represented in markdown lists, nested replies are kept as-is. `[+N]` shows total descendant count."
)

// Meta is the YAML front matter put above a rendered discussion.
type Meta struct {
	Type        string `yaml:"type"`
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	LinkURL     string `yaml:"link_url"`
	Description string `yaml:"description"`
}

// NewMeta describes the discussion at url about post.
func NewMeta(post thread.Post, url string) Meta {
	return Meta{
		Type:        frontmatterType,
		Title:       post.Title,
		URL:         url,
		LinkURL:     post.LinkURL,
		Description: frontmatterDescription,
	}
}

// Frontmatter renders m between "---" delimiter lines.
func Frontmatter(m Meta) (string, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	return "---\n" + string(b) + "---\n", nil
}
