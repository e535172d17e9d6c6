// Package announce turns raw feed items and banner strings into
// speakable text.
package announce

import (
	"strings"
)

// Defaults matching the live-room page this monitor was built for.
const (
	DefaultMaxNameLength = 10
	DefaultTemplate      = "{name}说：{body}"
	DefaultFallbackName  = "未知用户"
	DefaultFallbackBody  = "无内容"
)

// Template placeholders.
const (
	PlaceholderName = "{name}"
	PlaceholderBody = "{body}"
)

// Option configures the Normalizer.
type Option func(*Normalizer)

// WithMaxNameLength sets how many runes of the speaker name are kept.
// Zero or a negative value disables truncation.
func WithMaxNameLength(n int) Option {
	return func(z *Normalizer) {
		z.maxNameLength = n
	}
}

// WithTemplate sets the feed message template. It should contain the
// {name} and {body} placeholders.
func WithTemplate(tmpl string) Option {
	return func(z *Normalizer) {
		if tmpl != "" {
			z.template = tmpl
		}
	}
}

// WithFallbacks sets the text substituted for a missing name or body.
func WithFallbacks(name, body string) Option {
	return func(z *Normalizer) {
		if name != "" {
			z.fallbackName = name
		}
		if body != "" {
			z.fallbackBody = body
		}
	}
}

// Normalizer is a pure text transformer. It holds configuration only and
// is safe for concurrent use.
type Normalizer struct {
	maxNameLength int
	template      string
	fallbackName  string
	fallbackBody  string
}

// New creates a Normalizer with the defaults above.
func New(opts ...Option) *Normalizer {
	z := &Normalizer{
		maxNameLength: DefaultMaxNameLength,
		template:      DefaultTemplate,
		fallbackName:  DefaultFallbackName,
		fallbackBody:  DefaultFallbackBody,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// FeedItem composes the announcement for one feed item. The name is
// truncated, the body never is. Missing parts get the fallback text.
func (z *Normalizer) FeedItem(speakerName, body string) string {
	if speakerName == "" {
		speakerName = z.fallbackName
	}
	if body == "" {
		body = z.fallbackBody
	}
	name := TruncateName(speakerName, z.maxNameLength)

	// Single pass: placeholders typed by viewers are never expanded.
	return strings.NewReplacer(PlaceholderName, name, PlaceholderBody, body).Replace(z.template)
}

// Banner normalizes a status banner string.
func (z *Normalizer) Banner(text string) string {
	return strings.TrimSpace(text)
}

// TruncateName keeps the first max runes of name. A max of zero or less
// leaves the name unchanged.
func TruncateName(name string, max int) string {
	if max <= 0 {
		return name
	}
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max])
}
