package markdown

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugger hands out unique heading anchors. Repeated texts get "-1", "-2"
// and so on appended. Use one Slugger per document.
type Slugger struct {
	seen map[string]int
}

// NewSlugger returns an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns a unique anchor for text.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)
	if base == "" {
		base = "heading"
	}
	slug := base
	for {
		if _, taken := s.seen[slug]; !taken {
			break
		}
		s.seen[base]++
		slug = base + "-" + strconv.Itoa(s.seen[base])
	}
	s.seen[slug] = 0
	return slug
}

// Reset forgets all handed out anchors.
func (s *Slugger) Reset() {
	clear(s.seen)
}

// Slugify lowercases text, turns spaces into hyphens and drops everything
// that is not a letter, number, mark, hyphen or underscore.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsMark(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
