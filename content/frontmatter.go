package content

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Date is a publication date in both machine and display form.
type Date struct {
	Raw       time.Time
	ISO       string // 2006-01-02T15:04:05.000Z
	Formatted string // January 2, 2006
}

// Meta is the validated front-matter of a post.
type Meta struct {
	Title       string
	Date        Date
	Draft       bool
	Description string
	Categories  []string
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NewDate builds a Date from t, normalized to UTC.
func NewDate(t time.Time) Date {
	t = t.UTC()
	return Date{
		Raw:       t,
		ISO:       t.Format("2006-01-02T15:04:05.000Z"),
		Formatted: t.Format("January 2, 2006"),
	}
}

// ParseDocument splits raw markdown into validated front-matter and body.
// A document without a front-matter block fails validation because title,
// date and description are required.
func ParseDocument(raw string) (Meta, string, error) {
	attrs, body, err := splitFrontMatter(raw)
	if err != nil {
		return Meta{}, "", err
	}
	meta, err := ValidateMeta(attrs)
	if err != nil {
		return Meta{}, "", err
	}
	return meta, body, nil
}

// splitFrontMatter extracts a leading YAML block delimited by "---" lines.
func splitFrontMatter(raw string) (map[string]any, string, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	if !strings.HasPrefix(raw, fence+"\n") && raw != fence {
		return map[string]any{}, raw, nil
	}
	rest := strings.TrimPrefix(raw, fence)
	rest = strings.TrimPrefix(rest, "\n")

	var block, body string
	switch {
	case strings.HasPrefix(rest, fence+"\n") || rest == fence:
		block = ""
		body = strings.TrimPrefix(strings.TrimPrefix(rest, fence), "\n")
	default:
		end := strings.Index(rest, "\n"+fence+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+fence) {
				return nil, "", &ValidationError{Fields: []FieldError{{Field: "front-matter", Message: "unterminated block"}}}
			}
			end = len(rest) - len(fence) - 1
			block = rest[:end]
			body = ""
		} else {
			block = rest[:end]
			body = rest[end+len(fence)+2:]
		}
	}

	attrs := map[string]any{}
	if strings.TrimSpace(block) != "" {
		if err := yaml.Unmarshal([]byte(block), &attrs); err != nil {
			return nil, "", &ValidationError{Fields: []FieldError{{Field: "front-matter", Message: err.Error()}}}
		}
	}
	return attrs, strings.TrimLeft(body, "\n"), nil
}

// ValidateMeta checks decoded front-matter attributes against the post schema:
// title, date and description are required; draft and categories are optional.
func ValidateMeta(attrs map[string]any) (Meta, error) {
	var (
		meta Meta
		verr ValidationError
	)

	meta.Title = requiredString(&verr, attrs, "title")
	meta.Description = requiredString(&verr, attrs, "description")

	switch v := attrs["date"].(type) {
	case nil:
		verr.add("date", "required")
	case time.Time:
		meta.Date = NewDate(v)
	case string:
		t, err := parseDate(v)
		if err != nil {
			verr.add("date", err.Error())
		} else {
			meta.Date = NewDate(t)
		}
	default:
		verr.add("date", fmt.Sprintf("expected date, got %T", v))
	}

	switch v := attrs["draft"].(type) {
	case nil:
	case bool:
		meta.Draft = v
	default:
		verr.add("draft", fmt.Sprintf("expected boolean, got %T", v))
	}

	switch v := attrs["categories"].(type) {
	case nil:
	case []any:
		for i, c := range v {
			s, ok := c.(string)
			if !ok {
				verr.add(fmt.Sprintf("categories[%d]", i), fmt.Sprintf("expected string, got %T", c))
				continue
			}
			meta.Categories = append(meta.Categories, s)
		}
	default:
		verr.add("categories", fmt.Sprintf("expected list of strings, got %T", v))
	}

	if len(verr.Fields) > 0 {
		return Meta{}, &verr
	}
	return meta, nil
}

func requiredString(verr *ValidationError, attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case nil:
		verr.add(key, "required")
	case string:
		if strings.TrimSpace(v) == "" {
			verr.add(key, "must not be empty")
		}
		return v
	default:
		verr.add(key, fmt.Sprintf("expected string, got %T", v))
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
