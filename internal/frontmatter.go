package internal

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const (
	FrontmatterDelimiter = "---"
	DefaultDescription   = "Daily journal entry"
)

// Frontmatter is the header schema consumed by the site's journal collection.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Description string `yaml:"description,omitempty"`
}

// DefaultFrontmatter builds the header synthesized for an entry without one.
func DefaultFrontmatter(date string) Frontmatter {
	return Frontmatter{
		Title:       "Journal - " + date,
		Date:        date,
		Description: DefaultDescription,
	}
}

// Render emits the header including both delimiters and the trailing blank line.
func (fm Frontmatter) Render() ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range [][2]string{
		{"title", fm.Title},
		{"date", fm.Date},
		{"description", fm.Description},
	} {
		if kv[1] == "" && kv[0] == "description" {
			continue
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv[0]},
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv[1], Style: yaml.DoubleQuotedStyle},
		)
	}

	var buf bytes.Buffer
	buf.WriteString(FrontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	buf.WriteString(FrontmatterDelimiter + "\n\n")
	return buf.Bytes(), nil
}

// EnsureFrontmatter prepends a synthesized header when raw does not start
// with the YAML delimiter. The body is kept byte for byte. If no header can
// be rendered the content passes through unchanged and is reported as not
// normalized.
func EnsureFrontmatter(filename string, raw []byte) ([]byte, bool) {
	file := JournalFile{Name: filename, Content: raw}
	if file.HasFrontmatter() {
		return raw, false
	}

	header, err := DefaultFrontmatter(file.Stem()).Render()
	if err != nil {
		return raw, false
	}

	out := make([]byte, 0, len(header)+len(raw))
	out = append(out, header...)
	out = append(out, raw...)
	return out, true
}

// ParseFrontmatter decodes an existing header. Content without a header
// yields a zero Frontmatter and the full content as body.
func ParseFrontmatter(raw []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return Frontmatter{}, raw, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}
