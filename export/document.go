// server/export/document.go
package export

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ViniZap4/nohtz-server/domain"
)

var delimiter = []byte("---")

type Frontmatter struct {
	ID        int64     `yaml:"id,omitempty"`
	Title     string    `yaml:"title"`
	Folder    string    `yaml:"folder,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Document is a note as a portable file: YAML frontmatter followed by the
// HTML body.
type Document struct {
	Frontmatter
	Body string
}

func Render(note *domain.Note, folderName string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	fm := Frontmatter{
		ID:        note.ID,
		Title:     note.Title,
		Folder:    folderName,
		CreatedAt: note.CreatedAt.UTC(),
		UpdatedAt: note.UpdatedAt.UTC(),
	}
	if err := encoder.Encode(fm); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.WriteString("---\n\n")
	buf.WriteString(note.Content)

	return buf.Bytes(), nil
}

// Parse reads a rendered document. A leading "---" block is taken as
// frontmatter only when it is closed and decodes; otherwise the whole input
// is the body. The body is kept byte for byte apart from the blank line
// Render writes after the closing delimiter.
func Parse(data []byte) *Document {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	rest, ok := cutLine(data, delimiter)
	if !ok {
		return &Document{Body: string(data)}
	}

	for start := 0; ; {
		if body, ok := cutLine(rest[start:], delimiter); ok {
			doc := &Document{}
			if err := yaml.Unmarshal(rest[:start], &doc.Frontmatter); err != nil {
				break
			}
			body, _ = cutLineEnding(body)
			doc.Body = string(body)
			return doc
		}
		next := bytes.IndexByte(rest[start:], '\n')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return &Document{Body: string(data)}
}

// cutLine reports whether data starts with a line holding exactly prefix,
// and returns what follows that line.
func cutLine(data, prefix []byte) ([]byte, bool) {
	rest, ok := bytes.CutPrefix(data, prefix)
	if !ok {
		return data, false
	}
	if len(rest) == 0 {
		return rest, true
	}
	return cutLineEnding(rest)
}

func cutLineEnding(data []byte) ([]byte, bool) {
	if rest, ok := bytes.CutPrefix(data, []byte("\r\n")); ok {
		return rest, true
	}
	return bytes.CutPrefix(data, []byte("\n"))
}
