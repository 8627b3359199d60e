package export

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/nohtz-server/domain"
)

func TestRenderThenParse(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	note := &domain.Note{
		ID:        12,
		Title:     "Plan: Q3",
		Content:   "<p>hi</p>\n<hr>\n<p>--- not a delimiter</p>",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}

	data, err := Render(note, "Work")
	require.NoError(t, err)

	doc := Parse(data)

	want := &Document{
		Frontmatter: Frontmatter{
			ID:        12,
			Title:     "Plan: Q3",
			Folder:    "Work",
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		Body: note.Content,
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_OmitsEmptyFolder(t *testing.T) {
	data, err := Render(&domain.Note{ID: 1, Title: "x"}, "")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "folder:")
}

func TestRenderThenParse_KeepsBodyBytes(t *testing.T) {
	for _, content := range []string{
		"<pre>\n  code\n</pre>\n",
		"\n\n  <p>indented</p>",
		"---\n<p>starts with a rule</p>\n---\n",
		"",
	} {
		data, err := Render(&domain.Note{ID: 3, Title: "t", Content: content}, "")
		require.NoError(t, err)
		assert.Equal(t, content, Parse(data).Body, "content %q", content)
	}
}

func TestParse_BareBody(t *testing.T) {
	doc := Parse([]byte("\n<p>just html</p>\n"))
	assert.Equal(t, "", doc.Title)
	assert.Equal(t, "\n<p>just html</p>\n", doc.Body)
}

func TestParse_CRLF(t *testing.T) {
	doc := Parse([]byte("---\r\ntitle: Win\r\n---\r\n\r\n<p>x</p>\r\n"))
	assert.Equal(t, "Win", doc.Title)
	assert.Equal(t, "<p>x</p>\r\n", doc.Body)
}

func TestParse_LeadingBlockThatIsNotFrontmatter(t *testing.T) {
	for _, in := range []string{
		"---\nnot frontmatter",
		"---\ntitle: x\nno closing delimiter",
		"---\ntitle: [unclosed\n---\nbody",
		"---\njust a sentence\n---\n<p>after</p>",
		"----\ntitle: x\n---\n",
	} {
		doc := Parse([]byte(in))
		assert.Equal(t, "", doc.Title, "input %q", in)
		assert.Equal(t, in, doc.Body, "input %q", in)
	}
}
