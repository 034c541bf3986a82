package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		path string
		want ContentType
	}{
		{"README.md", ContentMarkdown},
		{"notes.MARKDOWN", ContentMarkdown},
		{"doc.mdx", ContentMarkdown},
		{"plain.txt", ContentText},
		{"page.html", ContentHTML},
		{"page.htm", ContentHTML},
		{"data.json", ContentJSON},
		{"config.yaml", ContentYAML},
		{"config.yml", ContentYAML},
		{"table.csv", ContentCSV},
		{"manual.pdf", ContentPDF},
		{"Makefile", ContentText},
		{"noext", ContentText},
	}
	for _, c := range cases {
		require.Equal(t, c.want, DetectContentType(c.path), c.path)
	}
}
