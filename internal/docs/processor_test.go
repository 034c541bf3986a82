package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForContentTypeReturnsMatchingProcessor(t *testing.T) {
	require.IsType(t, MarkdownProcessor{}, ForContentType(ContentMarkdown))
	require.IsType(t, HTMLProcessor{}, ForContentType(ContentHTML))
	require.IsType(t, JSONProcessor{}, ForContentType(ContentJSON))
	require.IsType(t, YAMLProcessor{}, ForContentType(ContentYAML))
	require.IsType(t, CSVProcessor{}, ForContentType(ContentCSV))
	require.IsType(t, PDFProcessor{}, ForContentType(ContentPDF))
	require.IsType(t, TextProcessor{}, ForContentType(ContentText))
	require.IsType(t, TextProcessor{}, ForContentType(ContentType("unknown")))
}

func TestProcessPathDispatchesByExtension(t *testing.T) {
	got, err := ProcessPath("notes.md", []byte("# Title\n\nbody\n"))
	require.NoError(t, err)
	require.Equal(t, ContentMarkdown, got.ContentType)

	got, err = ProcessPath("data.json", []byte(`{"x":1}`))
	require.NoError(t, err)
	require.Equal(t, ContentJSON, got.ContentType)
}
