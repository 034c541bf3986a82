package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLProcessorStripsTagsAndScripts(t *testing.T) {
	raw := []byte(`<html><body><h1>Title</h1><p>Hello world</p><script>evil()</script></body></html>`)
	got, err := HTMLProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Contains(t, got.TextContent, "Title")
	require.Contains(t, got.TextContent, "Hello world")
	require.NotContains(t, got.TextContent, "evil")
}

func TestHTMLProcessorProducesChunks(t *testing.T) {
	raw := []byte(`<p>Paragraph one.</p><p>Paragraph two.</p>`)
	got, err := HTMLProcessor{}.Process(raw)
	require.NoError(t, err)
	require.NotEmpty(t, got.Chunks)
}
