package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownProcessorExtractsFrontmatter(t *testing.T) {
	raw := []byte("---\ntitle: Design Notes\ntags:\n  - arch\n  - vfs\n---\n\n# Intro\n\nSome prose.\n")
	got, err := MarkdownProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Equal(t, "Design Notes", got.Metadata["title"])
	require.Equal(t, "arch, vfs", got.Metadata["tags"])
}

func TestMarkdownProcessorWithoutFrontmatterKeepsWholeBody(t *testing.T) {
	raw := []byte("# Intro\n\nSome prose.\n")
	got, err := MarkdownProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Empty(t, got.Metadata)
	require.Contains(t, got.TextContent, "# Intro")
}

func TestMarkdownProcessorChunksBySection(t *testing.T) {
	raw := []byte("# One\n\nFirst section body.\n\n# Two\n\nSecond section body.\n")
	got, err := MarkdownProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 2)
	require.Equal(t, "One", got.Chunks[0].Heading)
	require.Contains(t, got.Chunks[0].Text, "First section body")
	require.Equal(t, "Two", got.Chunks[1].Heading)
	require.Contains(t, got.Chunks[1].Text, "Second section body")
}

func TestMarkdownProcessorTagsFencedCodeBlockWithLanguage(t *testing.T) {
	raw := []byte("# Usage\n\n```go\nfmt.Println(\"hi\")\n```\n")
	got, err := MarkdownProcessor{}.Process(raw)
	require.NoError(t, err)

	var codeChunk *Chunk
	for i := range got.Chunks {
		if got.Chunks[i].Language != "" {
			codeChunk = &got.Chunks[i]
		}
	}
	require.NotNil(t, codeChunk)
	require.Equal(t, "go", codeChunk.Language)
	require.Contains(t, codeChunk.Text, "fmt.Println")
}

func TestMarkdownProcessorChunksRecordByteOffsets(t *testing.T) {
	raw := []byte("# One\n\nbody text\n")
	got, err := MarkdownProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 1)
	c := got.Chunks[0]
	require.True(t, c.ByteEnd > c.ByteStart)
	require.True(t, c.ByteEnd <= len(got.TextContent))
}
