package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextProcessorChunksByParagraph(t *testing.T) {
	raw := []byte("first paragraph\n\nsecond paragraph\n\nthird paragraph")
	got, err := TextProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 3)
	require.Equal(t, "first paragraph", got.Chunks[0].Text)
	require.Equal(t, "third paragraph", got.Chunks[2].Text)
}

func TestTextProcessorSkipsBlankParagraphs(t *testing.T) {
	raw := []byte("a\n\n\n\nb")
	got, err := TextProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 2)
}

func TestTextProcessorSplitsOversizedParagraph(t *testing.T) {
	raw := []byte(strings.Repeat("x", chunkSize+500))
	got, err := TextProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 2)
	require.Len(t, got.Chunks[0].Text, chunkSize)
	require.Len(t, got.Chunks[1].Text, 500)
}
