package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONProcessorDecodesAndReformats(t *testing.T) {
	raw := []byte(`{"a":1,"b":[1,2,3]}`)
	got, err := JSONProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Contains(t, got.TextContent, "\"a\": 1")
	require.NotNil(t, got.StructuredData)
	require.Len(t, got.Chunks, 1)
}

func TestJSONProcessorRejectsMalformedInput(t *testing.T) {
	_, err := JSONProcessor{}.Process([]byte(`{not json`))
	require.Error(t, err)
}

func TestYAMLProcessorDecodes(t *testing.T) {
	raw := []byte("a: 1\nb:\n  - x\n  - y\n")
	got, err := YAMLProcessor{}.Process(raw)
	require.NoError(t, err)
	require.NotNil(t, got.StructuredData)
	require.Len(t, got.Chunks, 1)
}

func TestYAMLProcessorRejectsMalformedInput(t *testing.T) {
	_, err := YAMLProcessor{}.Process([]byte("a: [unterminated"))
	require.Error(t, err)
}

func TestCSVProcessorOneChunkPerDataRow(t *testing.T) {
	raw := []byte("name,age\nalice,30\nbob,40\n")
	got, err := CSVProcessor{}.Process(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 2)
	require.Contains(t, got.Chunks[0].Text, "name: alice")
	require.Contains(t, got.Chunks[0].Text, "age: 30")
	require.Equal(t, "name,age", got.Metadata["columns"])
}

func TestCSVProcessorEmptyInputProducesNoChunks(t *testing.T) {
	got, err := CSVProcessor{}.Process([]byte(""))
	require.NoError(t, err)
	require.Empty(t, got.Chunks)
}

func TestPDFProcessorReportsUnsupported(t *testing.T) {
	_, err := PDFProcessor{}.Process([]byte("%PDF-1.4"))
	require.Error(t, err)
}
