package docs

import (
	"encoding/csv"
	"encoding/json"
	"strings"

	"codegraph/internal/goerr"
	"gopkg.in/yaml.v3"
)

// JSONProcessor decodes the document and re-renders it indented so
// TextContent stays human- and search-readable regardless of the
// source's original formatting. Decoding is the point of running this
// processor at all, so a parse failure is reported rather than
// swallowed.
type JSONProcessor struct{}

func (JSONProcessor) Process(raw []byte) (ProcessedContent, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ProcessedContent{}, goerr.Wrap(goerr.ParseError, err, "decode JSON document")
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return ProcessedContent{}, goerr.Wrap(goerr.ParseError, err, "re-encode JSON document")
	}
	return ProcessedContent{
		ContentType:    ContentJSON,
		TextContent:    string(pretty),
		StructuredData: decoded,
		Metadata:       map[string]string{},
		Chunks: []Chunk{{
			Index:     0,
			Text:      string(pretty),
			ByteStart: 0,
			ByteEnd:   len(pretty),
		}},
	}, nil
}

// YAMLProcessor mirrors JSONProcessor: decode, keep the structured
// value, and chunk the whole document as one unit since YAML documents
// in this engine's workflow (config files, frontmatter-adjacent notes)
// are small enough to search as a single block.
type YAMLProcessor struct{}

func (YAMLProcessor) Process(raw []byte) (ProcessedContent, error) {
	var decoded interface{}
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return ProcessedContent{}, goerr.Wrap(goerr.ParseError, err, "decode YAML document")
	}
	return ProcessedContent{
		ContentType:    ContentYAML,
		TextContent:    string(raw),
		StructuredData: decoded,
		Metadata:       map[string]string{},
		Chunks: []Chunk{{
			Index:     0,
			Text:      string(raw),
			ByteStart: 0,
			ByteEnd:   len(raw),
		}},
	}, nil
}

// CSVProcessor decodes rows with the header row, if present, folded
// into each record's text as "column: value" pairs so a row chunk reads
// like prose instead of a bare comma list. One chunk per data row.
type CSVProcessor struct{}

func (CSVProcessor) Process(raw []byte) (ProcessedContent, error) {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return ProcessedContent{}, goerr.Wrap(goerr.ParseError, err, "decode CSV document")
	}
	if len(rows) == 0 {
		return ProcessedContent{ContentType: ContentCSV, Metadata: map[string]string{}}, nil
	}

	header := rows[0]
	var chunks []Chunk
	var textBuf strings.Builder
	offset := 0
	structured := make([]map[string]string, 0, len(rows)-1)

	for i, row := range rows[1:] {
		record := make(map[string]string, len(row))
		var line strings.Builder
		for col, val := range row {
			colName := colLabel(header, col)
			record[colName] = val
			if col > 0 {
				line.WriteString(", ")
			}
			line.WriteString(colName)
			line.WriteString(": ")
			line.WriteString(val)
		}
		structured = append(structured, record)
		rowText := line.String()
		chunks = append(chunks, Chunk{
			Index:     i,
			Text:      rowText,
			ByteStart: offset,
			ByteEnd:   offset + len(rowText),
		})
		offset += len(rowText) + 1
		textBuf.WriteString(rowText)
		textBuf.WriteString("\n")
	}

	return ProcessedContent{
		ContentType:    ContentCSV,
		TextContent:    textBuf.String(),
		StructuredData: structured,
		Metadata:       map[string]string{"columns": strings.Join(header, ",")},
		Chunks:         chunks,
	}, nil
}

func colLabel(header []string, idx int) string {
	if idx < len(header) && header[idx] != "" {
		return header[idx]
	}
	return "col"
}

// PDFProcessor is a stub: no library in the current dependency set
// extracts text from PDF, so detection succeeds but processing reports
// the format as unsupported rather than silently returning garbage.
type PDFProcessor struct{}

func (PDFProcessor) Process(raw []byte) (ProcessedContent, error) {
	return ProcessedContent{}, goerr.New(goerr.InvalidInput, "PDF text extraction is not supported")
}
