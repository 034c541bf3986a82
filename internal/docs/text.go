package docs

import "strings"

// chunkSize is the target chunk length for formats with no inherent
// structure (plain text, HTML-stripped prose). Paragraphs are kept whole
// when they fit; a paragraph longer than chunkSize is split on its own.
const chunkSize = 2000

// TextProcessor chunks by blank-line-delimited paragraph, falling back
// to a fixed byte window for any paragraph that exceeds chunkSize.
type TextProcessor struct{}

func (TextProcessor) Process(raw []byte) (ProcessedContent, error) {
	text := string(raw)
	return ProcessedContent{
		ContentType: ContentText,
		TextContent: text,
		Metadata:    map[string]string{},
		Chunks:      chunkParagraphs(text),
	}, nil
}

func chunkParagraphs(s string) []Chunk {
	var chunks []Chunk
	offset := 0
	idx := 0
	for _, para := range strings.Split(s, "\n\n") {
		start := offset
		offset += len(para) + 2

		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}

		for len(trimmed) > chunkSize {
			chunks = append(chunks, Chunk{
				Index:     idx,
				Text:      trimmed[:chunkSize],
				ByteStart: start,
				ByteEnd:   start + chunkSize,
			})
			idx++
			trimmed = trimmed[chunkSize:]
			start += chunkSize
		}
		chunks = append(chunks, Chunk{
			Index:     idx,
			Text:      trimmed,
			ByteStart: start,
			ByteEnd:   start + len(trimmed),
		})
		idx++
	}
	return chunks
}
