package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// MarkdownProcessor extracts YAML frontmatter and walks the goldmark AST
// to produce one chunk per heading section, plus a standalone chunk per
// fenced code block tagged with its language. Section text accumulates
// until the next heading of any depth, so a subsection's text is not
// folded into its parent's chunk.
type MarkdownProcessor struct{}

func (MarkdownProcessor) Process(raw []byte) (ProcessedContent, error) {
	body, frontmatter := splitFrontmatter(raw)

	md := goldmark.New()
	reader := text.NewReader(body)
	doc := md.Parser().Parse(reader)

	chunks := walkMarkdown(doc, body)
	// body is a suffix of raw; shift offsets past any stripped frontmatter
	// so they index the original document.
	offset := len(raw) - len(body)
	for i := range chunks {
		chunks[i].ByteStart += offset
		chunks[i].ByteEnd += offset
	}

	return ProcessedContent{
		ContentType: ContentMarkdown,
		TextContent: string(body),
		Metadata:    frontmatter,
		Chunks:      chunks,
	}, nil
}

// splitFrontmatter strips a leading "---\n...\n---\n" YAML block, if
// present, and returns the remaining Markdown body alongside the decoded
// key/value pairs (non-scalar values are dropped; frontmatter is
// metadata, not a structured payload).
func splitFrontmatter(raw []byte) (body []byte, metadata map[string]string) {
	metadata = map[string]string{}
	if !bytes.HasPrefix(raw, []byte("---\n")) && !bytes.HasPrefix(raw, []byte("---\r\n")) {
		return raw, metadata
	}
	rest := raw[len("---"):]
	rest = bytes.TrimPrefix(rest, []byte("\r\n"))
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return raw, metadata
	}
	block := rest[:end]
	after := rest[end+len("\n---"):]
	after = bytes.TrimPrefix(after, []byte("\r\n"))
	after = bytes.TrimPrefix(after, []byte("\n"))

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(block, &decoded); err != nil {
		return raw, map[string]string{}
	}
	for k, v := range decoded {
		metadata[k] = toMetaString(v)
	}
	return after, metadata
}

func toMetaString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = toMetaString(e)
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func walkMarkdown(doc ast.Node, source []byte) []Chunk {
	var chunks []Chunk
	var currentHeading string
	var currentStart int
	var currentBuf strings.Builder
	idx := 0

	flush := func(end int) {
		body := strings.TrimSpace(currentBuf.String())
		if body == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:     idx,
			Heading:   currentHeading,
			Text:      body,
			ByteStart: currentStart,
			ByteEnd:   end,
		})
		idx++
		currentBuf.Reset()
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Heading:
			flush(node.Lines().At(0).Start)
			currentHeading = string(node.Text(source))
			currentStart = node.Lines().At(0).Start
			return
		case *ast.FencedCodeBlock:
			lang := string(node.Language(source))
			var body strings.Builder
			for i := 0; i < node.Lines().Len(); i++ {
				line := node.Lines().At(i)
				body.Write(line.Value(source))
			}
			start, end := blockRange(node, source)
			chunks = append(chunks, Chunk{
				Index:     idx,
				Heading:   currentHeading,
				Language:  lang,
				Text:      strings.TrimRight(body.String(), "\n"),
				ByteStart: start,
				ByteEnd:   end,
			})
			idx++
			return
		case *ast.Paragraph:
			appendLines(&currentBuf, &currentStart, node.Lines(), source)
			return
		case *ast.TextBlock:
			appendLines(&currentBuf, &currentStart, node.Lines(), source)
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(doc)
	flush(len(source))
	return chunks
}

func blockRange(n interface{ Lines() *text.Segments }, source []byte) (start, end int) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0, 0
	}
	return lines.At(0).Start, lines.At(lines.Len() - 1).Stop
}

func appendLines(buf *strings.Builder, start *int, lines *text.Segments, source []byte) {
	if lines.Len() == 0 {
		return
	}
	if buf.Len() == 0 {
		*start = lines.At(0).Start
	}
	for i := 0; i < lines.Len(); i++ {
		buf.Write(lines.At(i).Value(source))
	}
	buf.WriteString("\n\n")
}
