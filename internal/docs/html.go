package docs

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLProcessor strips markup down to visible text, then chunks the
// result the same way plain text is chunked. <script> and <style>
// bodies are dropped entirely since they are never prose.
type HTMLProcessor struct{}

func (HTMLProcessor) Process(raw []byte) (ProcessedContent, error) {
	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		// Malformed HTML is common in the wild; fall back to treating the
		// raw bytes as text rather than failing the whole ingest.
		return TextProcessor{}.withType(raw, ContentHTML), nil
	}

	var buf strings.Builder
	extractText(doc, &buf)
	text := collapseWhitespace(buf.String())

	return ProcessedContent{
		ContentType: ContentHTML,
		TextContent: text,
		Metadata:    map[string]string{},
		Chunks:      chunkParagraphs(text),
	}, nil
}

func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		buf.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if n.Type == html.ElementNode && isBlockElement(n.Data) {
		buf.WriteString("\n\n")
	}
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "section", "article":
		return true
	default:
		return false
	}
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	lines := strings.Split(s, "\n\n")
	if len(lines) <= 1 {
		return strings.Join(fields, " ")
	}
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n\n")
}

// withType reuses paragraph chunking but labels the result under a
// different ContentType, used when HTML parsing fails outright.
func (TextProcessor) withType(raw []byte, ct ContentType) ProcessedContent {
	text := string(raw)
	return ProcessedContent{
		ContentType: ct,
		TextContent: text,
		Metadata:    map[string]string{},
		Chunks:      chunkParagraphs(text),
	}
}
