package docs

// ForContentType returns the Processor responsible for a ContentType.
// Unknown types fall back to TextProcessor, matching DetectContentType's
// own default.
func ForContentType(ct ContentType) Processor {
	switch ct {
	case ContentMarkdown:
		return MarkdownProcessor{}
	case ContentHTML:
		return HTMLProcessor{}
	case ContentJSON:
		return JSONProcessor{}
	case ContentYAML:
		return YAMLProcessor{}
	case ContentCSV:
		return CSVProcessor{}
	case ContentPDF:
		return PDFProcessor{}
	default:
		return TextProcessor{}
	}
}

// ProcessPath detects the content type from a file path's extension and
// runs the matching processor over raw.
func ProcessPath(path string, raw []byte) (ProcessedContent, error) {
	ct := DetectContentType(path)
	return ForContentType(ct).Process(raw)
}
