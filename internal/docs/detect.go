package docs

import (
	"path/filepath"
	"strings"
)

var extensionTypes = map[string]ContentType{
	".md":       ContentMarkdown,
	".markdown": ContentMarkdown,
	".mdx":      ContentMarkdown,
	".txt":      ContentText,
	".html":     ContentHTML,
	".htm":      ContentHTML,
	".json":     ContentJSON,
	".yaml":     ContentYAML,
	".yml":      ContentYAML,
	".csv":      ContentCSV,
	".pdf":      ContentPDF,
}

// DetectContentType maps a file extension to a ContentType, defaulting to
// plain text for anything unrecognized.
func DetectContentType(path string) ContentType {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	return ContentText
}
