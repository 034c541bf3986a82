package search

import "strings"

// tokenize lowercases, splits on anything that isn't an ASCII letter,
// digit or '_', and drops tokens shorter than two bytes, the same
// coarse approach extractKeywords in
// reflection_search.go uses, generalized from "top N keywords" to
// "every token", since the index needs full postings rather than a
// handful of LIKE patterns.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// termFrequencies counts occurrences of each token in text.
func termFrequencies(text string) map[string]int {
	freqs := make(map[string]int)
	for _, t := range tokenize(text) {
		freqs[t]++
	}
	return freqs
}

// extractPhrases pulls out "quoted phrase" substrings from a query,
// returning the phrases and the remaining bare-word query text.
func extractPhrases(query string) (phrases []string, remainder string) {
	var sb strings.Builder
	i := 0
	for i < len(query) {
		if query[i] == '"' {
			end := strings.IndexByte(query[i+1:], '"')
			if end < 0 {
				sb.WriteString(query[i:])
				break
			}
			phrase := query[i+1 : i+1+end]
			if strings.TrimSpace(phrase) != "" {
				phrases = append(phrases, strings.ToLower(phrase))
			}
			i = i + 1 + end + 1
			continue
		}
		sb.WriteByte(query[i])
		i++
	}
	return phrases, sb.String()
}
