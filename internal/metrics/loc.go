package metrics

import "strings"

// LOC holds the line-counting family of metrics for one source file.
// Grounded on
// original_source/cortex/cortex-code-analysis/src/metrics/loc.rs's
// Sloc/Ploc/Cloc/Lloc/Blank, collapsed from five hand-rolled
// min/max-tracking structs into one struct of Stat fields.
type LOC struct {
	SLOC  Stat // physical line count, including blank and comment lines
	PLOC  Stat // lines containing at least one token of actual code
	CLOC  Stat // comment-only or trailing-comment lines
	LLOC  Stat // logical statements (line-based approximation)
	Blank Stat // blank (whitespace-only) lines
}

// Merge combines other's submetrics into loc, matching
// LocStats::merge's per-field dispatch.
func (loc *LOC) Merge(other LOC) {
	loc.SLOC.Merge(other.SLOC)
	loc.PLOC.Merge(other.PLOC)
	loc.CLOC.Merge(other.CLOC)
	loc.LLOC.Merge(other.LLOC)
	loc.Blank.Merge(other.Blank)
}

var lineCommentPrefix = map[string]string{
	"go": "//", "javascript": "//", "typescript": "//", "rust": "//", "c": "//", "cpp": "//",
	"python": "#",
}

// ComputeLOC classifies each physical line of source the way
// compute_loc_metrics does: blank lines count toward Blank; non-blank
// lines count toward PLOC and LLOC; a line that is pure comment (starts
// with the language's line-comment marker, or '#' for Python) counts
// toward CLOC instead of being double-counted as code, and a line that
// carries both code and a trailing "//"/"/*" also counts toward CLOC.
// This is a line-based approximation, not a tokenizer, the same
// simplification loc.rs itself notes ("simple comment detection, can
// be improved").
//
// The result is a single-sample LOC: every Stat holds this one file's
// count as Sum with Min==Max==Sum. Merging two files' LOC (via
// (*LOC).Merge) then yields a combined Sum (project-wide total) and a
// Min/Max spanning the per-file extremes, matching how loc.rs's
// min/max fields behave once multiple units are merged together.
func ComputeLOC(source []byte, lang string) LOC {
	lines := strings.Split(string(source), "\n")
	// A trailing "" after the final newline is not a physical line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	prefix := lineCommentPrefix[lang]
	var sloc, ploc, cloc, lloc, blank int

	sloc = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blank++
			continue
		}
		if prefix != "" && strings.HasPrefix(trimmed, prefix) {
			cloc++
			continue
		}
		ploc++
		lloc++
		if strings.Contains(trimmed, "//") || strings.Contains(trimmed, "/*") {
			cloc++
		}
	}

	var loc LOC
	loc.SLOC.Add(float64(sloc))
	loc.PLOC.Add(float64(ploc))
	loc.CLOC.Add(float64(cloc))
	loc.LLOC.Add(float64(lloc))
	loc.Blank.Add(float64(blank))
	return loc
}
