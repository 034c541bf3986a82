package ast

// Macro replacement for C/C++ sources: tree-sitter's C grammar can
// misparse macro-expanded constructs (especially object-like macros
// used where a type or statement is expected), so known macro
// identifiers are blanked out to same-length runs of '$' before
// parsing. Byte offsets are preserved exactly, so node spans recovered
// from the rewritten buffer still index correctly into the original
// source. Grounded on
// original_source/cortex/cortex-code-analysis/src/c_macro.rs
// (single-pass byte scan, identical dollar-run substitution) and
// src/c_predefined_macros.rs (the standard-library macro set checked
// alongside user-supplied ones).

// predefinedCMacros is a representative subset of the C/C++ standard
// library's object-like macros (stdint.h range macros, plus NULL) — the ones most likely to appear in code being
// parsed for metrics rather than compiled.
var predefinedCMacros = map[string]bool{
	"NULL": true,
	"INT8_MIN": true, "INT8_MAX": true, "UINT8_MAX": true,
	"INT16_MIN": true, "INT16_MAX": true, "UINT16_MAX": true,
	"INT32_MIN": true, "INT32_MAX": true, "UINT32_MAX": true,
	"INT64_MIN": true, "INT64_MAX": true, "UINT64_MAX": true,
	"INTMAX_MIN": true, "INTMAX_MAX": true, "UINTMAX_MAX": true,
	"INTPTR_MIN": true, "INTPTR_MAX": true, "UINTPTR_MAX": true,
	"SIZE_MAX": true,
}

func isIdentifierStarter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentifierPart(c byte) bool {
	return isIdentifierStarter(c) || (c >= '0' && c <= '9')
}

func isMacro(name string, macros map[string]bool) bool {
	return macros[name] || predefinedCMacros[name]
}

// ReplaceCMacros scans code for identifiers in macros (or in the
// built-in predefined set) and blanks each occurrence to a run of '$'
// the same length, preserving every other byte's offset. It returns
// (rewritten, true) if any replacement happened, or (code, false)
// unchanged otherwise.
func ReplaceCMacros(code []byte, macros map[string]bool) ([]byte, bool) {
	var out []byte
	codeStart := 0
	identStart := -1
	replaced := false

	flush := func(start, end int) {
		keyword := string(code[start:end])
		if isMacro(keyword, macros) {
			if out == nil {
				out = make([]byte, 0, len(code))
			}
			out = append(out, code[codeStart:start]...)
			for i := 0; i < end-start; i++ {
				out = append(out, '$')
			}
			codeStart = end
			replaced = true
		}
	}

	for i := 0; i < len(code); i++ {
		c := code[i]
		if identStart >= 0 {
			if !isIdentifierPart(c) {
				flush(identStart, i)
				identStart = -1
			}
		} else if isIdentifierStarter(c) {
			identStart = i
		}
	}
	if identStart >= 0 {
		flush(identStart, len(code))
	}

	if !replaced {
		return code, false
	}
	out = append(out, code[codeStart:]...)
	return out, true
}
