// Package metrics holds the language-agnostic measurements of a module: line
// classification, composite scores and refactoring suggestions.
package metrics

import (
	"bytes"
	"strings"
)

// LineStats partitions the physical lines of a source file.
type LineStats struct {
	Code    int `json:"code"`
	Comment int `json:"comment"`
	Blank   int `json:"blank"`
}

// Total returns the number of classified lines.
func (s LineStats) Total() int {
	return s.Code + s.Comment + s.Blank
}

// CommentSyntax names the comment tokens of a language. An empty token is
// never matched.
type CommentSyntax struct {
	Line       string
	BlockOpen  string
	BlockClose string
}

// CStyle is the comment syntax shared by TypeScript, JavaScript, Go and Rust.
var CStyle = CommentSyntax{Line: "//", BlockOpen: "/*", BlockClose: "*/"}

// HashStyle is the comment syntax of Python and shell-like languages.
var HashStyle = CommentSyntax{Line: "#"}

// CountLines classifies every line of source using C-style comments.
func CountLines(source []byte) LineStats {
	return CStyle.Count(source)
}

// Count classifies every line of source as code, comment or blank. A block
// comment opened and closed on the same line counts once as a comment.
func (cs CommentSyntax) Count(source []byte) LineStats {
	var stats LineStats
	inBlock := false

	forEachLine(source, func(line string) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			stats.Blank++
			return
		}

		if cs.BlockOpen != "" && !inBlock && strings.HasPrefix(trimmed, cs.BlockOpen) {
			inBlock = true
		}

		switch {
		case inBlock:
			stats.Comment++
			if strings.HasSuffix(trimmed, cs.BlockClose) {
				inBlock = false
			}
		case cs.Line != "" && strings.HasPrefix(trimmed, cs.Line):
			stats.Comment++
		default:
			stats.Code++
		}
	})

	return stats
}

// LineCount returns the number of physical lines in source. A trailing
// newline does not start a new line.
func LineCount(source []byte) int {
	n := 0
	forEachLine(source, func(string) { n++ })
	return n
}

func forEachLine(source []byte, fn func(line string)) {
	for len(source) > 0 {
		i := bytes.IndexByte(source, '\n')
		if i < 0 {
			fn(strings.TrimSuffix(string(source), "\r"))
			return
		}
		fn(strings.TrimSuffix(string(source[:i]), "\r"))
		source = source[i+1:]
	}
}
