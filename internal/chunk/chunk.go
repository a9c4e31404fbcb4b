// Package chunk splits oversized text into paragraph-respecting pieces for model submission.
package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLen is the chunk size used for requirement extraction
const DefaultMaxLen = 25000

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Segment is one chunk plus the separator that followed it in the source text.
// Lead is set on the first segment only and holds blank lines that preceded
// any text. Concatenating Lead+Text+Sep over all segments reproduces the input
// exactly.
type Segment struct {
	Lead string
	Text string
	Sep  string
}

type unit struct {
	text string
	sep  string
}

// Split returns the chunk texts for text, each at most maxLen characters
// unless a single line is longer than maxLen
func Split(text string, maxLen int) []string {
	segs := Segments(text, maxLen)
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

// Segments splits text on blank-line paragraph boundaries, falling back to
// single lines for paragraphs longer than maxLen. Lengths count runes.
// The result is never empty.
func Segments(text string, maxLen int) []Segment {
	if maxLen <= 0 || size(text) <= maxLen {
		return []Segment{{Text: text}}
	}

	var (
		out   []Segment
		cur   string
		sep   string
		lead  string
		carry string
	)

	for _, u := range units(text, maxLen) {
		switch {
		case cur == "":
			if carry != "" {
				out[len(out)-1].Sep += carry
				carry = ""
			}
			cur = u.text
		case size(cur)+size(sep)+size(u.text) > maxLen:
			out = append(out, Segment{Text: cur, Sep: sep})
			cur = u.text
		default:
			cur += sep + u.text
		}
		sep = u.sep
		if cur == "" {
			if len(out) == 0 {
				lead += sep
			} else {
				carry += sep
			}
			sep = ""
		}
	}

	if cur != "" {
		out = append(out, Segment{Text: cur, Sep: sep})
	} else if carry != "" {
		out[len(out)-1].Sep += carry
	}
	if len(out) == 0 {
		out = append(out, Segment{})
	}
	out[0].Lead = lead
	return out
}

// Join reassembles segments into the original text
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Lead)
		b.WriteString(s.Text)
		b.WriteString(s.Sep)
	}
	return b.String()
}

// units breaks text into paragraphs, and paragraphs longer than maxLen into lines
func units(text string, maxLen int) []unit {
	var out []unit
	start := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		out = appendParagraph(out, text[start:loc[0]], text[loc[0]:loc[1]], maxLen)
		start = loc[1]
	}
	return appendParagraph(out, text[start:], "", maxLen)
}

func appendParagraph(out []unit, para, sep string, maxLen int) []unit {
	if size(para) <= maxLen {
		return append(out, unit{text: para, sep: sep})
	}
	lines := strings.Split(para, "\n")
	for i, line := range lines {
		lineSep := "\n"
		if i == len(lines)-1 {
			lineSep = sep
		}
		out = append(out, unit{text: line, sep: lineSep})
	}
	return out
}

func size(s string) int {
	return utf8.RuneCountInString(s)
}
