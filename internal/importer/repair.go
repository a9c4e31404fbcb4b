package importer

import (
	"fmt"
	"strings"

	"github.com/ppiankov/reqsift/internal/extract"
)

// RepairConcatenated recovers input made of several top-level JSON arrays
// written back to back ("[...][...]" or "[...]\n[...]"). Adjacent arrays are
// joined with commas, wrapped in one enclosing array and flattened one level.
// It returns ErrRepairNotApplicable when the input has no such boundary and
// ErrRepairFailed when the joined text is still not valid JSON.
func RepairConcatenated(input string) ([]any, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: input does not start with [ or {", ErrRepairNotApplicable)
	}

	joined, n := joinAdjacentArrays(trimmed)
	if n == 0 {
		return nil, fmt.Errorf("%w: no adjacent top-level arrays", ErrRepairNotApplicable)
	}

	v, err := extract.Decode("[" + joined + "]")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepairFailed, err)
	}

	var flat []any
	for _, item := range v.([]any) {
		if inner, ok := item.([]any); ok {
			flat = append(flat, inner...)
		} else {
			flat = append(flat, item)
		}
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("%w: repaired input holds no records", ErrRepairFailed)
	}
	return flat, nil
}

// joinAdjacentArrays inserts a comma at every "]<space>[" boundary outside
// string literals and reports how many it inserted
func joinAdjacentArrays(s string) (string, int) {
	var (
		b        strings.Builder
		inString bool
		escaped  bool
		inserted int
	)
	b.Grow(len(s) + 8)

	for i := 0; i < len(s); i++ {
		c := s[i]
		b.WriteByte(c)

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case ']':
			j := i + 1
			for j < len(s) && isJSONSpace(s[j]) {
				j++
			}
			if j < len(s) && s[j] == '[' {
				b.WriteByte(',')
				inserted++
			}
		}
	}
	return b.String(), inserted
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
