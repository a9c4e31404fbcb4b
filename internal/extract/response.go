// Package extract pulls JSON payloads out of free-form model output.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnparseableResponse is returned when model output cannot be coerced to JSON
var ErrUnparseableResponse = errors.New("model response is not valid JSON")

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// StripFences removes markdown code fence markers and surrounding whitespace
func StripFences(raw string) string {
	return strings.TrimSpace(fenceReplacer.Replace(raw))
}

// JSONArray extracts the JSON array embedded in raw model output.
// A bare object is wrapped into a single-element array.
func JSONArray(raw string) ([]any, error) {
	clean := StripFences(raw)

	candidate, ok := span(clean, '[', ']')
	if !ok {
		obj, found := span(clean, '{', '}')
		if !found {
			return nil, fmt.Errorf("%w: no JSON array or object found", ErrUnparseableResponse)
		}
		candidate = "[" + obj + "]"
	}

	v, err := Decode(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	switch t := v.(type) {
	case []any:
		return t, nil
	default:
		return []any{t}, nil
	}
}

// Decode parses a complete JSON document, keeping numbers as json.Number
func Decode(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// DecodeBytes is Decode for a byte slice
func DecodeBytes(b []byte) (any, error) {
	return Decode(string(bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))))
}

// span returns the inclusive substring from the first open to the last close
func span(s string, open, close byte) (string, bool) {
	first := strings.IndexByte(s, open)
	last := strings.LastIndexByte(s, close)
	if first == -1 || last == -1 || last < first {
		return "", false
	}
	return s[first : last+1], true
}
