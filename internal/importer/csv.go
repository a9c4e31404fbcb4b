package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/ppiankov/reqsift/internal/model"
)

const utf8BOM = "\uFEFF"

// WriteCSV writes reqs as a UTF-8 CSV with a byte order mark so spreadsheet
// tools keep umlauts intact. Every value is quoted and embedded quotes doubled.
func WriteCSV(w io.Writer, reqs []model.Requirement) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(utf8BOM)
	writeCSVRow(bw, model.RequirementFields)

	row := make([]string, len(model.RequirementFields))
	for _, r := range reqs {
		for i, f := range model.RequirementFields {
			row[i] = r.Field(f)
		}
		bw.WriteString("\n")
		writeCSVRow(bw, row)
	}
	return bw.Flush()
}

func writeCSVRow(w *bufio.Writer, values []string) {
	for i, v := range values {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(v, `"`, `""`))
		w.WriteByte('"')
	}
}

// ReadCSV parses a CSV with a header row into raw records keyed by column name.
// Unknown columns are kept; the normalizer ignores them.
func ReadCSV(r io.Reader) ([]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []any{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var records []any
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := make(map[string]any, len(header))
		for i, v := range row {
			if i < len(header) && header[i] != "" {
				rec[header[i]] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
