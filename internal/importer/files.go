package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ppiankov/reqsift/internal/extract"
	"github.com/ppiankov/reqsift/internal/logger"
	"github.com/ppiankov/reqsift/internal/worker"
)

// DefaultFileWorkers bounds concurrent file reads in LoadFiles
const DefaultFileWorkers = 4

// fileLoader implements worker.Loader for structured requirement files
type fileLoader struct{}

// Load reads one JSON or CSV file into raw records
func (fileLoader) Load(ctx context.Context, path string) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readTextFile(path)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(bytes.NewReader(data))
	}

	v, err := extract.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return asArray(v), nil
}

// LoadFiles reads every file concurrently and concatenates their records in
// input order. The first failing file, in input order, aborts the whole batch.
func LoadFiles(ctx context.Context, paths []string, workers int) ([]any, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyInput
	}
	if workers <= 0 {
		workers = DefaultFileWorkers
	}

	results := worker.NewBatchProcessor(fileLoader{}, workers).ProcessFiles(ctx, paths)
	if len(results) != len(paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("loaded %d of %d files", len(results), len(paths))
	}

	var all []any
	for _, r := range results {
		if r.Error != nil {
			return nil, &FileError{Name: filepath.Base(r.Path), Err: r.Error}
		}
		logger.Debug("file loaded", "file", r.Path, "records", len(r.Records))
		all = append(all, r.Records...)
	}
	return all, nil
}

// ReadText returns the importable text of a file. HTML is reduced to its
// visible text; every other text format is returned as is.
func ReadText(path string) (string, error) {
	data, err := readTextFile(path)
	if err != nil {
		return "", &FileError{Name: filepath.Base(path), Err: err}
	}

	if isHTML(path, data) {
		text, err := HTMLToText(bytes.NewReader(data))
		if err != nil {
			return "", &FileError{Name: filepath.Base(path), Err: err}
		}
		return text, nil
	}
	return string(data), nil
}

// readTextFile reads path and rejects binary content
func readTextFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(data)
	if !isText(mtype) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, mtype.String())
	}
	return data, nil
}

// isText reports whether m is text/plain or one of its descendants
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func isHTML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return mimetype.Detect(data).Is("text/html")
}
