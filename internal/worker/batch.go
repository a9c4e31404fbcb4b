package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Loader reads one input file into raw records
type Loader interface {
	Load(ctx context.Context, path string) ([]any, error)
}

// LoadJob reads a single file
type LoadJob struct {
	Index  int
	Path   string
	Loader Loader
}

// Execute executes the load job
func (j *LoadJob) Execute(ctx context.Context) Result {
	records, err := j.Loader.Load(ctx, j.Path)
	return &LoadResult{
		Index:   j.Index,
		Path:    j.Path,
		Records: records,
		Error:   err,
	}
}

// LoadResult represents the result of a load job
type LoadResult struct {
	Index   int
	Path    string
	Records []any
	Error   error
}

// GetError returns the error from the load result
func (r *LoadResult) GetError() error {
	return r.Error
}

// BatchProcessor loads multiple files concurrently
type BatchProcessor struct {
	loader      Loader
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(loader Loader, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		loader:      loader,
		concurrency: concurrency,
	}
}

// ProcessFiles loads every path and returns the results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*LoadResult {
	if len(paths) == 0 {
		return []*LoadResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &LoadJob{Index: i, Path: path, Loader: b.loader}
	}

	results := NewPool(ctx, b.concurrency).Run(jobs)

	loaded := make([]*LoadResult, len(results))
	for i, result := range results {
		loaded[i] = result.(*LoadResult)
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Index < loaded[j].Index })

	return loaded
}

// ReadListFile reads file paths from a list file (one per line).
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadListFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
