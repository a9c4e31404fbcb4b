package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyImport reports that normalization produced no records
	ErrEmptyImport = errors.New("no valid requirement objects found")

	// ErrEmptyInput reports blank input text
	ErrEmptyInput = errors.New("input is empty")

	// ErrRepairNotApplicable reports input the concatenated-array repair does not handle
	ErrRepairNotApplicable = errors.New("repair not applicable")

	// ErrRepairFailed reports that the repaired text still did not parse
	ErrRepairFailed = errors.New("repair failed")

	// ErrUnsupportedFile reports a file type that cannot be imported
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// FileError is a read or parse failure of one input file
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to import %s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
