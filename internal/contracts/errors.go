package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile 필수 입력 파일 없음 (실행 중단)
	ErrMissingFile = errors.New("missing snapshot file")

	// ErrMalformedSnapshot 파일 형식 위반 (실행 중단)
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// MissingFileError reports a required input file that does not exist
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFile, e.Path)
}

func (e *MissingFileError) Unwrap() error {
	return ErrMissingFile
}

// MalformedSnapshotError reports a file that parsed but violates the expected shape
type MalformedSnapshotError struct {
	Path   string
	Reason string
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedSnapshot, e.Path, e.Reason)
}

func (e *MalformedSnapshotError) Unwrap() error {
	return ErrMalformedSnapshot
}

// Malformed is a shorthand for building a MalformedSnapshotError
func Malformed(path, format string, args ...interface{}) error {
	return &MalformedSnapshotError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
