package engine

import (
	"errors"
	"fmt"
	"os"
)

var errNotADirectory = errors.New("not a directory")

// Kind classifies a copy failure.
type Kind int

const (
	KindSourceNotFound Kind = iota + 1
	KindPermissionDenied
	KindDestinationCreate
	KindRead
	KindWrite
	KindShortRead
	KindCancelled
	KindTraversal
	KindVerificationMismatch
)

var kindNames = [...]string{
	KindSourceNotFound:       "SourceNotFound",
	KindPermissionDenied:     "PermissionDenied",
	KindDestinationCreate:    "DestinationCreateError",
	KindRead:                 "ReadError",
	KindWrite:                "WriteError",
	KindShortRead:            "ShortRead",
	KindCancelled:            "Cancelled",
	KindTraversal:            "TraversalError",
	KindVerificationMismatch: "VerificationMismatch",
}

func (k Kind) String() string {
	if int(k) > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// CopyError is a classified failure identifying the path (and, for
// slice-level failures, the byte offset) where the copy went wrong.
type CopyError struct {
	Kind   Kind
	Path   string
	Offset int64 // byte offset for slice-level errors, -1 otherwise
	Err    error
}

func (e *CopyError) Error() string {
	if e.Offset >= 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s at offset %d: %v", e.Kind, e.Path, e.Offset, e.Err)
		}
		return fmt.Sprintf("%s: %s at offset %d", e.Kind, e.Path, e.Offset)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err, or 0 if err is not a CopyError.
func KindOf(err error) Kind {
	var ce *CopyError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// newPathError classifies err for a whole-path failure (no offset).
func newPathError(kind Kind, path string, err error) *CopyError {
	return &CopyError{Kind: kind, Path: path, Offset: -1, Err: err}
}

// newSliceError classifies err for a failure inside a slice.
func newSliceError(kind Kind, path string, offset int64, err error) *CopyError {
	return &CopyError{Kind: kind, Path: path, Offset: offset, Err: err}
}

// classifyOpen maps a source-open failure onto the taxonomy.
func classifyOpen(path string, err error) *CopyError {
	switch {
	case os.IsNotExist(err):
		return newPathError(KindSourceNotFound, path, err)
	case os.IsPermission(err):
		return newPathError(KindPermissionDenied, path, err)
	default:
		return newPathError(KindRead, path, err)
	}
}
