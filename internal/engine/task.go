package engine

import (
	"github.com/google/uuid"

	"github.com/pcp-io/pcp/internal/slice"
)

// FileTask describes one file copy: the source, the destination, and the
// slices the copy is divided into. Immutable after creation.
type FileTask struct {
	ID      uuid.UUID
	SrcPath string
	DstPath string
	Size    int64
	Slices  []slice.Slice
}

// NewFileTask builds a task whose slices partition [0, size) across at most
// threads workers.
func NewFileTask(srcPath, dstPath string, size int64, threads int) FileTask {
	return FileTask{
		ID:      uuid.New(),
		SrcPath: srcPath,
		DstPath: dstPath,
		Size:    size,
		Slices:  slice.Partition(size, threads),
	}
}

// SliceOutcome is the terminal state of one slice worker.
type SliceOutcome struct {
	Slice       slice.Slice
	BytesCopied int64
	Err         error // nil on success
}

// CopyResult is the terminal state of a whole file copy.
type CopyResult struct {
	Task        FileTask
	BytesCopied int64
	Err         error // nil on success, else the first error by slice offset
}

// EntryKind identifies the kind of plan entry.
type EntryKind int

const (
	EntryDir EntryKind = iota
	EntryFile
)

// PlanEntry is one step of a directory copy plan: create a directory or copy
// a regular file. A directory's entry always precedes the entries for paths
// nested beneath it.
type PlanEntry struct {
	Kind    EntryKind
	SrcPath string
	DstPath string
	Size    int64 // regular files only
}
