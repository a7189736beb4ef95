package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	PlanStarted Type = iota + 1
	PlanComplete
	FileStarted
	FileCompleted
	FileFailed
	FileSkipped
	SliceCompleted
	DirCreated
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	PlanStarted:    "PlanStarted",
	PlanComplete:   "PlanComplete",
	FileStarted:    "FileStarted",
	FileCompleted:  "FileCompleted",
	FileFailed:     "FileFailed",
	FileSkipped:    "FileSkipped",
	SliceCompleted: "SliceCompleted",
	DirCreated:     "DirCreated",
	VerifyStarted:  "VerifyStarted",
	VerifyOK:       "VerifyOK",
	VerifyFailed:   "VerifyFailed",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && int(t) > 0 {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string
	Size      int64 // file size, or bytes copied for SliceCompleted
	Offset    int64 // slice offset (SliceCompleted only)
	Total     int64 // total files (PlanComplete)
	TotalSize int64 // total bytes (PlanComplete)
	Error     error
}
