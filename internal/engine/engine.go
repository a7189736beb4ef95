// Package engine implements the parallel slice-copy engine: it partitions
// each file into disjoint byte ranges, copies the ranges concurrently with
// positional I/O, and composes that per-file mechanism into recursive
// directory copies.
//
// The engine is fail-fast and never rolls back: on error the destination may
// be left partially written, at the correct size but with incorrect content
// in unfinished slices. There is no disk-space preflight, no retry, and no
// I/O timeout; a hung filesystem call blocks its worker.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pcp-io/pcp/internal/event"
	"github.com/pcp-io/pcp/internal/stats"
)

// DefaultThreads is the per-file thread count when the user sets none.
const DefaultThreads = 10

// Config describes a copy operation.
type Config struct {
	Src       string
	Dst       string
	Threads   int
	Recursive bool
	Verify    bool  // single-file mode only
	BWLimit   int64 // bytes/sec across all workers, 0 = unlimited
	Events    chan<- event.Event
	Stats     *stats.Collector
}

// Result is the outcome of a copy operation.
type Result struct {
	Stats  stats.Snapshot
	Verify *VerifyResult // set only when verification ran
	Err    error
}

// Run executes a copy operation, blocking until complete.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	// Stat, not Lstat: naming a symlink as the source explicitly means its
	// target. Recursive mode skips symlinks instead (see PlanTree).
	srcInfo, err := os.Stat(cfg.Src)
	if err != nil {
		return Result{Stats: cfg.Stats.Snapshot(), Err: classifyOpen(cfg.Src, err)}
	}

	if srcInfo.IsDir() && !cfg.Recursive {
		return Result{
			Stats: cfg.Stats.Snapshot(),
			Err:   fmt.Errorf("source %s is a directory (use -r)", cfg.Src),
		}
	}

	wp := NewWorkerPool(WorkerConfig{
		Limiter: bwLimiter(cfg.BWLimit),
		Stats:   cfg.Stats,
		Events:  cfg.Events,
	})

	if srcInfo.IsDir() {
		return runDirCopy(ctx, cfg, wp)
	}
	return runFileCopy(ctx, cfg, wp, srcInfo)
}

// runDirCopy copies a whole tree: directories strictly in plan order first
// (each one is a precondition for the files beneath it), then one file task
// at a time. Any single failure aborts the remainder of the plan; files
// already copied are left in place.
func runDirCopy(ctx context.Context, cfg Config, wp *WorkerPool) Result {
	emit(cfg.Events, event.Event{Type: event.PlanStarted, Path: cfg.Src})

	entries, skipped, err := PlanTree(cfg.Src, cfg.Dst)
	if err != nil {
		return Result{Stats: cfg.Stats.Snapshot(), Err: err}
	}
	cfg.Stats.AddFilesSkipped(int64(skipped))

	var totalFiles, totalBytes int64
	for _, e := range entries {
		if e.Kind == EntryFile {
			totalFiles++
			totalBytes += e.Size
		}
	}
	cfg.Stats.SetTotals(totalFiles, totalBytes)
	emit(cfg.Events, event.Event{
		Type:      event.PlanComplete,
		Path:      cfg.Src,
		Total:     totalFiles,
		TotalSize: totalBytes,
	})

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return Result{
				Stats: cfg.Stats.Snapshot(),
				Err:   newPathError(KindCancelled, e.SrcPath, ctx.Err()),
			}
		default:
		}

		switch e.Kind {
		case EntryDir:
			if err := os.MkdirAll(e.DstPath, 0755); err != nil {
				return Result{
					Stats: cfg.Stats.Snapshot(),
					Err:   newPathError(KindDestinationCreate, e.DstPath, err),
				}
			}
			cfg.Stats.AddDirsCreated(1)
			emit(cfg.Events, event.Event{Type: event.DirCreated, Path: e.DstPath})

		case EntryFile:
			result := copyOneFile(ctx, cfg, wp, e.SrcPath, e.DstPath, e.Size)
			if result.Err != nil {
				return Result{Stats: cfg.Stats.Snapshot(), Err: result.Err}
			}
		}
	}

	return Result{Stats: cfg.Stats.Snapshot()}
}

func runFileCopy(ctx context.Context, cfg Config, wp *WorkerPool, srcInfo os.FileInfo) Result {
	dst := cfg.Dst

	// If dst is an existing directory, copy into it.
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(cfg.Src))
	}

	cfg.Stats.SetTotals(1, srcInfo.Size())

	result := copyOneFile(ctx, cfg, wp, cfg.Src, dst, srcInfo.Size())
	if result.Err != nil {
		return Result{Stats: cfg.Stats.Snapshot(), Err: result.Err}
	}

	if !cfg.Verify {
		return Result{Stats: cfg.Stats.Snapshot()}
	}

	emit(cfg.Events, event.Event{Type: event.VerifyStarted, Path: dst})
	verify, err := VerifyFile(cfg.Src, dst)
	if err != nil {
		return Result{Stats: cfg.Stats.Snapshot(), Verify: &verify, Err: err}
	}
	if !verify.Identical {
		emit(cfg.Events, event.Event{Type: event.VerifyFailed, Path: dst})
		return Result{Stats: cfg.Stats.Snapshot(), Verify: &verify, Err: verify.MismatchError()}
	}

	emit(cfg.Events, event.Event{Type: event.VerifyOK, Path: dst})
	return Result{Stats: cfg.Stats.Snapshot(), Verify: &verify}
}

// copyOneFile runs the single-file path: partition, allocate, copy.
func copyOneFile(ctx context.Context, cfg Config, wp *WorkerPool, src, dst string, size int64) CopyResult {
	task := NewFileTask(src, dst, size, cfg.Threads)

	if err := AllocateDestination(dst, size); err != nil {
		cfg.Stats.AddFilesFailed(1)
		emit(cfg.Events, event.Event{Type: event.FileFailed, Path: src, Error: err})
		return CopyResult{Task: task, Err: err}
	}

	return wp.Copy(ctx, task)
}

func emit(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
