package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pcp-io/pcp/internal/event"
	"github.com/pcp-io/pcp/internal/slice"
	"github.com/pcp-io/pcp/internal/stats"
)

// WorkerConfig controls slice worker behavior.
type WorkerConfig struct {
	Limiter *rate.Limiter // optional shared bandwidth cap
	Stats   *stats.Collector
	Events  chan<- event.Event
}

// WorkerPool runs one slice worker per slice of a task, concurrently, and
// aggregates their outcomes into a single CopyResult.
type WorkerPool struct {
	cfg WorkerConfig
}

// NewWorkerPool creates a worker pool.
func NewWorkerPool(cfg WorkerConfig) *WorkerPool {
	if cfg.Stats == nil {
		cfg.Stats = &stats.Collector{}
	}
	return &WorkerPool{cfg: cfg}
}

// Copy executes the task: one goroutine per slice, each with its own file
// handles, writing at disjoint offsets. The first failing worker cancels the
// shared context; siblings notice between buffer chunks and stop early. The
// pool always waits for every worker to reach a terminal outcome before
// reporting, so no background work outlives the call.
//
// The reported error is deterministic: the errored outcome with the lowest
// slice offset wins, regardless of which worker failed first in wall-clock
// order. Cancellation outcomes only win when nothing else failed.
func (wp *WorkerPool) Copy(ctx context.Context, task FileTask) CopyResult {
	result := CopyResult{Task: task}

	wp.emit(event.Event{Type: event.FileStarted, Path: task.SrcPath, Size: task.Size})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan SliceOutcome, len(task.Slices))
	var wg sync.WaitGroup
	for _, sl := range task.Slices {
		wg.Add(1)
		go func(sl slice.Slice) {
			defer wg.Done()
			out := copySlice(ctx, task.SrcPath, task.DstPath, sl, wp.cfg.Limiter)
			if out.Err != nil {
				cancel()
			}
			outcomes <- out
		}(sl)
	}

	wg.Wait()
	close(outcomes)

	var firstErr, firstCancel *SliceOutcome
	for out := range outcomes {
		out := out
		result.BytesCopied += out.BytesCopied

		if out.Err == nil {
			wp.cfg.Stats.AddSlicesCopied(1)
			wp.cfg.Stats.AddBytesCopied(out.BytesCopied)
			wp.emit(event.Event{
				Type:   event.SliceCompleted,
				Path:   task.SrcPath,
				Offset: out.Slice.Offset,
				Size:   out.BytesCopied,
			})
			continue
		}

		if isCancelled(out.Err) {
			if firstCancel == nil || out.Slice.Offset < firstCancel.Slice.Offset {
				firstCancel = &out
			}
		} else if firstErr == nil || out.Slice.Offset < firstErr.Slice.Offset {
			firstErr = &out
		}
	}

	switch {
	case firstErr != nil:
		result.Err = firstErr.Err
	case firstCancel != nil:
		result.Err = firstCancel.Err
	case result.BytesCopied != task.Size:
		// Every slice reported success but the byte counts disagree with
		// the task size. Should be impossible given the partition
		// invariant; report rather than claim success.
		result.Err = newPathError(KindShortRead, task.SrcPath, nil)
	}

	if result.Err != nil {
		wp.cfg.Stats.AddFilesFailed(1)
		wp.emit(event.Event{
			Type:  event.FileFailed,
			Path:  task.SrcPath,
			Size:  task.Size,
			Error: result.Err,
		})
		return result
	}

	wp.cfg.Stats.AddFilesCopied(1)
	wp.emit(event.Event{Type: event.FileCompleted, Path: task.SrcPath, Size: task.Size})
	return result
}

func isCancelled(err error) bool {
	ce, ok := err.(*CopyError)
	return ok && ce.Kind == KindCancelled
}

func (wp *WorkerPool) emit(e event.Event) {
	if wp.cfg.Events == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case wp.cfg.Events <- e:
	default:
	}
}
