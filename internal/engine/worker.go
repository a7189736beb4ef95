package engine

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/pcp-io/pcp/internal/slice"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copySlice copies one byte range from srcPath to dstPath using pread/pwrite
// with a pooled buffer. The worker owns its own file handles; nothing is
// shared with sibling workers except the cancellation context and the
// optional rate limiter. Cancellation is polled between buffer chunks, so an
// in-flight chunk always completes before the worker stops.
func copySlice(ctx context.Context, srcPath, dstPath string, sl slice.Slice, limiter *rate.Limiter) SliceOutcome {
	out := SliceOutcome{Slice: sl}

	if sl.Length == 0 {
		return out
	}

	srcFd, err := os.Open(srcPath)
	if err != nil {
		out.Err = classifyOpen(srcPath, err)
		return out
	}
	defer srcFd.Close()

	dstFd, err := os.OpenFile(dstPath, os.O_WRONLY, 0)
	if err != nil {
		out.Err = newSliceError(KindWrite, dstPath, sl.Offset, err)
		return out
	}
	defer dstFd.Close()

	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	offset := sl.Offset
	remaining := sl.Length
	srcRawFd := int(srcFd.Fd())
	dstRawFd := int(dstFd.Fd())

	for remaining > 0 {
		select {
		case <-ctx.Done():
			out.Err = newSliceError(KindCancelled, srcPath, offset, ctx.Err())
			return out
		default:
		}

		toRead := int(remaining)
		if toRead > bufferSize {
			toRead = bufferSize
		}
		if limiter != nil && toRead > limiter.Burst() {
			// WaitN rejects requests larger than the burst outright.
			toRead = limiter.Burst()
		}

		n, err := unix.Pread(srcRawFd, buf[:toRead], offset)
		if err != nil {
			out.Err = newSliceError(KindRead, srcPath, offset, err)
			return out
		}
		if n == 0 {
			// EOF before the slice was exhausted: the source is shorter
			// than the task believed. Fatal for the slice.
			out.Err = newSliceError(KindShortRead, srcPath, offset, nil)
			return out
		}

		if limiter != nil {
			if err := limiter.WaitN(ctx, n); err != nil {
				out.Err = newSliceError(KindCancelled, srcPath, offset, err)
				return out
			}
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstRawFd, buf[written:n], offset+int64(written))
			if err != nil {
				out.Err = newSliceError(KindWrite, dstPath, offset+int64(written), err)
				out.BytesCopied += int64(written)
				return out
			}
			written += w
		}

		offset += int64(n)
		remaining -= int64(n)
		out.BytesCopied += int64(n)
	}

	return out
}
