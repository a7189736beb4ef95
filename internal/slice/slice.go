// Package slice partitions a file's byte extent into contiguous,
// non-overlapping ranges for concurrent copying.
package slice

// Slice is a contiguous byte range of a file assigned to one worker.
type Slice struct {
	Offset int64
	Length int64
}

// End returns the first offset past the slice.
func (s Slice) End() int64 {
	return s.Offset + s.Length
}

// ClampThreads bounds the worker count so that no slice is requested for a
// zero-length remainder: a 10-byte file with 100 threads gets 10 workers,
// not 100 degenerate ones. A zero-size file gets exactly one worker.
func ClampThreads(size int64, threads int) int {
	if threads < 1 {
		threads = 1
	}
	if size < 1 {
		return 1
	}
	if int64(threads) > size {
		return int(size)
	}
	return threads
}

// Partition splits [0, size) into ClampThreads(size, threads) slices ordered
// by ascending offset. Lengths differ by at most one byte: the remainder of
// size/workers goes to the earliest slices. The slices are pairwise disjoint
// and their lengths sum to size. For size zero the result is a single
// zero-length slice.
func Partition(size int64, threads int) []Slice {
	workers := ClampThreads(size, threads)

	base := size / int64(workers)
	extra := size % int64(workers)

	slices := make([]Slice, workers)
	offset := int64(0)
	for i := range slices {
		length := base
		if int64(i) < extra {
			length++
		}
		slices[i] = Slice{Offset: offset, Length: length}
		offset += length
	}
	return slices
}
