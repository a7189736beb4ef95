package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampThreads(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		threads int
		want    int
	}{
		{"normal", 1 << 20, 4, 4},
		{"zero size", 0, 10, 1},
		{"zero threads", 100, 0, 1},
		{"negative threads", 100, -5, 1},
		{"more threads than bytes", 10, 100, 10},
		{"one byte", 1, 32, 1},
		{"exact match", 8, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampThreads(tt.size, tt.threads))
		})
	}
}

func TestPartition_Invariants(t *testing.T) {
	sizes := []int64{0, 1, 2, 9, 10, 11, 4096, 1<<20 + 3, 10 << 20}
	threadCounts := []int{1, 2, 3, 4, 7, 10, 100}

	for _, size := range sizes {
		for _, threads := range threadCounts {
			slices := Partition(size, threads)
			require.NotEmpty(t, slices)

			// Ordered, contiguous, non-overlapping: each slice starts where
			// the previous one ended, beginning at offset 0.
			var offset, total int64
			var minLen, maxLen int64 = 1<<62, 0
			for _, s := range slices {
				assert.Equal(t, offset, s.Offset, "size=%d threads=%d", size, threads)
				assert.GreaterOrEqual(t, s.Length, int64(0))
				offset = s.End()
				total += s.Length
				if s.Length < minLen {
					minLen = s.Length
				}
				if s.Length > maxLen {
					maxLen = s.Length
				}
			}

			assert.Equal(t, size, total, "lengths must sum to size")
			assert.LessOrEqual(t, maxLen-minLen, int64(1), "lengths differ by at most 1")

			if size > 0 {
				assert.LessOrEqual(t, int64(len(slices)), size, "never more slices than bytes")
			}
		}
	}
}

func TestPartition_ZeroSize(t *testing.T) {
	slices := Partition(0, 16)
	require.Len(t, slices, 1)
	assert.Equal(t, Slice{Offset: 0, Length: 0}, slices[0])
}

func TestPartition_RemainderToEarliestSlices(t *testing.T) {
	// 10 bytes over 3 workers: 10/3 = 3 rem 1, so the first slice gets the
	// extra byte.
	slices := Partition(10, 3)
	require.Len(t, slices, 3)
	assert.Equal(t, Slice{Offset: 0, Length: 4}, slices[0])
	assert.Equal(t, Slice{Offset: 4, Length: 3}, slices[1])
	assert.Equal(t, Slice{Offset: 7, Length: 3}, slices[2])
}

func TestPartition_TenMiBFourWorkers(t *testing.T) {
	const size = 10 << 20
	slices := Partition(size, 4)
	require.Len(t, slices, 4)

	var total int64
	for _, s := range slices {
		total += s.Length
	}
	assert.Equal(t, int64(size), total)
	assert.Equal(t, int64(size)/4, slices[0].Length)
}

func TestPartition_MoreThreadsThanBytes(t *testing.T) {
	slices := Partition(10, 100)
	require.Len(t, slices, 10)
	for _, s := range slices {
		assert.Equal(t, int64(1), s.Length)
	}
}
