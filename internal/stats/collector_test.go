package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.AddFilesCopied(2)
	c.AddFilesFailed(1)
	c.AddFilesSkipped(3)
	c.AddDirsCreated(4)
	c.AddSlicesCopied(8)
	c.AddBytesCopied(1024)
	c.SetTotals(10, 4096)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.FilesCopied)
	assert.Equal(t, int64(1), snap.FilesFailed)
	assert.Equal(t, int64(3), snap.FilesSkipped)
	assert.Equal(t, int64(4), snap.DirsCreated)
	assert.Equal(t, int64(8), snap.SlicesCopied)
	assert.Equal(t, int64(1024), snap.BytesCopied)
	assert.Equal(t, int64(10), snap.FilesTotal)
	assert.Equal(t, int64(4096), snap.BytesTotal)
	assert.Greater(t, snap.Elapsed, time.Duration(0))
}

func TestCollector_ZeroValueUsable(t *testing.T) {
	var c Collector
	c.AddBytesCopied(5)

	snap := c.Snapshot()
	assert.Equal(t, int64(5), snap.BytesCopied)
	assert.Equal(t, time.Duration(0), snap.Elapsed)
}

func TestSnapshot_Throughput(t *testing.T) {
	s := Snapshot{BytesCopied: 1000, Elapsed: time.Second}
	assert.InDelta(t, 8000, s.Throughput(), 0.01)

	s = Snapshot{BytesCopied: 1000}
	assert.Equal(t, float64(0), s.Throughput())
}

func TestSnapshot_String(t *testing.T) {
	s := Snapshot{FilesCopied: 1, SlicesCopied: 4, BytesCopied: 100}
	assert.Contains(t, s.String(), "copied=1")
	assert.Contains(t, s.String(), "slices=4")
	assert.Contains(t, s.String(), "bytes=100")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{10 << 20, "10.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}
