package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDestination_CreatesFileAtSize(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")

	require.NoError(t, AllocateDestination(dst, 4096))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
}

func TestAllocateDestination_TruncatesExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(dst, make([]byte, 100), 0644))

	require.NoError(t, AllocateDestination(dst, 10))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size())
}

func TestAllocateDestination_ExtendsExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(dst, []byte("abc"), 0644))

	require.NoError(t, AllocateDestination(dst, 1000))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Size())
}

func TestAllocateDestination_ZeroSize(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "empty.bin")

	require.NoError(t, AllocateDestination(dst, 0))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestAllocateDestination_MissingParent(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "missing", "out.bin")

	err := AllocateDestination(dst, 10)
	require.Error(t, err)
	assert.Equal(t, KindDestinationCreate, KindOf(err))
}
