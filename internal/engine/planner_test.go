package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTree_OrderAndMapping(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub", "deeper"), 0755))
	writeTestFile(t, src, "a.txt", []byte("aaa"))
	writeTestFile(t, filepath.Join(src, "sub"), "b.txt", []byte("bbbb"))
	writeTestFile(t, filepath.Join(src, "sub", "deeper"), "c.txt", []byte("c"))

	entries, skipped, err := PlanTree(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	// Root directory entry comes first.
	require.NotEmpty(t, entries)
	assert.Equal(t, EntryDir, entries[0].Kind)
	assert.Equal(t, src, entries[0].SrcPath)
	assert.Equal(t, dst, entries[0].DstPath)

	// Every directory entry precedes all entries nested beneath it.
	dirSeen := map[string]bool{}
	for i, e := range entries {
		if e.Kind == EntryDir {
			dirSeen[e.DstPath] = true
			continue
		}
		parent := filepath.Dir(e.DstPath)
		assert.True(t, dirSeen[parent],
			"entry %d (%s): parent directory %s not planned yet", i, e.DstPath, parent)
	}

	// Relative paths map source onto destination.
	var files []PlanEntry
	for _, e := range entries {
		if e.Kind == EntryFile {
			files = append(files, e)
		}
	}
	require.Len(t, files, 3)

	bySrc := map[string]PlanEntry{}
	for _, f := range files {
		rel, err := filepath.Rel(src, f.SrcPath)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dst, rel), f.DstPath)
		bySrc[rel] = f
	}
	assert.Equal(t, int64(3), bySrc["a.txt"].Size)
	assert.Equal(t, int64(4), bySrc[filepath.Join("sub", "b.txt")].Size)
	assert.Equal(t, int64(1), bySrc[filepath.Join("sub", "deeper", "c.txt")].Size)
}

func TestPlanTree_SkipsSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	target := writeTestFile(t, src, "real.txt", []byte("data"))
	require.NoError(t, os.Symlink(target, filepath.Join(src, "link.txt")))

	entries, skipped, err := PlanTree(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	for _, e := range entries {
		assert.NotContains(t, e.SrcPath, "link.txt")
	}
}

func TestPlanTree_MissingRoot(t *testing.T) {
	_, _, err := PlanTree(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, KindSourceNotFound, KindOf(err))
}

func TestPlanTree_RootIsFile(t *testing.T) {
	src := writeTestFile(t, t.TempDir(), "file.txt", []byte("x"))
	_, _, err := PlanTree(src, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, KindTraversal, KindOf(err))
}

func TestPlanTree_EmptyDirectory(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	entries, skipped, err := PlanTree(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, entries, 1)
	assert.Equal(t, EntryDir, entries[0].Kind)
}
