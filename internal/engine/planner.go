package engine

import (
	"os"
	"path/filepath"
)

// PlanTree walks the source tree depth-first and returns an ordered copy
// plan: a directory entry for the root and every descendant directory,
// emitted before anything nested beneath it, and a file entry for every
// regular file, mapped onto the same relative path under dstRoot.
//
// Symlinks are never followed and never copied; they are skipped and
// counted. Cross-device boundaries are traversed like ordinary directories.
// Unreadable subpaths fail the whole plan.
func PlanTree(srcRoot, dstRoot string) (entries []PlanEntry, skipped int, err error) {
	info, err := os.Lstat(srcRoot)
	if err != nil {
		return nil, 0, classifyOpen(srcRoot, err)
	}
	if !info.IsDir() {
		return nil, 0, newPathError(KindTraversal, srcRoot, errNotADirectory)
	}

	entries = append(entries, PlanEntry{Kind: EntryDir, SrcPath: srcRoot, DstPath: dstRoot})

	skipped, err = planDir(srcRoot, dstRoot, &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, skipped, nil
}

func planDir(srcDir, dstDir string, entries *[]PlanEntry) (int, error) {
	dirents, err := os.ReadDir(srcDir)
	if err != nil {
		return 0, newPathError(KindTraversal, srcDir, err)
	}

	skipped := 0
	for _, d := range dirents {
		srcPath := filepath.Join(srcDir, d.Name())
		dstPath := filepath.Join(dstDir, d.Name())

		switch {
		case d.Type()&os.ModeSymlink != 0:
			// Policy: symlinks are skipped, not followed. Following them
			// risks cycles and copying outside the tree.
			skipped++

		case d.IsDir():
			*entries = append(*entries, PlanEntry{Kind: EntryDir, SrcPath: srcPath, DstPath: dstPath})
			n, err := planDir(srcPath, dstPath, entries)
			if err != nil {
				return 0, err
			}
			skipped += n

		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return 0, newPathError(KindTraversal, srcPath, err)
			}
			*entries = append(*entries, PlanEntry{
				Kind:    EntryFile,
				SrcPath: srcPath,
				DstPath: dstPath,
				Size:    info.Size(),
			})

		default:
			// Sockets, fifos, devices: not copyable by this tool.
			skipped++
		}
	}

	return skipped, nil
}
