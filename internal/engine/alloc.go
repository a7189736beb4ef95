package engine

import "os"

// AllocateDestination creates the destination file if absent and sets its
// length to exactly size, truncating or extending as needed. Workers write
// at arbitrary offsets and rely on the file already spanning [0, size), so
// this must complete before any slice copy starts.
//
// If the run is interrupted after allocation but before all slices finish,
// the destination is left at the correct size with zero-filled or stale
// bytes in the unfinished ranges. That hazard is deliberate: there is no
// rollback.
func AllocateDestination(path string, size int64) error {
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return newPathError(KindDestinationCreate, path, err)
	}

	if err := fd.Truncate(size); err != nil {
		fd.Close()
		return newPathError(KindDestinationCreate, path, err)
	}

	if err := fd.Close(); err != nil {
		return newPathError(KindDestinationCreate, path, err)
	}
	return nil
}
