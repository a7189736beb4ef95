package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// VerifyResult holds the outcome of a post-copy equality check.
type VerifyResult struct {
	SrcPath   string
	DstPath   string
	SrcDigest string
	DstDigest string
	Identical bool
}

// VerifyFile re-reads source and destination and compares BLAKE3 digests,
// streaming both files chunk by chunk so nothing is buffered whole. A
// mismatch is reported through the result, not an error: verification
// failing is distinct from verification being impossible to run.
func VerifyFile(srcPath, dstPath string) (VerifyResult, error) {
	result := VerifyResult{SrcPath: srcPath, DstPath: dstPath}

	srcDigest, err := HashFile(srcPath)
	if err != nil {
		return result, classifyOpen(srcPath, err)
	}
	result.SrcDigest = srcDigest

	dstDigest, err := HashFile(dstPath)
	if err != nil {
		return result, newPathError(KindRead, dstPath, err)
	}
	result.DstDigest = dstDigest

	result.Identical = srcDigest == dstDigest
	return result, nil
}

// MismatchError converts a non-identical result into its user-visible error.
// Returns nil when the files matched.
func (r VerifyResult) MismatchError() error {
	if r.Identical {
		return nil
	}
	return newPathError(KindVerificationMismatch, r.DstPath,
		fmt.Errorf("source %.16s != destination %.16s", r.SrcDigest, r.DstDigest))
}

// HashFile computes the BLAKE3 hash of the file at path, returning the
// hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
