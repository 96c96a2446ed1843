// Package model defines the data structures for cleanup planning.
package model

import (
	"encoding/hex"
	"time"
)

// Path represents a file system path.
type Path string

// DigestSize is the length in bytes of an exact content digest (SHA-256).
const DigestSize = 32

// Digest is the exact content digest of a file. The zero value is the
// sentinel used for files that could not be read.
type Digest [DigestSize]byte

// IsSentinel reports whether the digest is the unreadable-file sentinel.
func (d Digest) IsSentinel() bool {
	return d == Digest{}
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// PerceptualHash is a 64-bit difference hash of a downsampled grayscale
// rendition of an image. Visually similar images have hashes with small
// Hamming distance.
type PerceptualHash uint64

// FileRecord is an immutable snapshot of one scanned file. It is created
// once per scan pass by the fingerprint engine and never mutated after.
type FileRecord struct {
	Path    Path
	Size    int64
	ModTime time.Time

	Digest Digest

	// Perceptual is valid only when PerceptualOK is true. It is computed
	// for supported image formats and omitted otherwise.
	Perceptual   PerceptualHash
	PerceptualOK bool

	// ScanErr records why fingerprinting failed for this file. Records
	// with a scan error carry the sentinel digest and are excluded from
	// clustering; the planner keeps them unconditionally.
	ScanErr error
}

// Readable reports whether the record was fingerprinted successfully.
func (r FileRecord) Readable() bool {
	return r.ScanErr == nil
}

// AgeAt returns the time elapsed since the file was last modified.
func (r FileRecord) AgeAt(now time.Time) time.Duration {
	return now.Sub(r.ModTime)
}
