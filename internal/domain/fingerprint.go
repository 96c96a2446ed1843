package domain

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/sift/internal/adapter"
	m "github.com/mouse-blink/sift/internal/model"
)

// ErrEmptyFile marks zero-byte files. They carry the sentinel digest so
// they never cluster with each other, and the planner keeps them.
var ErrEmptyFile = errors.New("file is empty")

// Fingerprinter turns walker output into immutable FileRecords carrying
// an exact content digest and, for supported images, a perceptual hash.
type Fingerprinter interface {
	// Fingerprint digests every input file. Per-file read failures are
	// recorded on the returned records rather than failing the pass;
	// onDone, when non-nil, is called after each file completes.
	Fingerprint(ctx context.Context, infos []adapter.FileInfo, onDone func(done int)) ([]m.FileRecord, error)
}

type fingerprinter struct {
	fs      adapter.ScanFS
	workers int
}

// NewFingerprinter constructs a Fingerprinter reading through the given
// filesystem adapter with a worker pool of the given size.
func NewFingerprinter(fs adapter.ScanFS, workers int) Fingerprinter {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &fingerprinter{fs: fs, workers: workers}
}

// Fingerprint hashes the input files on a bounded worker pool. Files are
// independent, so order of completion does not matter; results land at
// their input index, keeping output order deterministic.
func (f *fingerprinter) Fingerprint(ctx context.Context, infos []adapter.FileInfo, onDone func(done int)) ([]m.FileRecord, error) {
	records := make([]m.FileRecord, len(infos))

	var done int64

	progress := make(chan struct{}, f.workers)
	drained := make(chan struct{})

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.workers)

	go func() {
		defer close(drained)

		for range progress {
			done++

			if onDone != nil {
				onDone(int(done))
			}
		}
	}()

	for i, info := range infos {
		i, info := i, info

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			records[i] = f.fingerprintOne(info)
			progress <- struct{}{}

			return nil
		})
	}

	err := group.Wait()

	close(progress)
	<-drained

	if err != nil {
		return nil, err
	}

	return records, nil
}

// fingerprintOne builds the record for a single file. Read failures set
// the scan error marker and leave the sentinel digest in place.
func (f *fingerprinter) fingerprintOne(info adapter.FileInfo) m.FileRecord {
	record := m.FileRecord{
		Path:    info.Path,
		Size:    info.Size,
		ModTime: info.ModTime,
	}

	if info.Size == 0 {
		record.ScanErr = ErrEmptyFile
		return record
	}

	digest, err := f.exactDigest(info.Path)
	if err != nil {
		slog.Warn("fingerprint failed", "path", info.Path, "error", err)
		record.ScanErr = err

		return record
	}

	record.Digest = digest

	if supportsPerceptual(info.Path) {
		hash, perr := f.perceptual(info.Path)
		if perr != nil {
			// Corrupt or unsupported image data: the record still
			// participates in exact-duplicate clustering.
			slog.Debug("perceptual hash skipped", "path", info.Path, "error", perr)
		} else {
			record.Perceptual = hash
			record.PerceptualOK = true
		}
	}

	return record
}

func (f *fingerprinter) exactDigest(path m.Path) (m.Digest, error) {
	var digest m.Digest

	r, err := f.fs.Open(path)
	if err != nil {
		return digest, err
	}

	defer func() {
		_ = r.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return digest, err
	}

	copy(digest[:], h.Sum(nil))

	return digest, nil
}

func (f *fingerprinter) perceptual(path m.Path) (m.PerceptualHash, error) {
	r, err := f.fs.Open(path)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = r.Close()
	}()

	return perceptualHash(r)
}
