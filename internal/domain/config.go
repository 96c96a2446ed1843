// Package domain implements the cleanup decision engine: fingerprinting,
// duplicate clustering, heuristic scoring and the per-cluster action
// search.
package domain

import "time"

// Defaults for the engine configuration.
const (
	DefaultStaleThreshold   = 180 * 24 * time.Hour
	DefaultNearDistance     = 8
	DefaultWorkers          = 4
	DefaultArchiveThreshold = 2.5
	DefaultDeleteConfidence = 6.0

	defaultKeepPenalty    = 1.0
	defaultArchiveCost    = 1.0
	defaultArchiveBenefit = 0.1
	defaultDeleteCost     = 0.5
	defaultDeleteBenefit  = 0.2
)

// Config carries every tunable the engine uses. It is passed explicitly
// into each component constructor; nothing reads ambient state, so tests
// can run several differently-tuned engines in one process.
type Config struct {
	// StaleThreshold is the age at which a file's age contribution
	// reaches its fixed maximum.
	StaleThreshold time.Duration

	// MaxFiles caps the number of files fingerprinted in one run.
	// Zero means unbounded. Hitting the cap marks the plan truncated.
	MaxFiles int

	// NearDistance is the maximum Hamming distance between perceptual
	// hashes for two images to count as near duplicates.
	NearDistance int

	// Workers bounds the fingerprinting pool.
	Workers int

	// KeepPenalty is the redundancy cost of keeping a non-representative
	// copy of a duplicate.
	KeepPenalty float64

	// ArchiveCost and ArchiveBenefit shape the archive step cost:
	// ArchiveCost - ArchiveBenefit*score.
	ArchiveCost    float64
	ArchiveBenefit float64

	// DeleteCost and DeleteBenefit shape the delete step cost:
	// DeleteCost - DeleteBenefit*score.
	DeleteCost    float64
	DeleteBenefit float64

	// ArchiveThreshold is the score above which a singleton is archived
	// without running a search.
	ArchiveThreshold float64

	// DeleteConfidence is the score a file must exceed before deletion
	// becomes a legal action outside exact-duplicate redundancy.
	DeleteConfidence float64
}

// DefaultConfig returns the engine defaults. The stale threshold and
// near-duplicate distance match the heuristics of the report scanner
// this engine grew out of.
func DefaultConfig() Config {
	return Config{
		StaleThreshold:   DefaultStaleThreshold,
		NearDistance:     DefaultNearDistance,
		Workers:          DefaultWorkers,
		KeepPenalty:      defaultKeepPenalty,
		ArchiveCost:      defaultArchiveCost,
		ArchiveBenefit:   defaultArchiveBenefit,
		DeleteCost:       defaultDeleteCost,
		DeleteBenefit:    defaultDeleteBenefit,
		ArchiveThreshold: DefaultArchiveThreshold,
		DeleteConfidence: DefaultDeleteConfidence,
	}
}

// normalized fills zero-valued fields with defaults so a partially
// populated Config behaves sensibly.
func (c Config) normalized() Config {
	def := DefaultConfig()

	if c.StaleThreshold <= 0 {
		c.StaleThreshold = def.StaleThreshold
	}

	if c.NearDistance <= 0 {
		c.NearDistance = def.NearDistance
	}

	if c.Workers <= 0 {
		c.Workers = def.Workers
	}

	if c.KeepPenalty <= 0 {
		c.KeepPenalty = def.KeepPenalty
	}

	if c.ArchiveCost == 0 {
		c.ArchiveCost = def.ArchiveCost
	}

	if c.ArchiveBenefit == 0 {
		c.ArchiveBenefit = def.ArchiveBenefit
	}

	if c.DeleteCost == 0 {
		c.DeleteCost = def.DeleteCost
	}

	if c.DeleteBenefit == 0 {
		c.DeleteBenefit = def.DeleteBenefit
	}

	if c.ArchiveThreshold == 0 {
		c.ArchiveThreshold = def.ArchiveThreshold
	}

	if c.DeleteConfidence == 0 {
		c.DeleteConfidence = def.DeleteConfidence
	}

	return c
}
