package domain

import (
	"fmt"
	"sort"

	m "github.com/mouse-blink/sift/internal/model"
)

// clusterIDHexLen is how many digest hex digits go into a cluster ID.
const clusterIDHexLen = 12

// ClusterBuilder partitions fingerprinted records into exact and
// near-duplicate clusters. Singletons are left unclustered.
type ClusterBuilder interface {
	Build(records []m.FileRecord) []m.Cluster
}

type clusterBuilder struct {
	cfg Config
}

// NewClusterBuilder constructs a ClusterBuilder with the given
// configuration.
func NewClusterBuilder(cfg Config) ClusterBuilder {
	return &clusterBuilder{cfg: cfg.normalized()}
}

// Build groups records into clusters. Exact grouping is a single pass
// over a digest-keyed map; near grouping runs union-find over pairwise
// perceptual comparisons restricted to records sharing a coarse hash
// prefix, so large scans avoid a full quadratic comparison.
//
// A record lands in at most one cluster; exact membership wins. Records
// with a scan error never cluster.
func (b *clusterBuilder) Build(records []m.FileRecord) []m.Cluster {
	readable := make([]m.FileRecord, 0, len(records))

	for _, rec := range records {
		if rec.Readable() {
			readable = append(readable, rec)
		}
	}

	clusters, clustered := b.exactClusters(readable)
	clusters = append(clusters, b.nearClusters(readable, clustered)...)

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID < clusters[j].ID })

	return clusters
}

// exactClusters groups records with identical digests and reports which
// paths were consumed.
func (b *clusterBuilder) exactClusters(records []m.FileRecord) ([]m.Cluster, map[m.Path]struct{}) {
	byDigest := make(map[m.Digest][]m.FileRecord)

	for _, rec := range records {
		byDigest[rec.Digest] = append(byDigest[rec.Digest], rec)
	}

	clustered := make(map[m.Path]struct{})

	var clusters []m.Cluster

	for digest, members := range byDigest {
		if len(members) < 2 {
			continue
		}

		cluster := newCluster(m.ClusterExact, fmt.Sprintf("exact-%s", digest.String()[:clusterIDHexLen]), members)
		clusters = append(clusters, cluster)

		for _, member := range members {
			clustered[member.Path] = struct{}{}
		}
	}

	return clusters, clustered
}

// nearClusters connects perceptually similar images left over after
// exact grouping. Pairwise comparison only happens inside coarse
// buckets keyed by the top 16 bits of the hash.
func (b *clusterBuilder) nearClusters(records []m.FileRecord, clustered map[m.Path]struct{}) []m.Cluster {
	var candidates []m.FileRecord

	for _, rec := range records {
		if _, taken := clustered[rec.Path]; taken {
			continue
		}

		if rec.PerceptualOK {
			candidates = append(candidates, rec)
		}
	}

	if len(candidates) < 2 {
		return nil
	}

	buckets := make(map[uint16][]int)
	for i, rec := range candidates {
		key := uint16(rec.Perceptual >> 48)
		buckets[key] = append(buckets[key], i)
	}

	uf := newUnionFind(len(candidates))

	for _, indices := range buckets {
		for i := 0; i < len(indices); i++ {
			for j := i + 1; j < len(indices); j++ {
				a, c := indices[i], indices[j]
				if hammingDistance(candidates[a].Perceptual, candidates[c].Perceptual) <= b.cfg.NearDistance {
					uf.union(a, c)
				}
			}
		}
	}

	components := make(map[int][]m.FileRecord)
	for i, rec := range candidates {
		root := uf.find(i)
		components[root] = append(components[root], rec)
	}

	var clusters []m.Cluster

	for _, members := range components {
		if len(members) < 2 {
			continue
		}

		clusters = append(clusters, newCluster(m.ClusterNear, nearClusterID(members), members))
	}

	return clusters
}

// nearClusterID derives a deterministic ID from the smallest member
// digest, so identical inputs always name clusters identically.
func nearClusterID(members []m.FileRecord) string {
	min := members[0].Digest.String()

	for _, member := range members[1:] {
		if s := member.Digest.String(); s < min {
			min = s
		}
	}

	return fmt.Sprintf("near-%s", min[:clusterIDHexLen])
}

func newCluster(kind m.ClusterKind, id string, members []m.FileRecord) m.Cluster {
	sorted := make([]m.FileRecord, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	return m.Cluster{
		ID:             id,
		Kind:           kind,
		Members:        sorted,
		Representative: pickRepresentative(sorted),
	}
}

// pickRepresentative selects the preferred surviving copy: oldest mtime,
// then shortest path, then lexicographically smallest path.
func pickRepresentative(members []m.FileRecord) m.Path {
	best := members[0]

	for _, candidate := range members[1:] {
		switch {
		case candidate.ModTime.Before(best.ModTime):
			best = candidate
		case candidate.ModTime.Equal(best.ModTime) && len(candidate.Path) < len(best.Path):
			best = candidate
		case candidate.ModTime.Equal(best.ModTime) && len(candidate.Path) == len(best.Path) && candidate.Path < best.Path:
			best = candidate
		}
	}

	return best.Path
}
