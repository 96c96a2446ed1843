package model

// ClusterKind tags how the members of a cluster were matched.
type ClusterKind string

const (
	// ClusterExact groups files with identical content digests.
	ClusterExact ClusterKind = "exact"
	// ClusterNear groups images whose perceptual hashes lie within the
	// similarity threshold of at least one other member.
	ClusterNear ClusterKind = "near"
)

// Cluster is a non-empty group of files believed identical or
// near-identical. Members are ordered by ascending path; a file belongs
// to at most one cluster.
type Cluster struct {
	ID      string
	Kind    ClusterKind
	Members []FileRecord

	// Representative is the member preferred as the surviving copy,
	// chosen by oldest mtime, then shortest path, then lexicographic
	// path order.
	Representative Path
}

// IsRepresentative reports whether the given path is the cluster's
// preferred surviving copy.
func (c Cluster) IsRepresentative(p Path) bool {
	return c.Representative == p
}
