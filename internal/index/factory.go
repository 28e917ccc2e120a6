package index

import "fmt"

// Algorithm names the three supported nearest-neighbor structures.
const (
	AlgorithmLinear = "linear"
	AlgorithmKDTree = "kd_tree"
	AlgorithmLSH    = "lsh"
)

// ErrUnknownAlgorithm is returned by Create when algorithm names anything
// outside {linear, kd_tree, lsh}.
type ErrUnknownAlgorithm struct{ Algorithm string }

func (e ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unknown algorithm: %s", e.Algorithm)
}

// Options bundles the per-algorithm construction knobs a caller may want to
// override; zero values fall back to each algorithm's own defaults.
type Options struct {
	Linear LinearOptions
	KDTree KDTreeOptions
	LSH    LSHOptions
}

// LinearOptions mirrors the LinearIndex constructor's tunables.
type LinearOptions struct {
	Normalize *bool
	BatchSize int
}

// KDTreeOptions mirrors the KDTreeIndex constructor's tunables.
type KDTreeOptions struct {
	QuickselectThreshold int
	RebuildRatio         float64
}

// LSHOptions mirrors the LSHIndex constructor's tunables.
type LSHOptions struct {
	NumTables     int
	HashSize      int
	Normalize     *bool
	MaxCandidates int
}

// Create builds an Index of the named algorithm over chunks. It is the
// only place in this package that branches on an algorithm name string;
// everywhere else operates through the Index interface.
func Create(chunks []Chunk, algorithm string, opts Options) (Index, error) {
	switch algorithm {
	case AlgorithmLinear:
		var linOpts []LinearOption
		if opts.Linear.Normalize != nil {
			linOpts = append(linOpts, WithNormalize(*opts.Linear.Normalize))
		}
		if opts.Linear.BatchSize > 0 {
			linOpts = append(linOpts, WithBatchSize(opts.Linear.BatchSize))
		}
		return NewLinearIndex(chunks, linOpts...), nil

	case AlgorithmKDTree:
		var kdOpts []KDTreeOption
		if opts.KDTree.QuickselectThreshold > 0 {
			kdOpts = append(kdOpts, WithQuickselectThreshold(opts.KDTree.QuickselectThreshold))
		}
		if opts.KDTree.RebuildRatio > 0 {
			kdOpts = append(kdOpts, WithRebuildRatio(opts.KDTree.RebuildRatio))
		}
		return NewKDTreeIndex(chunks, kdOpts...), nil

	case AlgorithmLSH:
		var lshOpts []LSHOption
		if opts.LSH.NumTables > 0 {
			lshOpts = append(lshOpts, WithNumTables(opts.LSH.NumTables))
		}
		if opts.LSH.HashSize > 0 {
			lshOpts = append(lshOpts, WithHashSize(opts.LSH.HashSize))
		}
		if opts.LSH.Normalize != nil {
			lshOpts = append(lshOpts, WithLSHNormalize(*opts.LSH.Normalize))
		}
		if opts.LSH.MaxCandidates > 0 {
			lshOpts = append(lshOpts, WithMaxCandidates(opts.LSH.MaxCandidates))
		}
		return NewLSHIndex(chunks, lshOpts...), nil

	default:
		return nil, ErrUnknownAlgorithm{Algorithm: algorithm}
	}
}

// IsUpdateable reports whether idx supports incremental Add/Remove rather
// than requiring a full rebuild for every mutation. It returns true for any
// non-nil idx: the Index interface carries no capability marker, so a
// wrapper around an index that refuses Add/Remove is still reported as
// updateable.
func IsUpdateable(idx Index) bool {
	return idx != nil
}
