// Package engine implements the pure evaluation path of a check: context
// enrichment (C4), rule matching (C5), and decision resolution (C6). None
// of it touches the storage driver or performs I/O — per the concurrency
// contract, this path must never suspend.
package engine

import (
	"hash/fnv"

	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// bucketModulus is the size of the feature-flag rollout space: buckets are
// integers in [0, 99].
const bucketModulus = 100

// Bucket derives the deterministic [0, 99] rollout bucket for an actor
// identity. It is stable across calls and across processes for the same
// canonical (name, type) tuple, which FNV-1a over a fixed-format string
// gives for free without a seed or external state.
func Bucket(name, typ string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(value.Canon(name)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(value.Canon(typ)))
	return int32(h.Sum32() % bucketModulus)
}
