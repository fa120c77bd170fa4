// Package storage defines the pluggable persistence contract for the
// registry (C3): load a full snapshot at startup, apply a single change
// synchronously after an in-memory write validates, and watch for changes
// applied by peers. File and etcd implementations live in the file and
// etcd subpackages.
package storage

import (
	"context"

	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// EntityKind identifies which registry collection a [Change] or record
// belongs to.
type EntityKind int

const (
	KindTarget EntityKind = iota
	KindActor
	KindGroup
	KindRole
	KindPolicy
)

// String returns the lowercase name used as a file-tree directory name and
// an etcd key prefix segment.
func (k EntityKind) String() string {
	switch k {
	case KindTarget:
		return "targets"
	case KindActor:
		return "actors"
	case KindGroup:
		return "groups"
	case KindRole:
		return "roles"
	case KindPolicy:
		return "policies"
	default:
		return "unknown"
	}
}

// Op identifies whether a [Change] is an upsert or a deletion.
type Op int

const (
	// Put upserts Record at Key.
	Put Op = iota
	// Delete removes whatever is stored at Key.
	Delete
)

// Change is a single mutation to persist or to apply from a watch stream.
// Key is the canonical identity string for the entity (see [KeyFor]).
// Record is one of the Record types in this package and is nil for a
// Delete.
type Change struct {
	Kind   EntityKind
	Op     Op
	Key    string
	Record any
}

// KeyFor builds the canonical storage key for an entity identity. Targets
// and actors are keyed by "type/name"; groups, roles, and policies by
// "name" alone, matching the data model's identity tuples (§3).
func KeyFor(kind EntityKind, typ, name string) string {
	switch kind {
	case KindTarget, KindActor:
		return value.Canon(typ) + "/" + value.Canon(name)
	default:
		return value.Canon(name)
	}
}

// Snapshot is the full registry state as loaded from or persisted to a
// storage driver.
type Snapshot struct {
	Targets  []TargetRecord
	Actors   []ActorRecord
	Groups   []GroupRecord
	Roles    []RoleRecord
	Policies []PolicyRecord
}

// Driver is the storage contract every persistence backend implements.
type Driver interface {
	// Load returns the full persisted state at startup. A driver with no
	// persisted state yet returns an empty, non-nil Snapshot.
	Load(ctx context.Context) (*Snapshot, error)

	// Apply persists a single change. It is called synchronously after the
	// registry's in-memory validation succeeds; the caller rolls back the
	// in-memory write if Apply returns an error.
	Apply(ctx context.Context, change Change) error

	// Watch returns a channel of changes observed from peers. The file
	// driver returns a channel that is never written to (single-node
	// operation); the etcd driver streams prefix watch events. The channel
	// is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan Change, error)

	// Close releases any resources (file handles, etcd client connections)
	// held by the driver.
	Close() error
}
