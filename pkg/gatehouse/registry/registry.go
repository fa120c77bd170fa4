package registry

import (
	"sync"

	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// Registry is the single in-memory store of all entities. It is safe for
// concurrent use: reads (Get, and the lookups enrichment performs) take a
// read lock and may proceed in parallel; writes (Add/Modify/Remove) take
// the write lock and are mutually exclusive with everything else.
//
// The evaluation path (enrichment, matching, resolution) only ever calls
// the read-side methods here and never suspends on I/O, per the
// concurrency contract: Registry itself does no persistence, it only
// maintains the in-memory model and invariants. Persistence is the job of
// a storage driver layered on top (see [pkg/gatehouse/storage]).
type Registry struct {
	mu sync.RWMutex

	targets  map[targetKey]*Target
	actors   map[actorKey]*Actor
	groups   map[string]*Group // canonical name
	roles    map[string]*Role  // canonical name
	policies map[string]*Policy

	// secondary index: actor identity -> set of canonical group names the
	// actor is a member of. Role grants are read directly off each Role's
	// GrantedTo set, which is small and doesn't need its own index.
	groupsByActor map[actorKey]map[string]struct{}
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		targets:       make(map[targetKey]*Target),
		actors:        make(map[actorKey]*Actor),
		groups:        make(map[string]*Group),
		roles:         make(map[string]*Role),
		policies:      make(map[string]*Policy),
		groupsByActor: make(map[actorKey]map[string]struct{}),
	}
}

func canon(s string) string {
	return value.Canon(s)
}

// --- Target ---------------------------------------------------------------

// AddTarget inserts a new target. Fails with KindAlreadyExists if the
// (type, name) identity tuple is already present.
func (r *Registry) AddTarget(t *Target) (*Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := t.identity()
	if _, ok := r.targets[key]; ok {
		return nil, common.New(common.KindAlreadyExists, "target already exists")
	}

	stored := &Target{
		Name:       t.Name,
		Type:       t.Type,
		Actions:    canonSet(t.Actions),
		Attributes: canonAttrs(t.Attributes),
	}
	r.targets[key] = stored
	return stored.Clone(), nil
}

// TargetAttrChange describes an attribute add/remove delta used by Modify.
type TargetAttrChange struct {
	AddActions       []string
	RemoveActions    []string
	AddAttributes    map[string][]string
	RemoveAttributes map[string][]string
}

// ModifyTarget applies an additive/subtractive attribute and action merge
// to an existing target.
func (r *Registry) ModifyTarget(typ, name string, change TargetAttrChange) (*Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := targetKey{typ: value.Canon(typ), name: value.Canon(name)}
	t, ok := r.targets[key]
	if !ok {
		return nil, common.New(common.KindNotFound, "target not found")
	}

	for _, a := range change.AddActions {
		t.Actions.Add(a)
	}
	for _, a := range change.RemoveActions {
		t.Actions.Remove(a)
	}
	for k, vs := range change.AddAttributes {
		t.Attributes.AddValues(k, vs...)
	}
	for k, vs := range change.RemoveAttributes {
		t.Attributes.RemoveValues(k, vs...)
	}

	return t.Clone(), nil
}

// RemoveTarget deletes a target by identity. Removing a target does not
// affect groups or policies, which reference by loose name.
func (r *Registry) RemoveTarget(typ, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := targetKey{typ: value.Canon(typ), name: value.Canon(name)}
	if _, ok := r.targets[key]; !ok {
		return common.New(common.KindNotFound, "target not found")
	}
	delete(r.targets, key)
	return nil
}

// TargetFilter selects a subset of targets for Get. Zero-value fields are
// unconstrained; non-empty fields AND together.
type TargetFilter struct {
	Name string
	Type string
}

// GetTargets returns targets matching filter, each a defensive copy.
func (r *Registry) GetTargets(filter TargetFilter) []*Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Target, 0)
	for _, t := range r.targets {
		if filter.Name != "" && value.Canon(filter.Name) != value.Canon(t.Name) {
			continue
		}
		if filter.Type != "" && value.Canon(filter.Type) != value.Canon(t.Type) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// LookupTarget returns the stored target by identity, or nil if absent. It
// is used by enrichment, which must treat a missing target as empty rather
// than as an error.
func (r *Registry) LookupTarget(typ, name string) *Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := targetKey{typ: value.Canon(typ), name: value.Canon(name)}
	t, ok := r.targets[key]
	if !ok {
		return nil
	}
	return t.Clone()
}

// PutTarget unconditionally stores t, overwriting whatever was previously
// indexed at its identity tuple. Unlike AddTarget it never fails with
// KindAlreadyExists; it is the low-level upsert used to apply a storage
// snapshot at startup, a remote watch event, or to roll back a local write
// that failed to persist.
func (r *Registry) PutTarget(t *Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := &Target{
		Name:       t.Name,
		Type:       t.Type,
		Actions:    canonSet(t.Actions),
		Attributes: canonAttrs(t.Attributes),
	}
	r.targets[stored.identity()] = stored
}

func canonSet(s *value.StringSet) *value.StringSet {
	if s == nil {
		return value.NewStringSet()
	}
	return value.NewStringSet(s.Values()...)
}

func canonAttrs(a *value.AttributeMap) *value.AttributeMap {
	if a == nil {
		return value.NewAttributeMap()
	}
	return a.Clone()
}
