package registry

import "github.com/diggyk/gatehouse/pkg/common"

// AddActor inserts a new actor. Fails with KindAlreadyExists if the
// (name, type) identity tuple is already present.
func (r *Registry) AddActor(a *Actor) (*Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := a.identity()
	if _, ok := r.actors[key]; ok {
		return nil, common.New(common.KindAlreadyExists, "actor already exists")
	}

	stored := &Actor{
		Name:       a.Name,
		Type:       a.Type,
		Attributes: canonAttrs(a.Attributes),
	}
	r.actors[key] = stored
	return stored.Clone(), nil
}

// PutActor unconditionally stores a, overwriting whatever was previously
// indexed at its identity tuple. See [Registry.PutTarget] for why this
// low-level upsert exists alongside the validated Add/Modify path.
func (r *Registry) PutActor(a *Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := &Actor{
		Name:       a.Name,
		Type:       a.Type,
		Attributes: canonAttrs(a.Attributes),
	}
	r.actors[stored.identity()] = stored
}

// ActorAttrChange describes an attribute add/remove delta used by Modify.
type ActorAttrChange struct {
	AddAttributes    map[string][]string
	RemoveAttributes map[string][]string
}

// ModifyActor applies an additive/subtractive attribute merge to an
// existing actor.
func (r *Registry) ModifyActor(name, typ string, change ActorAttrChange) (*Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := actorKey{name: canon(name), typ: canon(typ)}
	a, ok := r.actors[key]
	if !ok {
		return nil, common.New(common.KindNotFound, "actor not found")
	}

	for k, vs := range change.AddAttributes {
		a.Attributes.AddValues(k, vs...)
	}
	for k, vs := range change.RemoveAttributes {
		a.Attributes.RemoveValues(k, vs...)
	}

	return a.Clone(), nil
}

// RemoveActor deletes an actor by identity. Removing an actor does not
// affect groups or policies, which reference by loose name; stale group
// membership for a removed actor simply never resolves to a stored actor
// again.
func (r *Registry) RemoveActor(name, typ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := actorKey{name: canon(name), typ: canon(typ)}
	if _, ok := r.actors[key]; !ok {
		return common.New(common.KindNotFound, "actor not found")
	}
	delete(r.actors, key)
	return nil
}

// ActorFilter selects a subset of actors for Get.
type ActorFilter struct {
	Name string
	Type string
}

// GetActors returns actors matching filter, each a defensive copy.
func (r *Registry) GetActors(filter ActorFilter) []*Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Actor, 0)
	for _, a := range r.actors {
		if filter.Name != "" && canon(filter.Name) != canon(a.Name) {
			continue
		}
		if filter.Type != "" && canon(filter.Type) != canon(a.Type) {
			continue
		}
		out = append(out, a.Clone())
	}
	return out
}

// LookupActor returns the stored actor by identity, or nil if the actor is
// unregistered. An unregistered actor is legal for checks; enrichment
// treats a nil result as an empty attribute map.
func (r *Registry) LookupActor(name, typ string) *Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := actorKey{name: canon(name), typ: canon(typ)}
	a, ok := r.actors[key]
	if !ok {
		return nil
	}
	return a.Clone()
}
