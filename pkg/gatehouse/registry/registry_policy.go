package registry

import "github.com/diggyk/gatehouse/pkg/common"

// AddPolicy inserts a new policy rule. Fails with KindAlreadyExists if a
// policy with the same name is already present.
func (r *Registry) AddPolicy(p *Policy) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(p.Name)
	if _, ok := r.policies[key]; ok {
		return nil, common.New(common.KindAlreadyExists, "policy already exists")
	}

	stored := p.Clone()
	r.policies[key] = stored
	return stored.Clone(), nil
}

// PutPolicy unconditionally stores p, overwriting whatever was previously
// stored under p.Name. See [Registry.PutTarget] for why this low-level
// upsert exists alongside the validated Add/Modify path.
func (r *Registry) PutPolicy(p *Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.policies[canon(p.Name)] = p.Clone()
}

// ModifyPolicy replaces the whole rule stored under p.Name. Per the data
// model, policy Modify is whole-rule replacement, not an attribute merge.
func (r *Registry) ModifyPolicy(p *Policy) (*Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(p.Name)
	if _, ok := r.policies[key]; !ok {
		return nil, common.New(common.KindNotFound, "policy not found")
	}

	stored := p.Clone()
	r.policies[key] = stored
	return stored.Clone(), nil
}

// RemovePolicy deletes a policy by name.
func (r *Registry) RemovePolicy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(name)
	if _, ok := r.policies[key]; !ok {
		return common.New(common.KindNotFound, "policy not found")
	}
	delete(r.policies, key)
	return nil
}

// PolicyFilter selects a subset of policies for Get. Per the spec's
// name-only filtering decision, rule content cannot be used as a filter.
type PolicyFilter struct {
	Name string
}

// GetPolicies returns policies matching filter, each a defensive copy.
func (r *Registry) GetPolicies(filter PolicyFilter) []*Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Policy, 0)
	for _, p := range r.policies {
		if filter.Name != "" && canon(filter.Name) != canon(p.Name) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// AllPolicies returns every stored policy, each a defensive copy. Used by
// the decision resolver, which must traverse every policy on every check.
func (r *Registry) AllPolicies() []*Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Policy, 0, len(r.policies))
	for _, p := range r.policies {
		out = append(out, p.Clone())
	}
	return out
}
