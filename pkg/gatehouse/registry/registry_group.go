package registry

import (
	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// Member identifies an actor by its identity tuple, as stored in a
// group's membership set.
type Member struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (m Member) key() actorKey {
	return actorKey{name: canon(m.Name), typ: canon(m.Type)}
}

// AddGroup inserts a new group. Every role named in roles must already
// exist; otherwise the add fails with KindReferenceMissing and nothing is
// written.
func (r *Registry) AddGroup(name, description string, members []Member, roles []string) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(name)
	if _, ok := r.groups[key]; ok {
		return nil, common.New(common.KindAlreadyExists, "group already exists")
	}

	for _, rn := range roles {
		if _, ok := r.roles[canon(rn)]; !ok {
			return nil, common.New(common.KindReferenceMissing, "role does not exist: "+rn)
		}
	}

	g := &Group{
		Name:        name,
		Description: description,
		Members:     make(map[actorKey]Member, len(members)),
		Roles:       value.NewStringSet(roles...),
	}
	for _, m := range members {
		g.Members[m.key()] = m
	}

	r.groups[key] = g
	r.reindexGroup(g)
	return g.Clone(), nil
}

// PutGroup unconditionally stores a group built from name/description/
// members/roles, overwriting whatever was previously indexed under name
// and reindexing membership. Unlike AddGroup it does not validate that
// roles exist — it is the low-level upsert used to apply a storage
// snapshot, a remote watch event, or to roll back a failed local write,
// all of which replay state that was already validated once. Members and
// roles are keyed by Group's unexported actorKey, so callers outside this
// package cannot build a *Group directly; they go through this
// constructor-shaped upsert instead.
func (r *Registry) PutGroup(name, description string, members []Member, roles []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Group{
		Name:        name,
		Description: description,
		Members:     make(map[actorKey]Member, len(members)),
		Roles:       value.NewStringSet(roles...),
	}
	for _, m := range members {
		g.Members[m.key()] = m
	}

	r.groups[canon(name)] = g
	r.reindexGroup(g)
}

// GroupChange describes an additive/subtractive membership and role
// delta, plus an optional description replacement, used by ModifyGroup.
type GroupChange struct {
	AddMembers    []Member
	RemoveMembers []Member
	AddRoles      []string
	RemoveRoles   []string
	Description   *string
}

// ModifyGroup applies change to an existing group. Adding a role that
// does not exist fails with KindReferenceMissing and leaves the group
// unchanged.
func (r *Registry) ModifyGroup(name string, change GroupChange) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[canon(name)]
	if !ok {
		return nil, common.New(common.KindNotFound, "group not found")
	}

	for _, rn := range change.AddRoles {
		if _, ok := r.roles[canon(rn)]; !ok {
			return nil, common.New(common.KindReferenceMissing, "role does not exist: "+rn)
		}
	}

	for _, m := range change.AddMembers {
		g.Members[m.key()] = m
	}
	for _, m := range change.RemoveMembers {
		delete(g.Members, m.key())
	}
	for _, rn := range change.AddRoles {
		g.Roles.Add(rn)
	}
	for _, rn := range change.RemoveRoles {
		g.Roles.Remove(rn)
	}
	if change.Description != nil {
		g.Description = *change.Description
	}

	r.reindexGroup(g)
	return g.Clone(), nil
}

// RemoveGroup deletes a group by name. Cascades: the group is removed
// from every role's granted_to set.
func (r *Registry) RemoveGroup(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(name)
	g, ok := r.groups[key]
	if !ok {
		return common.New(common.KindNotFound, "group not found")
	}

	for _, role := range r.roles {
		role.GrantedTo.Remove(g.Name)
	}

	r.unindexGroup(g)
	delete(r.groups, key)
	return nil
}

// GroupFilter selects a subset of groups for Get.
type GroupFilter struct {
	Name   string
	Member *Member
	Role   string
}

// GetGroups returns groups matching filter, each a defensive copy.
func (r *Registry) GetGroups(filter GroupFilter) []*Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Group, 0)
	for _, g := range r.groups {
		if filter.Name != "" && canon(filter.Name) != canon(g.Name) {
			continue
		}
		if filter.Member != nil {
			if _, ok := g.Members[filter.Member.key()]; !ok {
				continue
			}
		}
		if filter.Role != "" && !g.Roles.Has(filter.Role) {
			continue
		}
		out = append(out, g.Clone())
	}
	return out
}

// groupsForActor returns the canonical names of every group the given
// actor identity is a member of.
func (r *Registry) groupsForActor(key actorKey) []string {
	names := r.groupsByActor[key]
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out
}

// MemberOfAndRoles returns the canonical group names the actor identity
// (name, type) is a member of, and the canonical role names transitively
// granted via those groups. It is the one-level group/role expansion used
// by enrichment.
func (r *Registry) MemberOfAndRoles(name, typ string) (memberOf []string, hasRole []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := r.groupsForActor(actorKey{name: canon(name), typ: canon(typ)})
	roles := r.rolesForGroups(groups)
	return groups, roles
}

// rolesForGroups returns the canonical names of every role whose
// granted_to set intersects the given canonical group names.
func (r *Registry) rolesForGroups(groupNames []string) []string {
	wanted := value.NewStringSet(groupNames...)

	out := make([]string, 0)
	for _, role := range r.roles {
		if role.GrantedTo.Intersects(wanted) {
			out = append(out, canon(role.Name))
		}
	}
	return out
}

func (r *Registry) reindexGroup(g *Group) {
	r.unindexGroupMembership(g.Name)
	for k := range g.Members {
		if r.groupsByActor[k] == nil {
			r.groupsByActor[k] = make(map[string]struct{})
		}
		r.groupsByActor[k][canon(g.Name)] = struct{}{}
	}
}

func (r *Registry) unindexGroupMembership(name string) {
	cname := canon(name)
	for _, set := range r.groupsByActor {
		delete(set, cname)
	}
}

func (r *Registry) unindexGroup(g *Group) {
	r.unindexGroupMembership(g.Name)
}
