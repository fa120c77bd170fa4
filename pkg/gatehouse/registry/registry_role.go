package registry

import (
	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// AddRole inserts a new role. Every group named in grantedTo must already
// exist; otherwise the add fails with KindReferenceMissing.
func (r *Registry) AddRole(name, description string, grantedTo []string) (*Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(name)
	if _, ok := r.roles[key]; ok {
		return nil, common.New(common.KindAlreadyExists, "role already exists")
	}

	for _, gn := range grantedTo {
		if _, ok := r.groups[canon(gn)]; !ok {
			return nil, common.New(common.KindReferenceMissing, "group does not exist: "+gn)
		}
	}

	role := &Role{
		Name:        name,
		Description: description,
		GrantedTo:   value.NewStringSet(grantedTo...),
	}
	r.roles[key] = role
	return role.Clone(), nil
}

// PutRole unconditionally stores role, overwriting whatever was
// previously indexed under its name. See [Registry.PutGroup] for why this
// low-level upsert exists alongside the validated Add/Modify path.
func (r *Registry) PutRole(role *Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles[canon(role.Name)] = role.Clone()
}

// RoleChange describes an additive/subtractive granted_to delta, plus an
// optional description replacement, used by ModifyRole.
type RoleChange struct {
	AddGrantedTo    []string
	RemoveGrantedTo []string
	Description     *string
}

// ModifyRole applies change to an existing role. Adding a group that does
// not exist fails with KindReferenceMissing and leaves the role
// unchanged.
func (r *Registry) ModifyRole(name string, change RoleChange) (*Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[canon(name)]
	if !ok {
		return nil, common.New(common.KindNotFound, "role not found")
	}

	for _, gn := range change.AddGrantedTo {
		if _, ok := r.groups[canon(gn)]; !ok {
			return nil, common.New(common.KindReferenceMissing, "group does not exist: "+gn)
		}
	}

	for _, gn := range change.AddGrantedTo {
		role.GrantedTo.Add(gn)
	}
	for _, gn := range change.RemoveGrantedTo {
		role.GrantedTo.Remove(gn)
	}
	if change.Description != nil {
		role.Description = *change.Description
	}

	return role.Clone(), nil
}

// RemoveRole deletes a role by name. Cascades: the role is removed from
// every group's roles set.
func (r *Registry) RemoveRole(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := canon(name)
	role, ok := r.roles[key]
	if !ok {
		return common.New(common.KindNotFound, "role not found")
	}

	for _, g := range r.groups {
		g.Roles.Remove(role.Name)
	}

	delete(r.roles, key)
	return nil
}

// RoleFilter selects a subset of roles for Get.
type RoleFilter struct {
	Name      string
	GrantedTo string // canonical group name the role must be granted to
}

// GetRoles returns roles matching filter, each a defensive copy.
func (r *Registry) GetRoles(filter RoleFilter) []*Role {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Role, 0)
	for _, role := range r.roles {
		if filter.Name != "" && canon(filter.Name) != canon(role.Name) {
			continue
		}
		if filter.GrantedTo != "" && !role.GrantedTo.Has(filter.GrantedTo) {
			continue
		}
		out = append(out, role.Clone())
	}
	return out
}
