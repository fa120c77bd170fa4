package admin

import (
	"context"

	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
)

// apply persists change via the driver. Failure is reported as
// KindStorageUnavailable; callers roll the corresponding in-memory write
// back before returning it to the caller, per spec §7.
func (s *Service) apply(ctx context.Context, change storage.Change) error {
	if err := s.driver.Apply(ctx, change); err != nil {
		return common.Wrap(common.KindStorageUnavailable, "failed to persist change", err)
	}
	return nil
}

func requireNonEmpty(fields map[string]string) error {
	for name, v := range fields {
		if v == "" {
			return common.New(common.KindInvalidArgument, name+" is required")
		}
	}
	return nil
}

// --- Target -----------------------------------------------------------

// AddTarget validates, writes to the registry, and persists a new target.
// A persistence failure rolls the registry write back and returns
// KindStorageUnavailable.
func (s *Service) AddTarget(ctx context.Context, t *registry.Target) (*registry.Target, error) {
	if err := requireNonEmpty(map[string]string{"name": t.Name, "type": t.Type}); err != nil {
		return nil, err
	}

	stored, err := s.reg.AddTarget(t)
	if err != nil {
		return nil, err
	}

	key := storage.KeyFor(storage.KindTarget, stored.Type, stored.Name)
	change := storage.Change{Kind: storage.KindTarget, Op: storage.Put, Key: key, Record: storage.TargetToRecord(stored)}
	if err := s.apply(ctx, change); err != nil {
		_ = s.reg.RemoveTarget(stored.Type, stored.Name)
		return nil, err
	}
	return stored, nil
}

// ModifyTarget applies an attribute/action merge to an existing target and
// persists the result, rolling back to the pre-modify snapshot if
// persistence fails.
func (s *Service) ModifyTarget(ctx context.Context, typ, name string, change registry.TargetAttrChange) (*registry.Target, error) {
	if err := requireNonEmpty(map[string]string{"name": name, "type": typ}); err != nil {
		return nil, err
	}

	before := s.reg.LookupTarget(typ, name)
	updated, err := s.reg.ModifyTarget(typ, name, change)
	if err != nil {
		return nil, err
	}

	key := storage.KeyFor(storage.KindTarget, updated.Type, updated.Name)
	sc := storage.Change{Kind: storage.KindTarget, Op: storage.Put, Key: key, Record: storage.TargetToRecord(updated)}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutTarget(before)
		}
		return nil, err
	}
	return updated, nil
}

// RemoveTarget deletes a target and persists the deletion, restoring the
// target if persistence fails.
func (s *Service) RemoveTarget(ctx context.Context, typ, name string) error {
	if err := requireNonEmpty(map[string]string{"name": name, "type": typ}); err != nil {
		return err
	}

	before := s.reg.LookupTarget(typ, name)
	if err := s.reg.RemoveTarget(typ, name); err != nil {
		return err
	}

	key := storage.KeyFor(storage.KindTarget, typ, name)
	sc := storage.Change{Kind: storage.KindTarget, Op: storage.Delete, Key: key}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutTarget(before)
		}
		return err
	}
	return nil
}

// GetTargets returns targets matching filter.
func (s *Service) GetTargets(filter registry.TargetFilter) []*registry.Target {
	return s.reg.GetTargets(filter)
}

// --- Actor --------------------------------------------------------------

// AddActor validates, writes to the registry, and persists a new actor.
func (s *Service) AddActor(ctx context.Context, a *registry.Actor) (*registry.Actor, error) {
	if err := requireNonEmpty(map[string]string{"name": a.Name, "type": a.Type}); err != nil {
		return nil, err
	}

	stored, err := s.reg.AddActor(a)
	if err != nil {
		return nil, err
	}

	key := storage.KeyFor(storage.KindActor, stored.Type, stored.Name)
	change := storage.Change{Kind: storage.KindActor, Op: storage.Put, Key: key, Record: storage.ActorToRecord(stored)}
	if err := s.apply(ctx, change); err != nil {
		_ = s.reg.RemoveActor(stored.Name, stored.Type)
		return nil, err
	}
	return stored, nil
}

// ModifyActor applies an attribute merge to an existing actor and
// persists the result.
func (s *Service) ModifyActor(ctx context.Context, name, typ string, change registry.ActorAttrChange) (*registry.Actor, error) {
	if err := requireNonEmpty(map[string]string{"name": name, "type": typ}); err != nil {
		return nil, err
	}

	before := s.reg.LookupActor(name, typ)
	updated, err := s.reg.ModifyActor(name, typ, change)
	if err != nil {
		return nil, err
	}

	key := storage.KeyFor(storage.KindActor, updated.Type, updated.Name)
	sc := storage.Change{Kind: storage.KindActor, Op: storage.Put, Key: key, Record: storage.ActorToRecord(updated)}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutActor(before)
		}
		return nil, err
	}
	return updated, nil
}

// RemoveActor deletes an actor and persists the deletion.
func (s *Service) RemoveActor(ctx context.Context, name, typ string) error {
	if err := requireNonEmpty(map[string]string{"name": name, "type": typ}); err != nil {
		return err
	}

	before := s.reg.LookupActor(name, typ)
	if err := s.reg.RemoveActor(name, typ); err != nil {
		return err
	}

	key := storage.KeyFor(storage.KindActor, typ, name)
	sc := storage.Change{Kind: storage.KindActor, Op: storage.Delete, Key: key}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutActor(before)
		}
		return err
	}
	return nil
}

// GetActors returns actors matching filter.
func (s *Service) GetActors(filter registry.ActorFilter) []*registry.Actor {
	return s.reg.GetActors(filter)
}

// --- Group ----------------------------------------------------------------

// AddGroup validates, writes to the registry, and persists a new group.
// Adding a role that does not exist fails with KindReferenceMissing and
// nothing is written or persisted.
func (s *Service) AddGroup(ctx context.Context, name, description string, members []registry.Member, roles []string) (*registry.Group, error) {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return nil, err
	}

	stored, err := s.reg.AddGroup(name, description, members, roles)
	if err != nil {
		return nil, err
	}

	change := storage.Change{Kind: storage.KindGroup, Op: storage.Put, Key: stored.Name, Record: storage.GroupToRecord(stored)}
	if err := s.apply(ctx, change); err != nil {
		_ = s.reg.RemoveGroup(stored.Name)
		return nil, err
	}
	return stored, nil
}

// ModifyGroup applies a membership/role delta to an existing group and
// persists the result.
func (s *Service) ModifyGroup(ctx context.Context, name string, change registry.GroupChange) (*registry.Group, error) {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return nil, err
	}

	before := firstGroup(s.reg.GetGroups(registry.GroupFilter{Name: name}))
	updated, err := s.reg.ModifyGroup(name, change)
	if err != nil {
		return nil, err
	}

	sc := storage.Change{Kind: storage.KindGroup, Op: storage.Put, Key: updated.Name, Record: storage.GroupToRecord(updated)}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutGroup(before.Name, before.Description, before.MemberList(), before.Roles.Values())
		}
		return nil, err
	}
	return updated, nil
}

// RemoveGroup deletes a group, cascading the removal from any role's
// granted_to set, and persists the deletion. On persistence failure both
// the group and every role the cascade touched are restored, leaving the
// Registry unchanged per §7.
func (s *Service) RemoveGroup(ctx context.Context, name string) error {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return err
	}

	before := firstGroup(s.reg.GetGroups(registry.GroupFilter{Name: name}))
	affectedRoles := s.reg.GetRoles(registry.RoleFilter{GrantedTo: name})
	if err := s.reg.RemoveGroup(name); err != nil {
		return err
	}

	sc := storage.Change{Kind: storage.KindGroup, Op: storage.Delete, Key: name}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutGroup(before.Name, before.Description, before.MemberList(), before.Roles.Values())
		}
		for _, role := range affectedRoles {
			s.reg.PutRole(role)
		}
		return err
	}
	return nil
}

// GetGroups returns groups matching filter.
func (s *Service) GetGroups(filter registry.GroupFilter) []*registry.Group {
	return s.reg.GetGroups(filter)
}

func firstGroup(gs []*registry.Group) *registry.Group {
	if len(gs) == 0 {
		return nil
	}
	return gs[0]
}

// --- Role -------------------------------------------------------------

// AddRole validates, writes to the registry, and persists a new role.
// Granting to a group that does not exist fails with KindReferenceMissing.
func (s *Service) AddRole(ctx context.Context, name, description string, grantedTo []string) (*registry.Role, error) {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return nil, err
	}

	stored, err := s.reg.AddRole(name, description, grantedTo)
	if err != nil {
		return nil, err
	}

	change := storage.Change{Kind: storage.KindRole, Op: storage.Put, Key: stored.Name, Record: storage.RoleToRecord(stored)}
	if err := s.apply(ctx, change); err != nil {
		_ = s.reg.RemoveRole(stored.Name)
		return nil, err
	}
	return stored, nil
}

// ModifyRole applies a granted_to delta to an existing role and persists
// the result.
func (s *Service) ModifyRole(ctx context.Context, name string, change registry.RoleChange) (*registry.Role, error) {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return nil, err
	}

	before := firstRole(s.reg.GetRoles(registry.RoleFilter{Name: name}))
	updated, err := s.reg.ModifyRole(name, change)
	if err != nil {
		return nil, err
	}

	sc := storage.Change{Kind: storage.KindRole, Op: storage.Put, Key: updated.Name, Record: storage.RoleToRecord(updated)}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutRole(before)
		}
		return nil, err
	}
	return updated, nil
}

// RemoveRole deletes a role, cascading the removal from any group's roles
// set, and persists the deletion. On persistence failure both the role
// and every group the cascade touched are restored, leaving the Registry
// unchanged per §7.
func (s *Service) RemoveRole(ctx context.Context, name string) error {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return err
	}

	before := firstRole(s.reg.GetRoles(registry.RoleFilter{Name: name}))
	affectedGroups := s.reg.GetGroups(registry.GroupFilter{Role: name})
	if err := s.reg.RemoveRole(name); err != nil {
		return err
	}

	sc := storage.Change{Kind: storage.KindRole, Op: storage.Delete, Key: name}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutRole(before)
		}
		for _, g := range affectedGroups {
			s.reg.PutGroup(g.Name, g.Description, g.MemberList(), g.Roles.Values())
		}
		return err
	}
	return nil
}

// GetRoles returns roles matching filter.
func (s *Service) GetRoles(filter registry.RoleFilter) []*registry.Role {
	return s.reg.GetRoles(filter)
}

func firstRole(rs []*registry.Role) *registry.Role {
	if len(rs) == 0 {
		return nil
	}
	return rs[0]
}

// --- Policy -----------------------------------------------------------

// AddPolicy validates, writes to the registry, and persists a new policy
// rule.
func (s *Service) AddPolicy(ctx context.Context, p *registry.Policy) (*registry.Policy, error) {
	if err := requireNonEmpty(map[string]string{"name": p.Name}); err != nil {
		return nil, err
	}

	stored, err := s.reg.AddPolicy(p)
	if err != nil {
		return nil, err
	}

	change := storage.Change{Kind: storage.KindPolicy, Op: storage.Put, Key: stored.Name, Record: storage.PolicyToRecord(stored)}
	if err := s.apply(ctx, change); err != nil {
		_ = s.reg.RemovePolicy(stored.Name)
		return nil, err
	}
	return stored, nil
}

// ModifyPolicy replaces the whole rule stored under p.Name and persists
// the result.
func (s *Service) ModifyPolicy(ctx context.Context, p *registry.Policy) (*registry.Policy, error) {
	if err := requireNonEmpty(map[string]string{"name": p.Name}); err != nil {
		return nil, err
	}

	before := firstPolicy(s.reg.GetPolicies(registry.PolicyFilter{Name: p.Name}))
	updated, err := s.reg.ModifyPolicy(p)
	if err != nil {
		return nil, err
	}

	sc := storage.Change{Kind: storage.KindPolicy, Op: storage.Put, Key: updated.Name, Record: storage.PolicyToRecord(updated)}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutPolicy(before)
		}
		return nil, err
	}
	return updated, nil
}

// RemovePolicy deletes a policy rule and persists the deletion.
func (s *Service) RemovePolicy(ctx context.Context, name string) error {
	if err := requireNonEmpty(map[string]string{"name": name}); err != nil {
		return err
	}

	before := firstPolicy(s.reg.GetPolicies(registry.PolicyFilter{Name: name}))
	if err := s.reg.RemovePolicy(name); err != nil {
		return err
	}

	sc := storage.Change{Kind: storage.KindPolicy, Op: storage.Delete, Key: name}
	if err := s.apply(ctx, sc); err != nil {
		if before != nil {
			s.reg.PutPolicy(before)
		}
		return err
	}
	return nil
}

// GetPolicies returns policies matching filter.
func (s *Service) GetPolicies(filter registry.PolicyFilter) []*registry.Policy {
	return s.reg.GetPolicies(filter)
}

func firstPolicy(ps []*registry.Policy) *registry.Policy {
	if len(ps) == 0 {
		return nil
	}
	return ps[0]
}
