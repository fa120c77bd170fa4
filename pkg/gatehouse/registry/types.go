// Package registry is the in-memory indexed store of Targets, Actors,
// Groups, Roles, and Policies, with the referential and identity
// invariants the gatehouse data model requires.
package registry

import (
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
	"github.com/mohae/deepcopy"
)

// Target is the object acted upon in a check: (name, type, actions,
// attributes).
type Target struct {
	Name       string
	Type       string
	Actions    *value.StringSet
	Attributes *value.AttributeMap
}

// identity returns the canonical (type, name) key used to index the target.
func (t *Target) identity() targetKey {
	return targetKey{typ: value.Canon(t.Type), name: value.Canon(t.Name)}
}

// Clone returns a defensive deep copy of the target.
func (t *Target) Clone() *Target {
	return &Target{
		Name:       t.Name,
		Type:       t.Type,
		Actions:    t.Actions.Clone(),
		Attributes: t.Attributes.Clone(),
	}
}

// Actor is the subject of a check: (name, type, attributes). Actors are
// not required to be registered; an unregistered actor is treated as
// having no stored attributes.
type Actor struct {
	Name       string
	Type       string
	Attributes *value.AttributeMap
}

func (a *Actor) identity() actorKey {
	return actorKey{name: value.Canon(a.Name), typ: value.Canon(a.Type)}
}

// Clone returns a defensive deep copy of the actor.
func (a *Actor) Clone() *Actor {
	return &Actor{
		Name:       a.Name,
		Type:       a.Type,
		Attributes: a.Attributes.Clone(),
	}
}

// Group is a named collection of actor members plus a set of granted
// roles: (name, description, members, roles).
type Group struct {
	Name        string
	Description string
	Members     map[actorKey]Member
	Roles       *value.StringSet // canonical role names
}

// MemberList returns the group's members as identity tuples, in no
// particular order. It exists so callers outside this package (storage
// drivers, the admin surface) can enumerate membership without reaching
// into the unexported actorKey type.
func (g *Group) MemberList() []Member {
	out := make([]Member, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m)
	}
	return out
}

// Clone returns a defensive deep copy of the group.
func (g *Group) Clone() *Group {
	members := make(map[actorKey]Member, len(g.Members))
	for k, m := range g.Members {
		members[k] = m
	}
	return &Group{
		Name:        g.Name,
		Description: g.Description,
		Members:     members,
		Roles:       g.Roles.Clone(),
	}
}

// Role is a named grant to a set of groups: (name, description,
// granted_to). A role's effective grant is the union of actors in every
// group in granted_to.
type Role struct {
	Name        string
	Description string
	GrantedTo   *value.StringSet // canonical group names
}

// Clone returns a defensive deep copy of the role.
func (r *Role) Clone() *Role {
	return &Role{
		Name:        r.Name,
		Description: r.Description,
		GrantedTo:   r.GrantedTo.Clone(),
	}
}

// ActorCheck is the actor-dimension predicate of a policy rule.
type ActorCheck struct {
	Name       *value.StringCheck
	TypeStr    *value.StringCheck
	Attributes []*value.KvCheck
	Bucket     *value.NumberCheck
}

// TargetCheck is the target-dimension predicate of a policy rule.
type TargetCheck struct {
	Name         *value.StringCheck
	TypeStr      *value.StringCheck
	Action       *value.StringCheck
	Attributes   []*value.KvCheck
	MatchInActor []string
	MatchInEnv   []string
}

// Decision is the outcome a matching policy rule contributes.
type Decision int

const (
	// Allow grants the request if no conflicting Deny also matches.
	Allow Decision = iota
	// Deny overrides any matching Allow.
	Deny
)

// Policy is a single rule: (name, description, actor_check,
// env_attribute_checks, target_check, decision). Absent sub-checks are
// vacuously true.
type Policy struct {
	Name               string
	Description        string
	ActorCheck         *ActorCheck
	EnvAttributeChecks []*value.KvCheck
	TargetCheck        *TargetCheck
	Decision           Decision
}

// Clone returns a defensive deep copy of the policy. Policies nest several
// optional check structs with slice fields; rather than hand-write Clone
// for every check shape, a generic deep copy keeps this in sync as checks
// evolve.
func (p *Policy) Clone() *Policy {
	return deepcopy.Copy(p).(*Policy)
}

type targetKey struct {
	typ  string
	name string
}

type actorKey struct {
	name string
	typ  string
}
