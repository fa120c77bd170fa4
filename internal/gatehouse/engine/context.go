package engine

import (
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// Attribute keys enrichment appends to the actor's attribute map, per
// spec §3's derived context.
const (
	MemberOfKey = "member-of"
	HasRoleKey  = "has-role"
)

// Request is the raw input to a check, as a PEP asserts it: an actor
// identity with the attributes the PEP vouches for, caller-supplied
// environment attributes, and a target identity/action. ActorAttributes
// lets a PEP assert attributes for actors the Registry has never
// registered, per spec §3.
type Request struct {
	ActorName       string
	ActorType       string
	ActorAttributes *value.AttributeMap
	EnvAttributes   *value.AttributeMap
	TargetName      string
	TargetType      string
	TargetAction    string
}

// Context is the enriched, immutable snapshot a check is evaluated
// against. It is owned by the single check in progress and discarded
// afterwards; nothing outside this package retains a reference to it.
type Context struct {
	ActorName       string // canonical
	ActorType       string // canonical
	ActorAttributes *value.AttributeMap
	EnvAttributes   *value.AttributeMap
	TargetName      string
	TargetType      string
	TargetActions   *value.StringSet
	TargetAttrs     *value.AttributeMap
	TargetAction    string
	Bucket          int32
}

// BuildContext performs enrichment (C4): it looks up the registered actor
// (if any) and merges its stored attributes under the PEP-supplied ones,
// expands group membership and role grants into member-of/has-role,
// derives the bucket, and looks up the target. A missing actor or target
// is not an error — enrichment never fails, per spec §7.
func BuildContext(reg *registry.Registry, req Request) *Context {
	env := req.EnvAttributes
	if env == nil {
		env = value.NewAttributeMap()
	}

	attrs := req.ActorAttributes
	if attrs == nil {
		attrs = value.NewAttributeMap()
	} else {
		attrs = attrs.Clone()
	}
	if actor := reg.LookupActor(req.ActorName, req.ActorType); actor != nil {
		attrs.MergePreferExisting(actor.Attributes)
	}

	memberOf, hasRole := reg.MemberOfAndRoles(req.ActorName, req.ActorType)
	if len(memberOf) > 0 {
		attrs.AddValues(MemberOfKey, memberOf...)
	}
	if len(hasRole) > 0 {
		attrs.AddValues(HasRoleKey, hasRole...)
	}

	ctx := &Context{
		ActorName:       value.Canon(req.ActorName),
		ActorType:       value.Canon(req.ActorType),
		ActorAttributes: attrs,
		EnvAttributes:   env,
		TargetName:      req.TargetName,
		TargetType:      req.TargetType,
		TargetActions:   value.NewStringSet(),
		TargetAttrs:     value.NewAttributeMap(),
		TargetAction:    req.TargetAction,
		Bucket:          Bucket(req.ActorName, req.ActorType),
	}

	if target := reg.LookupTarget(req.TargetType, req.TargetName); target != nil {
		ctx.TargetActions = target.Actions
		ctx.TargetAttrs = target.Attributes
	}

	return ctx
}
