package engine

import (
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

// Matches reports whether policy p applies to ctx (C5). A rule matches
// iff every present sub-check matches; an absent sub-check (actor_check,
// target_check, or a sub-check field within them) is vacuously true.
func Matches(p *registry.Policy, ctx *Context) bool {
	if !matchActor(p.ActorCheck, ctx) {
		return false
	}
	if !value.MatchAllKv(p.EnvAttributeChecks, ctx.EnvAttributes) {
		return false
	}
	if !matchTarget(p.TargetCheck, ctx) {
		return false
	}
	return true
}

func matchActor(c *registry.ActorCheck, ctx *Context) bool {
	if c == nil {
		return true
	}
	if c.Name != nil && !c.Name.Match(ctx.ActorName) {
		return false
	}
	if c.TypeStr != nil && !c.TypeStr.Match(ctx.ActorType) {
		return false
	}
	if !value.MatchAllKv(c.Attributes, ctx.ActorAttributes) {
		return false
	}
	if c.Bucket != nil && !c.Bucket.Match(ctx.Bucket) {
		return false
	}
	return true
}

func matchTarget(c *registry.TargetCheck, ctx *Context) bool {
	if c == nil {
		return true
	}
	if c.Name != nil && !c.Name.Match(ctx.TargetName) {
		return false
	}
	if c.TypeStr != nil && !c.TypeStr.Match(ctx.TargetType) {
		return false
	}
	if c.Action != nil && !c.Action.Match(ctx.TargetAction) {
		return false
	}
	if !value.MatchAllKv(c.Attributes, ctx.TargetAttrs) {
		return false
	}
	for _, key := range c.MatchInActor {
		if !ctx.TargetAttrs.Get(key).Intersects(ctx.ActorAttributes.Get(key)) {
			return false
		}
	}
	for _, key := range c.MatchInEnv {
		if !ctx.TargetAttrs.Get(key).Intersects(ctx.EnvAttributes.Get(key)) {
			return false
		}
	}
	return true
}
