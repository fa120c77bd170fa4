package engine

import "github.com/diggyk/gatehouse/pkg/gatehouse/registry"

// Resolve combines the decisions of every matching policy under the fixed
// precedence rule (C6): an explicit Deny overrides an explicit Allow;
// absence of any matching Allow is an implicit Deny. The result does not
// depend on the order policies are traversed in.
func Resolve(policies []*registry.Policy, ctx *Context) registry.Decision {
	sawAllow := false
	for _, p := range policies {
		if !Matches(p, ctx) {
			continue
		}
		if p.Decision == registry.Deny {
			return registry.Deny
		}
		sawAllow = true
	}
	if sawAllow {
		return registry.Allow
	}
	return registry.Deny
}
