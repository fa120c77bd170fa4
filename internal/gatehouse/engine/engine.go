package engine

import (
	"github.com/diggyk/gatehouse/internal/logging"
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/google/uuid"
)

var logger = logging.GetLogger("gatehouse.engine")

const agent = "engine"

// Evaluate runs a single check end to end: enrichment (C4), matching every
// stored policy (C5), and combining the matched decisions (C6). It
// performs no I/O and never suspends — every lookup it makes against reg
// is a read-locked, in-memory map access.
//
// Evaluate never fails: a request against an empty registry or an
// unregistered actor/target simply resolves to the implicit Deny.
func Evaluate(reg *registry.Registry, req Request) registry.Decision {
	traceID := uuid.NewString()
	ctx := BuildContext(reg, req)
	policies := reg.AllPolicies()

	decision := Resolve(policies, ctx)

	if logger.IsDebugEnabled() {
		logger.Debugf(agent, "Evaluate",
			"trace=%s actor=%s/%s target=%s/%s action=%s bucket=%d policies=%d decision=%v",
			traceID, ctx.ActorName, ctx.ActorType, ctx.TargetType, ctx.TargetName,
			ctx.TargetAction, ctx.Bucket, len(policies), decision)
	}

	return decision
}
