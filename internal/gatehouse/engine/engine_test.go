package engine

import (
	"testing"

	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplicitDenyOnEmptyRegistry(t *testing.T) {
	reg := registry.New()
	req := Request{ActorName: "u", TargetName: "maindb", TargetType: "db", TargetAction: "read"}
	assert.Equal(t, registry.Deny, Evaluate(reg, req))
}

func TestRoleViaGroupGrantsAllow(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddGroup("g1", "", []registry.Member{{Name: "alice", Type: "email"}}, nil)
	require.NoError(t, err)
	_, err = reg.AddRole("r1", "", []string{"g1"})
	require.NoError(t, err)

	_, err = reg.AddPolicy(&registry.Policy{
		Name: "p",
		ActorCheck: &registry.ActorCheck{
			Attributes: []*value.KvCheck{value.NewKvCheck(HasRoleKey, value.Has, "r1")},
		},
		Decision: registry.Allow,
	})
	require.NoError(t, err)

	allow := Request{ActorName: "alice", ActorType: "email", TargetName: "x", TargetType: "y", TargetAction: "z"}
	assert.Equal(t, registry.Allow, Evaluate(reg, allow))

	deny := Request{ActorName: "bob", ActorType: "email", TargetName: "x", TargetType: "y", TargetAction: "z"}
	assert.Equal(t, registry.Deny, Evaluate(reg, deny))
}

func TestExplicitDenyOverridesAllow(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddPolicy(&registry.Policy{Name: "allow", Decision: registry.Allow})
	require.NoError(t, err)
	_, err = reg.AddPolicy(&registry.Policy{Name: "deny", Decision: registry.Deny})
	require.NoError(t, err)

	req := Request{ActorName: "anyone", TargetName: "x", TargetType: "y", TargetAction: "z"}
	assert.Equal(t, registry.Deny, Evaluate(reg, req))
}

func TestBucketFeatureFlagStableAcrossCalls(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddPolicy(&registry.Policy{
		Name:       "rollout",
		ActorCheck: &registry.ActorCheck{Bucket: value.NewNumberCheck(value.LessThan, 50)},
		Decision:   registry.Allow,
	})
	require.NoError(t, err)

	req := Request{ActorName: "someone", ActorType: "user", TargetName: "x", TargetType: "y", TargetAction: "z"}
	first := Evaluate(reg, req)
	second := Evaluate(reg, req)
	assert.Equal(t, first, second)

	bucket := Bucket("someone", "user")
	if bucket < 50 {
		assert.Equal(t, registry.Allow, first)
	} else {
		assert.Equal(t, registry.Deny, first)
	}
}

func TestCrossMatchOnTargetAttribute(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddTarget(&registry.Target{
		Name: "maindb", Type: "db",
		Actions:    value.NewStringSet(),
		Attributes: attrsOf("env", "prod"),
	})
	require.NoError(t, err)

	_, err = reg.AddPolicy(&registry.Policy{
		Name:        "cross",
		TargetCheck: &registry.TargetCheck{MatchInActor: []string{"env"}},
		Decision:    registry.Allow,
	})
	require.NoError(t, err)

	prodActorEnv := value.NewAttributeMap()
	prodActorEnv.AddValues("env", "prod")
	allow := Request{ActorName: "alice", ActorType: "user", ActorAttributes: prodActorEnv, TargetName: "maindb", TargetType: "db", TargetAction: "read"}
	assert.Equal(t, registry.Allow, Evaluate(reg, allow))

	devActorEnv := value.NewAttributeMap()
	devActorEnv.AddValues("env", "dev")
	deny := Request{ActorName: "alice", ActorType: "user", ActorAttributes: devActorEnv, TargetName: "maindb", TargetType: "db", TargetAction: "read"}
	assert.Equal(t, registry.Deny, Evaluate(reg, deny))
}

func TestPolicyOrderDoesNotAffectDecision(t *testing.T) {
	reg1 := registry.New()
	_, _ = reg1.AddPolicy(&registry.Policy{Name: "allow", Decision: registry.Allow})
	_, _ = reg1.AddPolicy(&registry.Policy{Name: "deny", Decision: registry.Deny})

	reg2 := registry.New()
	_, _ = reg2.AddPolicy(&registry.Policy{Name: "deny", Decision: registry.Deny})
	_, _ = reg2.AddPolicy(&registry.Policy{Name: "allow", Decision: registry.Allow})

	req := Request{ActorName: "anyone", TargetName: "x", TargetType: "y", TargetAction: "z"}
	assert.Equal(t, Evaluate(reg1, req), Evaluate(reg2, req))
}

func TestEnrichmentActorAttributesPEPWinsOnConflict(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddActor(&registry.Actor{Name: "alice", Type: "email", Attributes: attrsOf("clearance", "dev")})
	require.NoError(t, err)

	pepAttrs := value.NewAttributeMap()
	pepAttrs.AddValues("clearance", "prod")
	ctx := BuildContext(reg, Request{ActorName: "alice", ActorType: "email", ActorAttributes: pepAttrs})
	assert.True(t, ctx.ActorAttributes.Get("clearance").Has("prod"))
	assert.False(t, ctx.ActorAttributes.Get("clearance").Has("dev"))
}

func TestEnvAttributesDoNotLeakIntoActorAttributes(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddPolicy(&registry.Policy{
		Name: "needs-actor-clearance",
		ActorCheck: &registry.ActorCheck{
			Attributes: []*value.KvCheck{value.NewKvCheck("clearance", value.Has, "secret")},
		},
		Decision: registry.Allow,
	})
	require.NoError(t, err)

	env := value.NewAttributeMap()
	env.AddValues("clearance", "secret")
	req := Request{ActorName: "bob", ActorType: "email", EnvAttributes: env, TargetName: "x", TargetType: "y", TargetAction: "z"}
	assert.Equal(t, registry.Deny, Evaluate(reg, req))
}

func TestPolicyWithNoSubChecksAllowsEveryRequest(t *testing.T) {
	reg := registry.New()
	_, err := reg.AddPolicy(&registry.Policy{Name: "allow-all", Decision: registry.Allow})
	require.NoError(t, err)

	for _, req := range []Request{
		{ActorName: "anyone", TargetName: "x", TargetType: "y", TargetAction: "z"},
		{ActorName: "someone-else", ActorType: "service", TargetName: "a", TargetType: "b", TargetAction: "c"},
	} {
		assert.Equal(t, registry.Allow, Evaluate(reg, req))
	}
}

func attrsOf(key string, values ...string) *value.AttributeMap {
	a := value.NewAttributeMap()
	a.AddValues(key, values...)
	return a
}
