package registry

import (
	"testing"

	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asErr(t *testing.T, err error) *common.Error {
	t.Helper()
	var e *common.Error
	require.ErrorAs(t, err, &e)
	return e
}

func TestAddTargetDuplicateFails(t *testing.T) {
	r := New()
	tgt := &Target{Name: "maindb", Type: "db", Actions: value.NewStringSet(), Attributes: value.NewAttributeMap()}

	_, err := r.AddTarget(tgt)
	require.NoError(t, err)

	_, err = r.AddTarget(tgt)
	assert.Equal(t, common.KindAlreadyExists, asErr(t, err).Kind)
}

func TestModifyTargetAttributeMerge(t *testing.T) {
	r := New()
	tgt := &Target{Name: "maindb", Type: "db", Actions: value.NewStringSet(), Attributes: value.NewAttributeMap()}
	_, err := r.AddTarget(tgt)
	require.NoError(t, err)

	_, err = r.ModifyTarget("db", "maindb", TargetAttrChange{
		AddAttributes: map[string][]string{"env": {"prod"}},
	})
	require.NoError(t, err)

	got := r.LookupTarget("db", "maindb")
	require.NotNil(t, got)
	assert.True(t, got.Attributes.Get("env").Has("prod"))

	_, err = r.ModifyTarget("db", "maindb", TargetAttrChange{
		RemoveAttributes: map[string][]string{"env": {"prod"}},
	})
	require.NoError(t, err)

	got = r.LookupTarget("db", "maindb")
	assert.Nil(t, got.Attributes.Get("env"))
}

func TestModifyTargetRemovingAbsentValueIsNoop(t *testing.T) {
	r := New()
	tgt := &Target{Name: "maindb", Type: "db", Actions: value.NewStringSet(), Attributes: value.NewAttributeMap()}
	_, err := r.AddTarget(tgt)
	require.NoError(t, err)

	_, err = r.ModifyTarget("db", "maindb", TargetAttrChange{
		RemoveAttributes: map[string][]string{"env": {"prod"}},
	})
	assert.NoError(t, err)
}

func TestGroupAddWithMissingRoleFailsReferenceMissing(t *testing.T) {
	r := New()

	_, err := r.AddGroup("g1", "", nil, []string{"nosuch"})
	assert.Equal(t, common.KindReferenceMissing, asErr(t, err).Kind)

	groups := r.GetGroups(GroupFilter{})
	assert.Empty(t, groups)
}

func TestModifyGroupAddRolesReferenceMissingThenSucceeds(t *testing.T) {
	r := New()
	_, err := r.AddGroup("g1", "", nil, nil)
	require.NoError(t, err)

	_, err = r.ModifyGroup("g1", GroupChange{AddRoles: []string{"nosuch"}})
	assert.Equal(t, common.KindReferenceMissing, asErr(t, err).Kind)

	_, err = r.AddRole("nosuch", "", nil)
	require.NoError(t, err)

	_, err = r.ModifyGroup("g1", GroupChange{AddRoles: []string{"nosuch"}})
	assert.NoError(t, err)
}

func TestRemoveGroupCascadesFromRole(t *testing.T) {
	r := New()
	_, err := r.AddGroup("g1", "", nil, nil)
	require.NoError(t, err)
	_, err = r.AddRole("r1", "", []string{"g1"})
	require.NoError(t, err)

	require.NoError(t, r.RemoveGroup("g1"))

	roles := r.GetRoles(RoleFilter{Name: "r1"})
	require.Len(t, roles, 1)
	assert.False(t, roles[0].GrantedTo.Has("g1"))
}

func TestRemoveRoleCascadesFromGroup(t *testing.T) {
	r := New()
	_, err := r.AddRole("r1", "", nil)
	require.NoError(t, err)
	_, err = r.AddGroup("g1", "", nil, []string{"r1"})
	require.NoError(t, err)

	require.NoError(t, r.RemoveRole("r1"))

	groups := r.GetGroups(GroupFilter{Name: "g1"})
	require.Len(t, groups, 1)
	assert.False(t, groups[0].Roles.Has("r1"))
}

func TestMemberOfAndRolesExpansion(t *testing.T) {
	r := New()
	_, err := r.AddRole("r1", "", nil)
	require.NoError(t, err)
	_, err = r.AddGroup("g1", "", []Member{{Name: "alice", Type: "email"}}, []string{"r1"})
	require.NoError(t, err)
	_, err = r.ModifyRole("r1", RoleChange{AddGrantedTo: []string{"g1"}})
	require.NoError(t, err)

	memberOf, hasRole := r.MemberOfAndRoles("Alice", "Email")
	assert.Contains(t, memberOf, "g1")
	assert.Contains(t, hasRole, "r1")

	memberOf, hasRole = r.MemberOfAndRoles("bob", "email")
	assert.Empty(t, memberOf)
	assert.Empty(t, hasRole)
}

func TestCaseInsensitiveIdentity(t *testing.T) {
	r := New()
	_, err := r.AddActor(&Actor{Name: "Alice", Type: "Email", Attributes: value.NewAttributeMap()})
	require.NoError(t, err)

	_, err = r.AddActor(&Actor{Name: "alice", Type: "email", Attributes: value.NewAttributeMap()})
	assert.Equal(t, common.KindAlreadyExists, asErr(t, err).Kind)

	got := r.LookupActor("ALICE", "EMAIL")
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
}

func TestPolicyWholeRuleReplacement(t *testing.T) {
	r := New()
	p := &Policy{Name: "p1", Decision: Allow}
	_, err := r.AddPolicy(p)
	require.NoError(t, err)

	replacement := &Policy{Name: "p1", Decision: Deny}
	_, err = r.ModifyPolicy(replacement)
	require.NoError(t, err)

	got := r.GetPolicies(PolicyFilter{Name: "p1"})
	require.Len(t, got, 1)
	assert.Equal(t, Deny, got[0].Decision)
}

func TestModifyAbsentEntityReturnsNotFound(t *testing.T) {
	r := New()
	_, err := r.ModifyPolicy(&Policy{Name: "nosuch"})
	assert.Equal(t, common.KindNotFound, asErr(t, err).Kind)
}
