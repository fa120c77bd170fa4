package admin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diggyk/gatehouse/internal/gatehouse/engine"
	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assertEventuallyTimeout = 2 * time.Second
	assertEventuallyTick    = 10 * time.Millisecond
)

// memDriver is an in-memory [storage.Driver] test double. applyErr, when
// set, makes every Apply call fail, so tests can exercise the rollback
// path without a real filesystem or etcd cluster.
type memDriver struct {
	mu       sync.Mutex
	snap     storage.Snapshot
	applyErr error
	changes  chan storage.Change
}

func newMemDriver() *memDriver {
	return &memDriver{changes: make(chan storage.Change, 16)}
}

func (d *memDriver) Load(ctx context.Context) (*storage.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := d.snap
	return &snap, nil
}

func (d *memDriver) Apply(ctx context.Context, change storage.Change) error {
	if d.applyErr != nil {
		return d.applyErr
	}
	return nil
}

func (d *memDriver) Watch(ctx context.Context) (<-chan storage.Change, error) {
	out := make(chan storage.Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-d.changes:
				if !ok {
					return
				}
				out <- c
			}
		}
	}()
	return out, nil
}

func (d *memDriver) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *memDriver) {
	t.Helper()
	drv := newMemDriver()
	s, err := NewService(context.Background(), drv)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, drv
}

func TestAddTargetPersistsAndRollsBackOnFailure(t *testing.T) {
	s, drv := newTestService(t)
	ctx := context.Background()

	tgt, err := s.AddTarget(ctx, &registry.Target{Name: "maindb", Type: "db"})
	require.NoError(t, err)
	assert.Equal(t, "maindb", tgt.Name)

	drv.applyErr = assert.AnError
	_, err = s.AddTarget(ctx, &registry.Target{Name: "other", Type: "db"})
	require.Error(t, err)
	var gerr *common.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, common.KindStorageUnavailable, gerr.Kind)

	assert.Empty(t, s.GetTargets(registry.TargetFilter{Name: "other", Type: "db"}))
}

func TestAddTargetRequiresNameAndType(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.AddTarget(context.Background(), &registry.Target{Name: "", Type: "db"})
	require.Error(t, err)
	var gerr *common.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, common.KindInvalidArgument, gerr.Kind)
}

func TestModifyGroupRollsBackOnStorageFailure(t *testing.T) {
	s, drv := newTestService(t)
	ctx := context.Background()

	_, err := s.AddGroup(ctx, "g1", "", nil, nil)
	require.NoError(t, err)

	drv.applyErr = assert.AnError
	_, err = s.ModifyGroup(ctx, "g1", registry.GroupChange{
		AddMembers: []registry.Member{{Name: "alice", Type: "email"}},
	})
	require.Error(t, err)

	groups := s.GetGroups(registry.GroupFilter{Name: "g1"})
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].MemberList())
}

func TestRemoveGroupRollsBackCascadedRoleGrant(t *testing.T) {
	s, drv := newTestService(t)
	ctx := context.Background()

	_, err := s.AddGroup(ctx, "g1", "", nil, nil)
	require.NoError(t, err)
	_, err = s.AddRole(ctx, "r1", "", []string{"g1"})
	require.NoError(t, err)

	drv.applyErr = assert.AnError
	err = s.RemoveGroup(ctx, "g1")
	require.Error(t, err)

	groups := s.GetGroups(registry.GroupFilter{Name: "g1"})
	require.Len(t, groups, 1)

	roles := s.GetRoles(registry.RoleFilter{Name: "r1"})
	require.Len(t, roles, 1)
	assert.True(t, roles[0].GrantedTo.Has("g1"))
}

func TestRemoveRoleRollsBackCascadedGroupRoleSet(t *testing.T) {
	s, drv := newTestService(t)
	ctx := context.Background()

	_, err := s.AddGroup(ctx, "g1", "", nil, nil)
	require.NoError(t, err)
	_, err = s.AddRole(ctx, "r1", "", []string{"g1"})
	require.NoError(t, err)
	_, err = s.ModifyGroup(ctx, "g1", registry.GroupChange{AddRoles: []string{"r1"}})
	require.NoError(t, err)

	drv.applyErr = assert.AnError
	err = s.RemoveRole(ctx, "r1")
	require.Error(t, err)

	roles := s.GetRoles(registry.RoleFilter{Name: "r1"})
	require.Len(t, roles, 1)

	groups := s.GetGroups(registry.GroupFilter{Name: "g1"})
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Roles.Has("r1"))
}

func TestCheckDelegatesToEngine(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.AddPolicy(ctx, &registry.Policy{Name: "allow-all", Decision: registry.Allow})
	require.NoError(t, err)

	decision, err := s.Check(engine.Request{
		ActorName: "alice", ActorType: "email",
		TargetName: "maindb", TargetType: "db", TargetAction: "read",
	})
	require.NoError(t, err)
	assert.Equal(t, registry.Allow, decision)
}

func TestCheckRejectsMissingActorIdentity(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Check(engine.Request{TargetName: "x", TargetType: "y", TargetAction: "z"})
	require.Error(t, err)
	var gerr *common.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, common.KindInvalidArgument, gerr.Kind)
}

func TestWatchAppliesRemoteChangeWithoutRePersisting(t *testing.T) {
	s, drv := newTestService(t)

	drv.changes <- storage.Change{
		Kind: storage.KindTarget,
		Op:   storage.Put,
		Key:  "db/maindb",
		Record: storage.TargetRecord{
			Name: "maindb", Type: "db",
		},
	}

	require.Eventually(t, func() bool {
		return len(s.GetTargets(registry.TargetFilter{Name: "maindb", Type: "db"})) == 1
	}, assertEventuallyTimeout, assertEventuallyTick)
}
