// Package admin implements the administration surface (C7): CRUD
// operations for every entity kind plus the check facade, delegating
// in-memory validation to [registry.Registry] and persistence to a
// [storage.Driver]. It owns the Registry's lifecycle — loading the
// initial snapshot, applying locally validated writes, and applying
// remote changes observed via the driver's watch stream.
package admin

import (
	"context"
	"sync"

	"github.com/diggyk/gatehouse/internal/gatehouse/engine"
	"github.com/diggyk/gatehouse/internal/logging"
	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/registry"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
	"github.com/diggyk/gatehouse/pkg/gatehouse/value"
)

var logger = logging.GetLogger("gatehouse.admin")

const agent = "admin"

// Service is the administration surface: the single object a PDP server
// wraps to serve both the check operation and the entity CRUD operations
// the RPC boundary exposes.
type Service struct {
	reg    *registry.Registry
	driver storage.Driver

	cancelWatch context.CancelFunc
	watchDone   chan struct{}

	mu     sync.Mutex // serializes concurrent Close calls
	closed bool
}

// NewService loads the Registry from driver's persisted snapshot and
// starts the driver's watch loop to apply peer changes as they arrive.
// The returned Service owns driver until Close is called.
func NewService(ctx context.Context, driver storage.Driver) (*Service, error) {
	snap, err := driver.Load(ctx)
	if err != nil {
		return nil, common.Wrap(common.KindStorageUnavailable, "failed to load registry snapshot", err)
	}

	reg := registry.New()
	applySnapshot(reg, snap)

	watchCtx, cancel := context.WithCancel(context.Background())
	changes, err := driver.Watch(watchCtx)
	if err != nil {
		cancel()
		return nil, common.Wrap(common.KindStorageUnavailable, "failed to start storage watch", err)
	}

	s := &Service{
		reg:         reg,
		driver:      driver,
		cancelWatch: cancel,
		watchDone:   make(chan struct{}),
	}

	go s.watchLoop(changes)

	logger.Infof(agent, "Open", "registry loaded (targets=%d actors=%d groups=%d roles=%d policies=%d)",
		len(snap.Targets), len(snap.Actors), len(snap.Groups), len(snap.Roles), len(snap.Policies))

	return s, nil
}

// applySnapshot populates an empty registry from a loaded snapshot using
// the unconditional Put* upserts — the records were already validated the
// moment they were first written, so re-validating referential integrity
// on load would only reject legitimate state (e.g. a role and the group
// granted to it loading in the "wrong" order).
func applySnapshot(reg *registry.Registry, snap *storage.Snapshot) {
	for _, rec := range snap.Targets {
		reg.PutTarget(storage.TargetFromRecord(rec))
	}
	for _, rec := range snap.Actors {
		reg.PutActor(storage.ActorFromRecord(rec))
	}
	for _, rec := range snap.Groups {
		name, description, roles := storage.GroupFromRecord(rec)
		members := storage.MembersFromRecord(rec.Members)
		reg.PutGroup(name, description, members, roles)
	}
	for _, rec := range snap.Roles {
		name, description, grantedTo := storage.RoleFromRecord(rec)
		reg.PutRole(&registry.Role{Name: name, Description: description, GrantedTo: stringSet(grantedTo)})
	}
	for _, rec := range snap.Policies {
		reg.PutPolicy(storage.PolicyFromRecord(rec))
	}
}

// watchLoop applies every change the storage driver observes from peers
// directly to the registry, without re-persisting it — per §4.6, watch-
// applied changes must not loop back through Apply.
func (s *Service) watchLoop(changes <-chan storage.Change) {
	defer close(s.watchDone)
	for change := range changes {
		s.applyRemote(change)
	}
}

func (s *Service) applyRemote(change storage.Change) {
	logger.Debugf(agent, "applyRemote", "kind=%v op=%v key=%s", change.Kind, change.Op, change.Key)

	switch change.Kind {
	case storage.KindTarget:
		s.applyRemoteTarget(change)
	case storage.KindActor:
		s.applyRemoteActor(change)
	case storage.KindGroup:
		s.applyRemoteGroup(change)
	case storage.KindRole:
		s.applyRemoteRole(change)
	case storage.KindPolicy:
		s.applyRemotePolicy(change)
	}
}

func (s *Service) applyRemoteTarget(change storage.Change) {
	if change.Op == storage.Delete {
		typ, name := splitTypeName(change.Key)
		_ = s.reg.RemoveTarget(typ, name)
		return
	}
	rec, ok := change.Record.(storage.TargetRecord)
	if !ok {
		return
	}
	s.reg.PutTarget(storage.TargetFromRecord(rec))
}

func (s *Service) applyRemoteActor(change storage.Change) {
	if change.Op == storage.Delete {
		typ, name := splitTypeName(change.Key)
		_ = s.reg.RemoveActor(name, typ)
		return
	}
	rec, ok := change.Record.(storage.ActorRecord)
	if !ok {
		return
	}
	s.reg.PutActor(storage.ActorFromRecord(rec))
}

func (s *Service) applyRemoteGroup(change storage.Change) {
	if change.Op == storage.Delete {
		_ = s.reg.RemoveGroup(change.Key)
		return
	}
	rec, ok := change.Record.(storage.GroupRecord)
	if !ok {
		return
	}
	name, description, roles := storage.GroupFromRecord(rec)
	members := storage.MembersFromRecord(rec.Members)
	s.reg.PutGroup(name, description, members, roles)
}

func (s *Service) applyRemoteRole(change storage.Change) {
	if change.Op == storage.Delete {
		_ = s.reg.RemoveRole(change.Key)
		return
	}
	rec, ok := change.Record.(storage.RoleRecord)
	if !ok {
		return
	}
	name, description, grantedTo := storage.RoleFromRecord(rec)
	s.reg.PutRole(&registry.Role{Name: name, Description: description, GrantedTo: stringSet(grantedTo)})
}

func (s *Service) applyRemotePolicy(change storage.Change) {
	if change.Op == storage.Delete {
		_ = s.reg.RemovePolicy(change.Key)
		return
	}
	rec, ok := change.Record.(storage.PolicyRecord)
	if !ok {
		return
	}
	s.reg.PutPolicy(storage.PolicyFromRecord(rec))
}

// Close stops the watch loop and releases the storage driver's resources.
// Safe to call once; subsequent calls are no-ops.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.cancelWatch()
	<-s.watchDone
	return s.driver.Close()
}

// Check runs a single authorization check through the evaluation engine
// (C4-C6) and returns the resolved decision. Per spec §7, Check only ever
// fails with InvalidArgument.
func (s *Service) Check(req engine.Request) (registry.Decision, error) {
	if req.ActorName == "" || req.ActorType == "" {
		return registry.Deny, common.New(common.KindInvalidArgument, "actor name and type are required")
	}
	if req.TargetName == "" || req.TargetType == "" || req.TargetAction == "" {
		return registry.Deny, common.New(common.KindInvalidArgument, "target name, type, and action are required")
	}
	return engine.Evaluate(s.reg, req), nil
}

func splitTypeName(key string) (typ, name string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i], key[i+1:]
		}
	}
	return "", key
}

func stringSet(values []string) *value.StringSet {
	return value.NewStringSet(values...)
}
