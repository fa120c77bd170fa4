// Package etcd implements a [storage.Driver] backed by an etcd cluster.
// Every entity kind gets its own key prefix; Apply issues a single put or
// delete, and Watch streams the prefix so every node converges on the same
// state. Conflicting concurrent writes resolve last-write-wins by etcd
// revision, which etcd already guarantees for any key's latest value.
package etcd

import (
	"context"
	"strings"
	"time"

	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

const dialTimeout = 5 * time.Second

const rootPrefix = "/gatehouse/"

// Driver is a [storage.Driver] backed by an etcd v3 client.
type Driver struct {
	client *clientv3.Client
}

// New dials the etcd cluster at endpoint (a comma-free single URL, or a
// comma-separated endpoint list) and returns a ready Driver.
func New(endpoint string) (*Driver, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   strings.Split(endpoint, ","),
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, common.Wrap(common.KindStorageUnavailable, "cannot dial etcd", err)
	}
	return &Driver{client: cli}, nil
}

func prefixFor(kind storage.EntityKind) string {
	return rootPrefix + kind.String() + "/"
}

func keyFor(kind storage.EntityKind, key string) string {
	return prefixFor(kind) + key
}

// Load lists every key under each entity kind's prefix and unmarshals it
// into the matching record type. A key that fails to unmarshal is skipped;
// it does not prevent the rest of that kind, or any other kind, from
// loading.
func (d *Driver) Load(ctx context.Context) (*storage.Snapshot, error) {
	snap := &storage.Snapshot{}

	for _, kind := range []storage.EntityKind{
		storage.KindTarget, storage.KindActor, storage.KindGroup, storage.KindRole, storage.KindPolicy,
	} {
		resp, err := d.client.Get(ctx, prefixFor(kind), clientv3.WithPrefix())
		if err != nil {
			return nil, common.Wrap(common.KindStorageUnavailable, "etcd get failed", errors.Wrapf(err, "prefix %s", prefixFor(kind)))
		}
		for _, kv := range resp.Kvs {
			switch kind {
			case storage.KindTarget:
				var rec storage.TargetRecord
				if yaml.Unmarshal(kv.Value, &rec) == nil {
					snap.Targets = append(snap.Targets, rec)
				}
			case storage.KindActor:
				var rec storage.ActorRecord
				if yaml.Unmarshal(kv.Value, &rec) == nil {
					snap.Actors = append(snap.Actors, rec)
				}
			case storage.KindGroup:
				var rec storage.GroupRecord
				if yaml.Unmarshal(kv.Value, &rec) == nil {
					snap.Groups = append(snap.Groups, rec)
				}
			case storage.KindRole:
				var rec storage.RoleRecord
				if yaml.Unmarshal(kv.Value, &rec) == nil {
					snap.Roles = append(snap.Roles, rec)
				}
			case storage.KindPolicy:
				var rec storage.PolicyRecord
				if yaml.Unmarshal(kv.Value, &rec) == nil {
					snap.Policies = append(snap.Policies, rec)
				}
			}
		}
	}

	return snap, nil
}

// Apply issues a single put or delete against the key's entity-kind prefix.
func (d *Driver) Apply(ctx context.Context, change storage.Change) error {
	key := keyFor(change.Kind, change.Key)

	switch change.Op {
	case storage.Delete:
		if _, err := d.client.Delete(ctx, key); err != nil {
			return common.Wrap(common.KindStorageUnavailable, "etcd delete failed", err)
		}
		return nil
	case storage.Put:
		data, err := yaml.Marshal(change.Record)
		if err != nil {
			return common.Wrap(common.KindInternal, "marshal failed", err)
		}
		if _, err := d.client.Put(ctx, key, string(data)); err != nil {
			return common.Wrap(common.KindStorageUnavailable, "etcd put failed", err)
		}
		return nil
	default:
		return common.New(common.KindInternal, "unknown storage op")
	}
}

// Watch subscribes to every entity-kind prefix and dispatches each etcd
// watch event as a [storage.Change]. The last write to reach etcd for a
// given key wins; etcd's own revision ordering makes this automatic.
func (d *Driver) Watch(ctx context.Context) (<-chan storage.Change, error) {
	out := make(chan storage.Change)

	kinds := []storage.EntityKind{
		storage.KindTarget, storage.KindActor, storage.KindGroup, storage.KindRole, storage.KindPolicy,
	}

	go func() {
		defer close(out)

		watchers := make([]clientv3.WatchChan, len(kinds))
		for i, kind := range kinds {
			watchers[i] = d.client.Watch(ctx, prefixFor(kind), clientv3.WithPrefix())
		}

		cases := make(chan struct {
			kind storage.EntityKind
			resp clientv3.WatchResponse
		})
		for i, wc := range watchers {
			kind := kinds[i]
			go func(kind storage.EntityKind, wc clientv3.WatchChan) {
				for resp := range wc {
					select {
					case cases <- struct {
						kind storage.EntityKind
						resp clientv3.WatchResponse
					}{kind, resp}:
					case <-ctx.Done():
						return
					}
				}
			}(kind, wc)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case c := <-cases:
				for _, ev := range c.resp.Events {
					key := string(ev.Kv.Key)[len(prefixFor(c.kind)):]
					change := storage.Change{Kind: c.kind, Key: key}
					if ev.Type == clientv3.EventTypeDelete {
						change.Op = storage.Delete
					} else {
						change.Op = storage.Put
						change.Record = decodeRecord(c.kind, ev.Kv.Value)
					}
					select {
					case out <- change:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

func decodeRecord(kind storage.EntityKind, data []byte) any {
	switch kind {
	case storage.KindTarget:
		var rec storage.TargetRecord
		_ = yaml.Unmarshal(data, &rec)
		return rec
	case storage.KindActor:
		var rec storage.ActorRecord
		_ = yaml.Unmarshal(data, &rec)
		return rec
	case storage.KindGroup:
		var rec storage.GroupRecord
		_ = yaml.Unmarshal(data, &rec)
		return rec
	case storage.KindRole:
		var rec storage.RoleRecord
		_ = yaml.Unmarshal(data, &rec)
		return rec
	case storage.KindPolicy:
		var rec storage.PolicyRecord
		_ = yaml.Unmarshal(data, &rec)
		return rec
	default:
		return nil
	}
}

// Close releases the underlying etcd client connection.
func (d *Driver) Close() error {
	return d.client.Close()
}
