// Package file implements a [storage.Driver] backed by a directory tree on
// local disk: one subdirectory per entity kind, one YAML file per entity,
// with atomic rename used for every write so a crash mid-write can never
// leave a half-written file visible. This is a single-node backend; its
// watch stream never produces events.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Driver is a [storage.Driver] rooted at a directory on local disk.
type Driver struct {
	root string
}

// New creates a Driver rooted at root, creating the directory tree for
// every entity kind if it does not already exist.
func New(root string) (*Driver, error) {
	d := &Driver{root: root}
	for _, kind := range allKinds {
		if err := os.MkdirAll(d.kindDir(kind), 0o755); err != nil {
			return nil, common.Wrap(common.KindStorageUnavailable,
				"cannot create storage root", errors.Wrapf(err, "mkdir %s", d.kindDir(kind)))
		}
	}
	return d, nil
}

var allKinds = []storage.EntityKind{
	storage.KindTarget,
	storage.KindActor,
	storage.KindGroup,
	storage.KindRole,
	storage.KindPolicy,
}

func (d *Driver) kindDir(kind storage.EntityKind) string {
	return filepath.Join(d.root, kind.String())
}

// pathFor maps a storage key to a file path under the kind's directory.
// Target/actor keys are "type/name", which naturally becomes a two-level
// path; group/role/policy keys are a bare name.
func (d *Driver) pathFor(kind storage.EntityKind, key string) string {
	return filepath.Join(d.kindDir(kind), key+".yaml")
}

// Load reads every entity file under the root and assembles a full
// Snapshot. A file that cannot be read or unmarshalled is skipped without
// being reported; it does not prevent loading the rest of that kind or any
// other kind. Load always returns a nil error.
func (d *Driver) Load(ctx context.Context) (*storage.Snapshot, error) {
	snap := &storage.Snapshot{}

	for _, name := range listYAML(d.kindDir(storage.KindTarget)) {
		var rec storage.TargetRecord
		if readYAML(name, &rec) {
			snap.Targets = append(snap.Targets, rec)
		}
	}
	for _, name := range listYAML(d.kindDir(storage.KindActor)) {
		var rec storage.ActorRecord
		if readYAML(name, &rec) {
			snap.Actors = append(snap.Actors, rec)
		}
	}
	for _, name := range listYAML(d.kindDir(storage.KindGroup)) {
		var rec storage.GroupRecord
		if readYAML(name, &rec) {
			snap.Groups = append(snap.Groups, rec)
		}
	}
	for _, name := range listYAML(d.kindDir(storage.KindRole)) {
		var rec storage.RoleRecord
		if readYAML(name, &rec) {
			snap.Roles = append(snap.Roles, rec)
		}
	}
	for _, name := range listYAML(d.kindDir(storage.KindPolicy)) {
		var rec storage.PolicyRecord
		if readYAML(name, &rec) {
			snap.Policies = append(snap.Policies, rec)
		}
	}

	return snap, nil
}

// listYAML returns every *.yaml file under dir at any depth, which covers
// the type/name.yaml layout used by targets and actors.
func listYAML(dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") {
			out = append(out, path)
		}
		return nil
	})
	return out
}

func readYAML(path string, out any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return yaml.Unmarshal(data, out) == nil
}

// Apply persists a single change by writing a temp file and renaming it
// into place (Put), or removing the file (Delete).
func (d *Driver) Apply(ctx context.Context, change storage.Change) error {
	path := d.pathFor(change.Kind, change.Key)

	switch change.Op {
	case storage.Delete:
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return common.Wrap(common.KindStorageUnavailable, "delete failed", err)
		}
		return nil
	case storage.Put:
		data, err := yaml.Marshal(change.Record)
		if err != nil {
			return common.Wrap(common.KindInternal, "marshal failed", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return common.Wrap(common.KindStorageUnavailable, "mkdir failed", err)
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return common.Wrap(common.KindStorageUnavailable, "write failed", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return common.Wrap(common.KindStorageUnavailable, "rename failed", err)
		}
		return nil
	default:
		return common.New(common.KindInternal, fmt.Sprintf("unknown op %v", change.Op))
	}
}

// Watch returns a channel that is closed when ctx is cancelled. The file
// driver is single-node; there are no peers to observe changes from.
func (d *Driver) Watch(ctx context.Context) (<-chan storage.Change, error) {
	ch := make(chan storage.Change)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Close is a no-op for the file driver; there is no connection to release.
func (d *Driver) Close() error {
	return nil
}
