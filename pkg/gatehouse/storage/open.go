package storage

import (
	"strings"

	"github.com/diggyk/gatehouse/pkg/common"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage/etcd"
	"github.com/diggyk/gatehouse/pkg/gatehouse/storage/file"
)

// Open constructs a Driver from a storage URL of the form "file:{path}" or
// "etcd:{endpoint}", the format accepted by the storage.url configuration
// key and its GATESTORAGE alias.
func Open(url string) (Driver, error) {
	scheme, rest, ok := strings.Cut(url, ":")
	if !ok {
		return nil, common.New(common.KindInvalidArgument, "storage url must be of the form 'scheme:location': "+url)
	}

	switch scheme {
	case "file":
		return file.New(rest)
	case "etcd":
		return etcd.New(rest)
	default:
		return nil, common.New(common.KindInvalidArgument, "unsupported storage scheme: "+scheme)
	}
}
