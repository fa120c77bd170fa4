package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	drv, err := Open("file:" + t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, drv)
	assert.NoError(t, drv.Close())
}

func TestOpenUnsupportedScheme(t *testing.T) {
	_, err := Open("s3:some-bucket")
	assert.Error(t, err)
}

func TestOpenMalformedURL(t *testing.T) {
	_, err := Open("no-scheme-here")
	assert.Error(t, err)
}
