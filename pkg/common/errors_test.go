package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestKindCode(t *testing.T) {
	tests := []struct {
		kind Kind
		code codes.Code
	}{
		{KindInvalidArgument, codes.InvalidArgument},
		{KindAlreadyExists, codes.AlreadyExists},
		{KindNotFound, codes.NotFound},
		{KindReferenceMissing, codes.FailedPrecondition},
		{KindStorageUnavailable, codes.Unavailable},
		{KindInternal, codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.kind.Code())
	}
}

func TestNewAndWrap(t *testing.T) {
	err := New(KindNotFound, "target not found")
	assert.Equal(t, "target not found (not-found)", err.Error())
	assert.Nil(t, err.Unwrap())

	cause := errors.New("disk full")
	wrapped := Wrap(KindStorageUnavailable, "failed to persist change", cause)
	assert.Equal(t, "failed to persist change (storage-unavailable): disk full", wrapped.Error())
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestErrorAsUnwraps(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(KindInternal, "unexpected", cause)

	var gerr *Error
	require.ErrorAs(t, error(wrapped), &gerr)
	assert.Equal(t, KindInternal, gerr.Kind)
	assert.ErrorIs(t, wrapped, cause)
}

func TestStatusNilError(t *testing.T) {
	st := Status(nil)
	assert.Equal(t, int32(codes.OK), st.Code)
}

func TestStatusFromGatehouseError(t *testing.T) {
	err := New(KindAlreadyExists, "actor already exists")
	st := Status(err)
	assert.Equal(t, int32(codes.AlreadyExists), st.Code)
	assert.Equal(t, err.Error(), st.Message)
}

func TestStatusFromPlainError(t *testing.T) {
	st := Status(errors.New("unclassified failure"))
	assert.Equal(t, int32(codes.Internal), st.Code)
	assert.Contains(t, st.Message, "unclassified failure")
}
