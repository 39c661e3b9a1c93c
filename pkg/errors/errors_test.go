package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesTypeAndStack(t *testing.T) {
	err := New(ErrorTypeMalformedRecord, "bad record")

	assert.Equal(t, ErrorTypeMalformedRecord, err.Type)
	assert.Contains(t, err.Error(), "malformed_record: bad record")
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrorTypeArchiveWrite, "write failed")

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestIsTypeSeesThroughWrapping(t *testing.T) {
	inner := New(ErrorTypeMalformedRecord, "bad entry")
	outer := fmt.Errorf("task: %w", inner)

	assert.True(t, IsType(outer, ErrorTypeMalformedRecord))
	assert.False(t, IsType(outer, ErrorTypeArchiveRead))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeInternal))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrorTypeIDExhausted, "out of luck")))
	assert.True(t, IsFatal(New(ErrorTypeInvalidSourceDir, "missing")))
	assert.True(t, IsFatal(New(ErrorTypeConfig, "bad flag")))
	assert.False(t, IsFatal(New(ErrorTypeArchiveWrite, "one archive down")))
	assert.False(t, IsFatal(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeArchiveRead, "boom").
		WithDetail("path", "/tmp/1.zip").
		WithDetail("entries", 3)

	assert.Equal(t, "/tmp/1.zip", err.Details["path"])
	assert.Equal(t, 3, err.Details["entries"])
}
