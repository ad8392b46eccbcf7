package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray_Length(t *testing.T) {
	buf := GenerateRandByteArray(24)
	require.Len(t, buf, 24)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 6), buf)

	require.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSentinels_WrapAndMatch(t *testing.T) {
	err := fmt.Errorf("import attachment: %w", ErrFileAccess)
	assert.True(t, errors.Is(err, ErrFileAccess))
	assert.False(t, errors.Is(err, ErrFileExists))
}
