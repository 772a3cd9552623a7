//go:build cgo && !windows

package cmem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory/cmem"
)

func TestAllocRoundTrip(t *testing.T) {
	before := cmem.Live()

	f, err := cmem.Alloc([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, before+1, cmem.Live())
	require.Equal(t, []byte{1, 2, 3}, f.Bytes())

	out := f.CopyAndFree()
	require.Equal(t, []byte{1, 2, 3}, out)
	require.Equal(t, before, cmem.Live())

	f.Free()
	require.Equal(t, before, cmem.Live())
}

func TestAllocEmpty(t *testing.T) {
	f, err := cmem.Alloc(nil)
	require.NoError(t, err)
	require.Zero(t, f.Len())
	require.False(t, f.Freed())
	f.Free()
	require.True(t, f.Freed())
}
