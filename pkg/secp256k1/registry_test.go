package secp256k1_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/pure"
)

func TestRegistry(t *testing.T) {
	t.Cleanup(func() {
		secp256k1.Set(nil)
		secp256k1.SetLogger(nil)
	})

	var buf bytes.Buffer
	secp256k1.SetLogger(logging.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	secp256k1.Set(nil)
	_, err := secp256k1.Get()
	require.ErrorIs(t, err, secp256k1.ErrNoAdapter)
	require.Panics(t, func() { secp256k1.MustGet() })

	a := pure.New()
	secp256k1.Set(a)
	got, err := secp256k1.Get()
	require.NoError(t, err)
	require.Same(t, a, got)
	require.Same(t, a, secp256k1.MustGet())
	require.Contains(t, buf.String(), "to=pure")

	b := pure.New()
	secp256k1.Set(b)
	require.Same(t, b, secp256k1.MustGet())
	require.Contains(t, buf.String(), "from=pure")
}

func TestCallSitesAreAdapterAgnostic(t *testing.T) {
	t.Cleanup(func() { secp256k1.Set(nil) })
	secp256k1.Set(pure.New())

	key, err := secp256k1.MustGet().PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()
}

func TestVersion(t *testing.T) {
	require.NotEmpty(t, secp256k1.WrapperVersion())
}

func TestZeroizeBytes(t *testing.T) {
	b := []byte{1, 2}
	secp256k1.ZeroizeBytes(b)
	require.Equal(t, []byte{0, 0}, b)
}
