package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
)

const keyOne = "0000000000000000000000000000000000000000000000000000000000000001"

func TestCommands(t *testing.T) {
	for _, backend := range []string{"pure", "wasm"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			closeFn, err := activate(ctx, backend, logging.Discard())
			require.NoError(t, err)
			t.Cleanup(func() {
				require.NoError(t, closeFn(ctx))
				secp256k1.Set(nil)
			})

			require.NoError(t, run("version", nil))
			require.NoError(t, run("keygen", nil))
			require.NoError(t, run("pubkey", []string{"-key", keyOne, "-uncompressed"}))
			require.NoError(t, run("sign", []string{"-key", keyOne, "-message", "hello"}))

			require.Error(t, run("sign", []string{"-key", keyOne}))
			require.Error(t, run("sign", []string{"-key", keyOne, "-digest", "00", "-message", "x"}))
			require.Error(t, run("pubkey", []string{"-key", "zz"}))
			require.Error(t, run("pubkey", []string{"-key", "00"}))
			require.Error(t, run("nope", nil))
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := activate(context.Background(), "gpu", logging.Discard())
	require.Error(t, err)
}

func TestMessageDigest(t *testing.T) {
	msg := "abc"
	empty := ""
	d, err := digestFlags{digest: &empty, message: &msg}.bytes()
	require.NoError(t, err)
	require.Len(t, d, 32)
	// SHA-256("abc")
	require.Equal(t, byte(0xba), d[0])
	require.Equal(t, byte(0xad), d[31])
}
