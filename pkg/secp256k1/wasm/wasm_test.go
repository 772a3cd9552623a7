package wasm_test

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/conformance"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/pure"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/wasm"
)

func newModule(t *testing.T) *wasm.Module {
	t.Helper()
	ctx := context.Background()
	m, err := wasm.New(ctx, wasm.Config{Logger: logging.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, m.Close(ctx)) })
	return m
}

func requireNoLeaks(t *testing.T, m *wasm.Module) {
	t.Helper()
	n, err := m.Allocated()
	require.NoError(t, err)
	require.Zero(t, n, "live linear-memory allocations")
}

func TestConformance(t *testing.T) {
	m := newModule(t)
	other := newModule(t)

	conformance.Run(t, m.Adapter(),
		conformance.Input("foreign", func(t *testing.T, b []byte) memory.Copiable {
			f, err := m.Alloc(b)
			require.NoError(t, err)
			return f
		}),
		conformance.Input("other-module", func(t *testing.T, b []byte) memory.Copiable {
			f, err := other.Alloc(b)
			require.NoError(t, err)
			return f
		}),
		conformance.AfterEach(func(t *testing.T) {
			requireNoLeaks(t, m)
			requireNoLeaks(t, other)
		}),
	)
}

func TestNoLeaksOnErrorPaths(t *testing.T) {
	m := newModule(t)
	a := m.Adapter()

	_, err := a.PrivateKey.Import(memory.Own(make([]byte, 32)))
	require.ErrorIs(t, err, secp256k1.ErrImport)
	_, err = a.PrivateKey.Import(memory.Own(make([]byte, 7)))
	require.ErrorIs(t, err, secp256k1.ErrImport)
	_, err = a.PublicKey.Import(memory.Own([]byte{0x02, 0x01}))
	require.ErrorIs(t, err, secp256k1.ErrImport)

	key, err := a.PrivateKey.Random()
	require.NoError(t, err)
	_, err = key.Sign(memory.Own(nil))
	require.ErrorIs(t, err, secp256k1.ErrSign)
	key.Free()
	_, err = key.Export()
	require.ErrorIs(t, err, secp256k1.ErrExport)

	requireNoLeaks(t, m)
}

func TestForeignInputConsumedInPlace(t *testing.T) {
	m := newModule(t)

	f, err := m.Alloc(bytes.Repeat([]byte{0x11}, 32))
	require.NoError(t, err)
	n, err := m.Allocated()
	require.NoError(t, err)
	require.Equal(t, uint32(1), n)

	key, err := m.Adapter().PrivateKey.Import(memory.Move(f))
	require.NoError(t, err)
	require.True(t, f.Freed())

	// Only the key object remains.
	n, err = m.Allocated()
	require.NoError(t, err)
	require.Equal(t, uint32(1), n)

	key.Free()
	requireNoLeaks(t, m)
}

func TestHandlesSurviveCollectionDuringCalls(t *testing.T) {
	m := newModule(t)
	a := m.Adapter()

	key, err := a.PrivateKey.Random()
	require.NoError(t, err)
	pub, err := key.PublicKey()
	require.NoError(t, err)
	want, err := pub.ExportCompressed()
	require.NoError(t, err)
	signer := want.CopyAndFree()

	d := bytes.Repeat([]byte{0x5a}, 32)
	sig, err := key.Sign(memory.Own(d))
	require.NoError(t, err)
	raw, err := sig.Export()
	require.NoError(t, err)
	sigBytes := raw.CopyAndFree()
	sig.Free()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				runtime.GC()
			}
		}
	}()

	for i := 0; i < 64; i++ {
		imported, err := a.SignatureAndRecovery.Import(memory.CopyOf(sigBytes))
		require.NoError(t, err)
		digest, err := m.Alloc(d)
		require.NoError(t, err)
		got, err := a.PublicKey.Recover(digest, imported)
		require.NoError(t, err)
		out, err := got.ExportCompressed()
		require.NoError(t, err)
		require.Equal(t, signer, out.CopyAndFree())

		imported, err = a.SignatureAndRecovery.Import(memory.CopyOf(sigBytes))
		require.NoError(t, err)
		digest, err = m.Alloc(d)
		require.NoError(t, err)
		ok, err := got.Verify(digest, imported)
		require.NoError(t, err)
		require.True(t, ok)
	}
	close(stop)
	<-done

	pub.Free()
	key.Free()
	require.Eventually(t, func() bool {
		runtime.GC()
		n, err := m.Allocated()
		return err == nil && n == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestOutputsAreHeapOwned(t *testing.T) {
	m := newModule(t)
	key, err := m.Adapter().PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()

	out, err := key.Export()
	require.NoError(t, err)
	_, foreign := out.(*memory.Foreign)
	require.False(t, foreign)
	require.Len(t, out.Bytes(), secp256k1.PrivateKeySize)
	out.Free()
}

func TestInteropWithPure(t *testing.T) {
	m := newModule(t)
	backends := []*secp256k1.Adapter{pure.New(), m.Adapter()}

	d := bytes.Repeat([]byte{0xab}, 32)
	for _, signer := range backends {
		for _, verifier := range backends {
			t.Run(signer.Name+"->"+verifier.Name, func(t *testing.T) {
				key, err := signer.PrivateKey.Random()
				require.NoError(t, err)
				defer key.Free()
				pub, err := key.PublicKey()
				require.NoError(t, err)
				defer pub.Free()
				sig, err := key.Sign(memory.Own(d))
				require.NoError(t, err)
				defer sig.Free()

				raw, err := pub.ExportCompressed()
				require.NoError(t, err)
				vpub, err := verifier.PublicKey.Import(memory.Move(raw))
				require.NoError(t, err)
				defer vpub.Free()

				// Handles from the other engine are accepted directly.
				ok, err := vpub.Verify(memory.Own(d), sig)
				require.NoError(t, err)
				require.True(t, ok)

				rec, err := verifier.PublicKey.Recover(memory.Own(d), sig)
				require.NoError(t, err)
				defer rec.Free()
				want, _ := pub.ExportUncompressed()
				got, _ := rec.ExportUncompressed()
				require.Equal(t, want.CopyAndFree(), got.CopyAndFree())
			})
		}
	}
	requireNoLeaks(t, m)
}

func TestDeterministicAcrossBackends(t *testing.T) {
	m := newModule(t)
	one := make([]byte, 32)
	one[31] = 1
	d := bytes.Repeat([]byte{0x5a}, 32)

	var sigs [][]byte
	for _, a := range []*secp256k1.Adapter{pure.New(), m.Adapter()} {
		key, err := a.PrivateKey.Import(memory.CopyOf(one))
		require.NoError(t, err)
		sig, err := key.Sign(memory.Own(d))
		require.NoError(t, err)
		out, err := sig.Export()
		require.NoError(t, err)
		sigs = append(sigs, out.CopyAndFree())
		sig.Free()
		key.Free()
	}
	require.Equal(t, sigs[0], sigs[1])
}

func TestFreedForeignSignature(t *testing.T) {
	m := newModule(t)
	p := pure.New()

	key, err := p.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()
	sig, err := key.Sign(memory.Own(bytes.Repeat([]byte{1}, 32)))
	require.NoError(t, err)
	sig.Free()

	_, err = m.Adapter().PublicKey.Recover(memory.Own(bytes.Repeat([]byte{1}, 32)), sig)
	require.ErrorIs(t, err, secp256k1.ErrRecover)
	require.ErrorIs(t, err, secp256k1.ErrForeignHandle)
	requireNoLeaks(t, m)
}

func TestBindRejectsIncompleteModules(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	_, err := wasm.Bind(nil, wasm.Config{})
	require.Error(t, err)

	mod, err := r.InstantiateWithConfig(ctx, hostmod.MemoryModule(1, 0),
		wazero.NewModuleConfig().WithName("only_memory"))
	require.NoError(t, err)
	_, err = wasm.Bind(mod, wasm.Config{})
	require.ErrorIs(t, err, wasm.ErrMissingExport)
	require.Contains(t, err.Error(), hostmod.ExportKeySign)
}

func TestBindToCallerRuntime(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	inst, err := hostmod.Instantiate(ctx, r, hostmod.Config{})
	require.NoError(t, err)
	m, err := wasm.Bind(inst.Module, wasm.Config{Logger: logging.Discard()})
	require.NoError(t, err)

	a := m.Adapter()
	key, err := a.PrivateKey.Random()
	require.NoError(t, err)
	pub, err := key.PublicKey()
	require.NoError(t, err)
	digest := bytes.Repeat([]byte{7}, 32)
	sig, err := key.Sign(memory.Own(digest))
	require.NoError(t, err)
	ok, err := pub.Verify(memory.Own(digest), sig)
	require.NoError(t, err)
	require.True(t, ok)

	sig.Free()
	pub.Free()
	key.Free()
	requireNoLeaks(t, m)

	require.NoError(t, m.Close(ctx))
	n, err := m.Allocated()
	require.NoError(t, err, "Close leaves a caller-owned runtime open")
	require.Zero(t, n)
}

func TestMemoryLimit(t *testing.T) {
	ctx := context.Background()
	m, err := wasm.New(ctx, wasm.Config{InitialPages: 1, MaxPages: 1, Logger: logging.Discard()})
	require.NoError(t, err)
	defer m.Close(ctx)

	_, err = m.Alloc(make([]byte, 2*65536))
	require.ErrorIs(t, err, wasm.ErrOutOfMemory)

	var status *wasm.StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, hostmod.ExportAlloc, status.Export)
	requireNoLeaks(t, m)
}

func TestCloseWarnsOnLeaks(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := logging.New(slog.New(slog.NewTextHandler(&buf, nil)))

	m, err := wasm.New(ctx, wasm.Config{Logger: logger})
	require.NoError(t, err)
	key, err := m.Adapter().PrivateKey.Random()
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx))

	require.Contains(t, buf.String(), "live allocations")
	require.Contains(t, buf.String(), "adapter=wasm")
	require.NotPanics(t, key.Free)
}

func TestInvalidConfig(t *testing.T) {
	_, err := wasm.New(context.Background(), wasm.Config{InitialPages: 3, MaxPages: 2})
	require.Error(t, err)
}
