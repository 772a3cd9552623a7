package conformance

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

// Generator point encodings, the public key of D = 1.
const (
	GeneratorCompressed   = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	GeneratorUncompressed = "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
		"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"
)

// Option customizes Run.
type Option func(*suite)

// AfterEach registers a check that runs at the end of every test case.
func AfterEach(check func(t *testing.T)) Option {
	return func(s *suite) {
		s.after = append(s.after, check)
	}
}

// Input registers a capsule constructor used in addition to memory.Own for
// inputs, e.g. one that places bytes in the adapter's own memory.
func Input(name string, wrap func(t *testing.T, b []byte) memory.Copiable) Option {
	return func(s *suite) {
		s.inputs = append(s.inputs, input{name: name, wrap: wrap})
	}
}

type input struct {
	name string
	wrap func(t *testing.T, b []byte) memory.Copiable
}

type suite struct {
	a      *secp256k1.Adapter
	after  []func(t *testing.T)
	inputs []input
}

type testCase struct {
	name string
	fn   func(t *testing.T, s *suite, in input)
}

var cases = []testCase{
	{"PrivateKeyRoundTrip", testPrivateKeyRoundTrip},
	{"KnownKey", testKnownKey},
	{"RecoverRandomKeyDigestOne", testRecoverRandomKeyDigestOne},
	{"PublicKeyRoundTrip", testPublicKeyRoundTrip},
	{"SignRecoverVerify", testSignRecoverVerify},
	{"SignatureRoundTrip", testSignatureRoundTrip},
	{"LowS", testLowS},
	{"RejectPrivateKeys", testRejectPrivateKeys},
	{"RejectPublicKeys", testRejectPublicKeys},
	{"RejectSignatures", testRejectSignatures},
	{"RejectEmptyDigest", testRejectEmptyDigest},
	{"FreeIsIdempotent", testFreeIsIdempotent},
	{"UseAfterFree", testUseAfterFree},
	{"MovedInputIsFreed", testMovedInputIsFreed},
	{"FreedInput", testFreedInput},
	{"BrokenForeignSignature", testBrokenForeignSignature},
}

// Run executes the suite against a.
func Run(t *testing.T, a *secp256k1.Adapter, opts ...Option) {
	t.Helper()
	require.NotNil(t, a)
	s := &suite{a: a}
	s.inputs = append(s.inputs, input{name: "owned", wrap: func(_ *testing.T, b []byte) memory.Copiable {
		return memory.CopyOf(b)
	}})
	for _, opt := range opts {
		opt(s)
	}

	for _, in := range s.inputs {
		in := in
		t.Run(in.name, func(t *testing.T) {
			for _, tc := range cases {
				tc := tc
				t.Run(tc.name, func(t *testing.T) {
					var made []memory.Copiable
					tracked := input{name: in.name, wrap: func(t *testing.T, b []byte) memory.Copiable {
						c := in.wrap(t, b)
						made = append(made, c)
						return c
					}}
					tc.fn(t, s, tracked)

					// Inputs not moved into a call stay owned by the test.
					for _, c := range made {
						c.Free()
					}
					for _, check := range s.after {
						check(t)
					}
				})
			}
		})
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func digest(seed byte) []byte {
	d := make([]byte, 32)
	for i := range d {
		d[i] = seed + byte(i)
	}
	return d
}

func scalarOne() []byte {
	b := make([]byte, secp256k1.PrivateKeySize)
	b[31] = 1
	return b
}

// exported runs an export method and returns its bytes, freeing the
// capsule.
func exported(t *testing.T, export func() (memory.Copiable, error)) []byte {
	t.Helper()
	c, err := export()
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.CopyAndFree()
}

func requireKind(t *testing.T, err error, sentinel error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, sentinel)
	var e *secp256k1.Error
	require.ErrorAs(t, err, &e)
}

func testPrivateKeyRoundTrip(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()

	raw := exported(t, key.Export)
	require.Len(t, raw, secp256k1.PrivateKeySize)

	imported, err := s.a.PrivateKey.Import(in.wrap(t, raw))
	require.NoError(t, err)
	defer imported.Free()

	again := exported(t, imported.Export)
	require.True(t, bytes.Equal(raw, again))
}

func testKnownKey(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Import(in.wrap(t, scalarOne()))
	require.NoError(t, err)
	defer key.Free()

	pub, err := key.PublicKey()
	require.NoError(t, err)
	defer pub.Free()

	require.Equal(t, GeneratorCompressed, hex.EncodeToString(exported(t, pub.ExportCompressed)))
	require.Equal(t, GeneratorUncompressed, hex.EncodeToString(exported(t, pub.ExportUncompressed)))

	sig, err := key.Sign(in.wrap(t, digest(1)))
	require.NoError(t, err)
	defer sig.Free()

	rec, err := s.a.PublicKey.Recover(in.wrap(t, digest(1)), sig)
	require.NoError(t, err)
	defer rec.Free()
	require.Equal(t, GeneratorCompressed, hex.EncodeToString(exported(t, rec.ExportCompressed)))
}

// testRecoverRandomKeyDigestOne signs the digest 0x00..01 with a fresh key
// and recovers the signer from it.
func testRecoverRandomKeyDigestOne(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()
	pub, err := key.PublicKey()
	require.NoError(t, err)
	defer pub.Free()

	d := scalarOne()
	sig, err := key.Sign(in.wrap(t, d))
	require.NoError(t, err)
	defer sig.Free()

	rec, err := s.a.PublicKey.Recover(in.wrap(t, d), sig)
	require.NoError(t, err)
	defer rec.Free()
	require.Equal(t, exported(t, pub.ExportCompressed), exported(t, rec.ExportCompressed))
	require.Equal(t, exported(t, pub.ExportUncompressed), exported(t, rec.ExportUncompressed))

	ok, err := rec.Verify(in.wrap(t, d), sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func testPublicKeyRoundTrip(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()
	pub, err := key.PublicKey()
	require.NoError(t, err)
	defer pub.Free()

	compressed := exported(t, pub.ExportCompressed)
	uncompressed := exported(t, pub.ExportUncompressed)
	require.Len(t, compressed, secp256k1.CompressedPublicKeySize)
	require.Len(t, uncompressed, secp256k1.UncompressedPublicKeySize)

	for _, enc := range [][]byte{compressed, uncompressed} {
		imported, err := s.a.PublicKey.Import(in.wrap(t, enc))
		require.NoError(t, err)
		require.Equal(t, compressed, exported(t, imported.ExportCompressed))
		require.Equal(t, uncompressed, exported(t, imported.ExportUncompressed))
		imported.Free()
	}
}

func testSignRecoverVerify(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()
	pub, err := key.PublicKey()
	require.NoError(t, err)
	defer pub.Free()

	sig, err := key.Sign(in.wrap(t, digest(7)))
	require.NoError(t, err)
	defer sig.Free()

	raw := exported(t, sig.Export)
	require.Len(t, raw, secp256k1.SignatureAndRecoverySize)
	require.LessOrEqual(t, raw[64], byte(secp256k1.MaxRecoveryID))

	rec, err := s.a.PublicKey.Recover(in.wrap(t, digest(7)), sig)
	require.NoError(t, err)
	defer rec.Free()
	require.Equal(t, exported(t, pub.ExportCompressed), exported(t, rec.ExportCompressed))

	ok, err := pub.Verify(in.wrap(t, digest(7)), sig)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = pub.Verify(in.wrap(t, digest(8)), sig)
	require.NoError(t, err)
	require.False(t, ok)

	// Recovering over another digest yields some other key, or fails.
	other, err := s.a.PublicKey.Recover(in.wrap(t, digest(8)), sig)
	if err == nil {
		require.NotEqual(t, exported(t, pub.ExportCompressed), exported(t, other.ExportCompressed))
		other.Free()
	} else {
		requireKind(t, err, secp256k1.ErrRecover)
	}
}

func testSignatureRoundTrip(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Import(in.wrap(t, scalarOne()))
	require.NoError(t, err)
	defer key.Free()
	sig, err := key.Sign(in.wrap(t, digest(3)))
	require.NoError(t, err)
	defer sig.Free()

	raw := exported(t, sig.Export)
	imported, err := s.a.SignatureAndRecovery.Import(in.wrap(t, raw))
	require.NoError(t, err)
	defer imported.Free()
	require.Equal(t, raw, exported(t, imported.Export))

	rec, err := s.a.PublicKey.Recover(in.wrap(t, digest(3)), imported)
	require.NoError(t, err)
	defer rec.Free()
	require.Equal(t, GeneratorCompressed, hex.EncodeToString(exported(t, rec.ExportCompressed)))
}

func testLowS(t *testing.T, s *suite, in input) {
	halfOrder := new(big.Int).Rsh(btcec.S256().N, 1)

	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()

	for seed := byte(0); seed < 8; seed++ {
		sig, err := key.Sign(in.wrap(t, digest(seed)))
		require.NoError(t, err)
		raw := exported(t, sig.Export)
		sig.Free()
		sv := new(big.Int).SetBytes(raw[32:64])
		require.True(t, sv.Cmp(halfOrder) <= 0, "s above half order")
	}
}

func testRejectPrivateKeys(t *testing.T, s *suite, in input) {
	order := btcec.S256().N.Bytes()
	orderPlusOne := new(big.Int).Add(btcec.S256().N, big.NewInt(1)).Bytes()
	for name, raw := range map[string][]byte{
		"zero":      make([]byte, 32),
		"order":     order,
		"order+1":   orderPlusOne,
		"all-ones":  bytes.Repeat([]byte{0xff}, 32),
		"too-short": scalarOne()[1:],
		"too-long":  append([]byte{0}, scalarOne()...),
	} {
		t.Run(name, func(t *testing.T) {
			key, err := s.a.PrivateKey.Import(in.wrap(t, raw))
			require.Nil(t, key)
			requireKind(t, err, secp256k1.ErrImport)
		})
	}
}

func testRejectPublicKeys(t *testing.T, s *suite, in input) {
	g := mustHex(t, GeneratorUncompressed)
	offCurve := bytes.Clone(g)
	offCurve[64] ^= 1
	badPrefix := mustHex(t, GeneratorCompressed)
	badPrefix[0] = 0x05

	for name, raw := range map[string][]byte{
		"empty":      {},
		"truncated":  g[:64],
		"off-curve":  offCurve,
		"bad-prefix": badPrefix,
	} {
		t.Run(name, func(t *testing.T) {
			pub, err := s.a.PublicKey.Import(in.wrap(t, raw))
			require.Nil(t, pub)
			requireKind(t, err, secp256k1.ErrImport)
		})
	}
}

func testRejectSignatures(t *testing.T, s *suite, in input) {
	valid := make([]byte, secp256k1.SignatureAndRecoverySize)
	valid[31], valid[63] = 1, 1

	withID := func(id byte) []byte {
		b := bytes.Clone(valid)
		b[64] = id
		return b
	}
	zeroR := bytes.Clone(valid)
	zeroR[31] = 0
	zeroS := bytes.Clone(valid)
	zeroS[63] = 0
	bigR := bytes.Clone(valid)
	copy(bigR[:32], btcec.S256().N.Bytes())

	for name, raw := range map[string][]byte{
		"id-4":    withID(4),
		"id-255":  withID(255),
		"short":   valid[:64],
		"zero-r":  zeroR,
		"zero-s":  zeroS,
		"r-order": bigR,
	} {
		t.Run(name, func(t *testing.T) {
			sig, err := s.a.SignatureAndRecovery.Import(in.wrap(t, raw))
			require.Nil(t, sig)
			requireKind(t, err, secp256k1.ErrImport)
		})
	}

	for id := byte(0); id <= secp256k1.MaxRecoveryID; id++ {
		sig, err := s.a.SignatureAndRecovery.Import(in.wrap(t, withID(id)))
		require.NoError(t, err)
		require.Equal(t, id, exported(t, sig.Export)[64])
		sig.Free()
	}
}

func testRejectEmptyDigest(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()

	sig, err := key.Sign(in.wrap(t, nil))
	require.Nil(t, sig)
	requireKind(t, err, secp256k1.ErrSign)
	require.ErrorIs(t, err, secp256k1.ErrEmptyDigest)

	good, err := key.Sign(in.wrap(t, digest(1)))
	require.NoError(t, err)
	defer good.Free()

	pub, err := s.a.PublicKey.Recover(in.wrap(t, nil), good)
	require.Nil(t, pub)
	requireKind(t, err, secp256k1.ErrRecover)

	derived, err := key.PublicKey()
	require.NoError(t, err)
	defer derived.Free()
	_, err = derived.Verify(in.wrap(t, nil), good)
	requireKind(t, err, secp256k1.ErrVerify)
}

func testFreeIsIdempotent(t *testing.T, s *suite, _ input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	pub, err := key.PublicKey()
	require.NoError(t, err)
	sig, err := key.Sign(memory.Own(digest(2)))
	require.NoError(t, err)

	require.NotPanics(t, func() {
		for i := 0; i < 2; i++ {
			sig.Free()
			pub.Free()
			key.Free()
		}
	})
}

func testUseAfterFree(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	pub, err := key.PublicKey()
	require.NoError(t, err)
	sig, err := key.Sign(in.wrap(t, digest(4)))
	require.NoError(t, err)
	key.Free()
	pub.Free()

	_, err = key.Export()
	requireKind(t, err, secp256k1.ErrExport)
	require.ErrorIs(t, err, secp256k1.ErrFreed)

	_, err = key.PublicKey()
	requireKind(t, err, secp256k1.ErrConvert)

	_, err = key.Sign(in.wrap(t, digest(4)))
	requireKind(t, err, secp256k1.ErrSign)

	_, err = pub.ExportCompressed()
	requireKind(t, err, secp256k1.ErrExport)

	_, err = pub.Verify(in.wrap(t, digest(4)), sig)
	requireKind(t, err, secp256k1.ErrVerify)

	sig.Free()
	_, err = sig.Export()
	requireKind(t, err, secp256k1.ErrExport)
	require.ErrorIs(t, err, secp256k1.ErrFreed)

	_, err = s.a.PublicKey.Recover(in.wrap(t, digest(4)), sig)
	requireKind(t, err, secp256k1.ErrRecover)
}

func testMovedInputIsFreed(t *testing.T, s *suite, in input) {
	c := in.wrap(t, scalarOne())
	key, err := s.a.PrivateKey.Import(memory.Move(c))
	require.NoError(t, err)
	defer key.Free()
	require.True(t, c.Freed())

	bad := in.wrap(t, make([]byte, 32))
	_, err = s.a.PrivateKey.Import(memory.Move(bad))
	requireKind(t, err, secp256k1.ErrImport)
	require.True(t, bad.Freed())

	kept := in.wrap(t, scalarOne())
	again, err := s.a.PrivateKey.Import(kept)
	require.NoError(t, err)
	defer again.Free()
	require.False(t, kept.Freed())
	kept.Free()
}

func testFreedInput(t *testing.T, s *suite, in input) {
	c := in.wrap(t, scalarOne())
	c.Free()
	_, err := s.a.PrivateKey.Import(c)
	requireKind(t, err, secp256k1.ErrImport)
	require.ErrorIs(t, err, memory.ErrFreed)
}

// brokenSignature is a signature from some other engine whose export fails.
type brokenSignature struct{}

func (brokenSignature) Export() (memory.Copiable, error) {
	return nil, secp256k1.Wrap(secp256k1.KindExport, secp256k1.ErrFreed)
}

func (brokenSignature) Free() {}

func testBrokenForeignSignature(t *testing.T, s *suite, in input) {
	key, err := s.a.PrivateKey.Random()
	require.NoError(t, err)
	defer key.Free()
	pub, err := key.PublicKey()
	require.NoError(t, err)
	defer pub.Free()

	rec, err := s.a.PublicKey.Recover(in.wrap(t, digest(5)), brokenSignature{})
	require.Nil(t, rec)
	requireKind(t, err, secp256k1.ErrRecover)
	require.ErrorIs(t, err, secp256k1.ErrForeignHandle)
	require.ErrorIs(t, err, secp256k1.ErrFreed)
	require.NotErrorIs(t, err, secp256k1.ErrExport)

	_, err = pub.Verify(in.wrap(t, digest(5)), brokenSignature{})
	requireKind(t, err, secp256k1.ErrVerify)
	require.ErrorIs(t, err, secp256k1.ErrForeignHandle)
	require.ErrorIs(t, err, secp256k1.ErrFreed)
	require.NotErrorIs(t, err, secp256k1.ErrExport)

	kind, ok := secp256k1.KindOf(err)
	require.True(t, ok)
	require.Equal(t, secp256k1.KindVerify, kind)
}
