package secp256k1_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
)

func TestErrorKinds(t *testing.T) {
	kinds := map[secp256k1.Kind]string{
		secp256k1.KindGenerate: "could not generate",
		secp256k1.KindImport:   "could not import",
		secp256k1.KindExport:   "could not export",
		secp256k1.KindConvert:  "could not convert",
		secp256k1.KindSign:     "could not sign",
		secp256k1.KindVerify:   "could not verify",
		secp256k1.KindRecover:  "could not recover",
	}
	for k, msg := range kinds {
		require.Equal(t, msg, k.String())
		require.Contains(t, k.Name(), "Error")
	}
	require.Equal(t, "unknown error", secp256k1.Kind(0).String())
}

func TestWrapClassifiesOnce(t *testing.T) {
	cause := errors.New("boom")
	err := secp256k1.Wrap(secp256k1.KindImport, cause)
	require.ErrorIs(t, err, secp256k1.ErrImport)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, secp256k1.ErrExport)
	require.Equal(t, "secp256k1: could not import: boom", err.Error())

	retagged := secp256k1.Wrap(secp256k1.KindRecover, err)
	require.ErrorIs(t, retagged, secp256k1.ErrRecover)
	require.NotErrorIs(t, retagged, secp256k1.ErrImport)
	require.ErrorIs(t, retagged, cause)

	require.Same(t, err, secp256k1.Wrap(secp256k1.KindImport, err))
	require.NoError(t, secp256k1.Wrap(secp256k1.KindSign, nil))
}

func TestWrapKeepsJoinedCauses(t *testing.T) {
	inner := secp256k1.Wrap(secp256k1.KindExport, secp256k1.ErrFreed)
	err := secp256k1.Wrap(secp256k1.KindVerify, errors.Join(secp256k1.ErrForeignHandle, inner))

	kind, ok := secp256k1.KindOf(err)
	require.True(t, ok)
	require.Equal(t, secp256k1.KindVerify, kind)
	require.ErrorIs(t, err, secp256k1.ErrVerify)
	require.ErrorIs(t, err, secp256k1.ErrForeignHandle)
	require.ErrorIs(t, err, secp256k1.ErrFreed)
	require.NotErrorIs(t, err, secp256k1.ErrExport)
	require.Contains(t, err.Error(), "handle already freed")

	var tagged *secp256k1.Error
	require.ErrorAs(t, err, &tagged)
	require.Equal(t, secp256k1.KindVerify, tagged.Kind)
}

func TestWrapUntagsNestedJoins(t *testing.T) {
	cause := errors.New("bad bytes")
	inner := fmt.Errorf("convert: %w, %w",
		secp256k1.Wrap(secp256k1.KindImport, cause),
		errors.Join(secp256k1.ErrInvalidLength, secp256k1.Wrap(secp256k1.KindConvert, secp256k1.ErrEmptyDigest)))
	err := secp256k1.Wrap(secp256k1.KindRecover, inner)

	require.ErrorIs(t, err, secp256k1.ErrRecover)
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, secp256k1.ErrInvalidLength)
	require.ErrorIs(t, err, secp256k1.ErrEmptyDigest)
	for _, other := range []error{secp256k1.ErrImport, secp256k1.ErrConvert, secp256k1.ErrExport} {
		require.NotErrorIs(t, err, other)
	}
	require.Equal(t, "secp256k1: could not recover: "+inner.Error(), err.Error())

	plain := errors.Join(cause, secp256k1.ErrFreed)
	var e *secp256k1.Error
	require.ErrorAs(t, secp256k1.Wrap(secp256k1.KindSign, plain), &e)
	require.Same(t, plain, e.Err)
}

func TestKindOf(t *testing.T) {
	_, ok := secp256k1.KindOf(errors.New("plain"))
	require.False(t, ok)

	wrapped := fmt.Errorf("context: %w", secp256k1.Wrap(secp256k1.KindSign, secp256k1.ErrEmptyDigest))
	kind, ok := secp256k1.KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, secp256k1.KindSign, kind)
}

func TestSplitSignature(t *testing.T) {
	b := make([]byte, secp256k1.SignatureAndRecoverySize)
	b[0], b[32], b[64] = 1, 2, 3
	r, s, id, err := secp256k1.SplitSignature(b)
	require.NoError(t, err)
	require.Len(t, r, 32)
	require.Len(t, s, 32)
	require.Equal(t, byte(1), r[0])
	require.Equal(t, byte(2), s[0])
	require.Equal(t, byte(3), id)

	b[64] = 4
	_, _, _, err = secp256k1.SplitSignature(b)
	require.ErrorIs(t, err, secp256k1.ErrInvalidRecoveryID)

	_, _, _, err = secp256k1.SplitSignature(b[:64])
	require.ErrorIs(t, err, secp256k1.ErrInvalidLength)
}
