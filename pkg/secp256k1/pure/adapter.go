package pure

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

// Name is the adapter name reported by New.
const Name = "pure"

// New returns the pure adapter. The adapter is stateless and safe to share.
func New() *secp256k1.Adapter {
	return &secp256k1.Adapter{
		Name:                 Name,
		PrivateKey:           privateKeyFactory{},
		PublicKey:            publicKeyFactory{},
		SignatureAndRecovery: signatureFactory{},
	}
}

// input resolves a possibly moved capsule into its bytes. The returned
// release func frees the capsule when it was moved in and must always be
// called.
func input(c memory.Copiable) ([]byte, func(), error) {
	inner, owned := memory.Take(c)
	release := func() {}
	if owned {
		release = inner.Free
	}
	b, err := memory.View(inner)
	if err != nil {
		release()
		return nil, func() {}, err
	}
	return b, release, nil
}

// digest resolves a digest capsule and rejects empty digests.
func digest(c memory.Copiable) ([]byte, func(), error) {
	b, release, err := input(c)
	if err != nil {
		return nil, release, err
	}
	if len(b) == 0 {
		release()
		return nil, func() {}, secp256k1.ErrEmptyDigest
	}
	return b, release, nil
}

// scalar parses a big-endian value in [1, N-1].
func scalar(b []byte, what string) (btcec.ModNScalar, error) {
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		s.Zero()
		return s, &rangeError{what: what, reason: "is >= curve order"}
	}
	if s.IsZero() {
		return s, &rangeError{what: what, reason: "is zero"}
	}
	return s, nil
}

type rangeError struct {
	what   string
	reason string
}

func (e *rangeError) Error() string {
	return "pure: " + e.what + " " + e.reason
}
