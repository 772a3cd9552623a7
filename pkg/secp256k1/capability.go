package secp256k1

import (
	"fmt"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

// Byte lengths shared by every adapter.
const (
	PrivateKeySize            = 32
	CompressedPublicKeySize   = 33
	UncompressedPublicKeySize = 65
	SignatureAndRecoverySize  = 65
	MaxRecoveryID             = 3
	recoveryIDOffset          = 64
	signatureComponentSize    = 32
)

// PrivateKey is a validated secp256k1 scalar held in an engine's own
// representation.
type PrivateKey interface {
	// PublicKey derives the matching public key.
	PublicKey() (PublicKey, error)

	// Sign produces a low-s recoverable signature over a pre-hashed digest.
	// The digest is never hashed again.
	Sign(digest memory.Copiable) (SignatureAndRecovery, error)

	// Export returns the 32-byte big-endian scalar.
	Export() (memory.Copiable, error)

	// Free releases the key. Later calls are no-ops.
	Free()
}

// PublicKey is a point on the curve.
type PublicKey interface {
	// ExportCompressed returns the 33-byte SEC1 encoding.
	ExportCompressed() (memory.Copiable, error)

	// ExportUncompressed returns the 65-byte SEC1 encoding.
	ExportUncompressed() (memory.Copiable, error)

	// Verify checks sig over a pre-hashed digest. An invalid signature is
	// reported as false with a nil error.
	Verify(digest memory.Copiable, sig SignatureAndRecovery) (bool, error)

	Free()
}

// SignatureAndRecovery is an ECDSA (r, s) pair with a recovery id in [0, 3].
type SignatureAndRecovery interface {
	// Export returns r || s || id (65 bytes).
	Export() (memory.Copiable, error)

	Free()
}

// PrivateKeyFactory creates private keys.
type PrivateKeyFactory interface {
	// Random generates a key from a cryptographically secure source.
	Random() (PrivateKey, error)

	// Import validates and copies a 32-byte scalar. b is not retained unless
	// it was moved in with memory.Move.
	Import(b memory.Copiable) (PrivateKey, error)
}

// PublicKeyFactory creates public keys.
type PublicKeyFactory interface {
	// Import parses a 33- or 65-byte SEC1 point.
	Import(b memory.Copiable) (PublicKey, error)

	// Recover returns the key that produced sig over digest.
	Recover(digest memory.Copiable, sig SignatureAndRecovery) (PublicKey, error)
}

// SignatureAndRecoveryFactory creates signatures from their byte form.
type SignatureAndRecoveryFactory interface {
	// Import parses r || s || id (65 bytes).
	Import(b memory.Copiable) (SignatureAndRecovery, error)
}

// Adapter groups the factories of one engine.
type Adapter struct {
	Name                 string
	PrivateKey           PrivateKeyFactory
	PublicKey            PublicKeyFactory
	SignatureAndRecovery SignatureAndRecoveryFactory
}

// String returns the adapter name.
func (a *Adapter) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.Name
}

// SplitSignature checks the length and recovery id of a serialized
// signature and returns its components as views into b. Range checks on r
// and s are left to the engine.
func SplitSignature(b []byte) (r, s []byte, id byte, err error) {
	if len(b) != SignatureAndRecoverySize {
		return nil, nil, 0, LengthError("signature", len(b), SignatureAndRecoverySize)
	}
	id = b[recoveryIDOffset]
	if id > MaxRecoveryID {
		return nil, nil, 0, fmt.Errorf("%w: %d", ErrInvalidRecoveryID, id)
	}
	return b[:signatureComponentSize], b[signatureComponentSize:recoveryIDOffset], id, nil
}
