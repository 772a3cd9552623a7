package pure

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

type publicKeyFactory struct{}

func (publicKeyFactory) Import(c memory.Copiable) (secp256k1.PublicKey, error) {
	b, release, err := input(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	if len(b) != secp256k1.CompressedPublicKeySize && len(b) != secp256k1.UncompressedPublicKeySize {
		return nil, secp256k1.Wrap(secp256k1.KindImport, secp256k1.LengthError("public key", len(b),
			secp256k1.CompressedPublicKeySize, secp256k1.UncompressedPublicKeySize))
	}

	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	return &publicKey{key: pub}, nil
}

func (publicKeyFactory) Recover(c memory.Copiable, sig secp256k1.SignatureAndRecovery) (secp256k1.PublicKey, error) {
	hash, release, err := digest(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindRecover, err)
	}
	s, done, err := nativeSignature(sig)
	defer done()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindRecover, err)
	}

	pub, _, err := ecdsa.RecoverCompact(s.compact(), hash)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindRecover, err)
	}
	return &publicKey{key: pub}, nil
}

type publicKey struct {
	key *btcec.PublicKey
}

func (k *publicKey) live() (*btcec.PublicKey, error) {
	if k == nil || k.key == nil {
		return nil, secp256k1.ErrFreed
	}
	return k.key, nil
}

func (k *publicKey) ExportCompressed() (memory.Copiable, error) {
	pub, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	return memory.Own(pub.SerializeCompressed()), nil
}

func (k *publicKey) ExportUncompressed() (memory.Copiable, error) {
	pub, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	return memory.Own(pub.SerializeUncompressed()), nil
}

func (k *publicKey) Verify(c memory.Copiable, sig secp256k1.SignatureAndRecovery) (bool, error) {
	pub, err := k.live()
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}
	hash, release, err := digest(c)
	defer release()
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}
	s, done, err := nativeSignature(sig)
	defer done()
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}

	return ecdsa.NewSignature(&s.r, &s.s).Verify(hash, pub), nil
}

func (k *publicKey) Free() {
	if k == nil {
		return
	}
	k.key = nil
}
