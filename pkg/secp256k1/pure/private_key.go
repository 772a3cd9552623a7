package pure

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

type privateKeyFactory struct{}

func (privateKeyFactory) Random() (secp256k1.PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindGenerate, err)
	}
	return &privateKey{key: key}, nil
}

func (privateKeyFactory) Import(c memory.Copiable) (secp256k1.PrivateKey, error) {
	b, release, err := input(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	if len(b) != secp256k1.PrivateKeySize {
		return nil, secp256k1.Wrap(secp256k1.KindImport,
			secp256k1.LengthError("private key", len(b), secp256k1.PrivateKeySize))
	}

	s, err := scalar(b, "private key")
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	key := &btcec.PrivateKey{Key: s}
	s.Zero()
	return &privateKey{key: key}, nil
}

type privateKey struct {
	key *btcec.PrivateKey
}

func (k *privateKey) live() (*btcec.PrivateKey, error) {
	if k == nil || k.key == nil {
		return nil, secp256k1.ErrFreed
	}
	return k.key, nil
}

func (k *privateKey) PublicKey() (secp256k1.PublicKey, error) {
	key, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindConvert, err)
	}
	pub := key.PubKey()
	if pub == nil {
		return nil, secp256k1.Wrap(secp256k1.KindConvert, errors.New("pure: derived point at infinity"))
	}
	return &publicKey{key: pub}, nil
}

func (k *privateKey) Sign(c memory.Copiable) (secp256k1.SignatureAndRecovery, error) {
	key, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindSign, err)
	}
	hash, release, err := digest(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindSign, err)
	}

	// <27 + 4 + id><r><s>; the compressed flag only shifts the header.
	compact := ecdsa.SignCompact(key, hash, true)
	sig, err := fromCompact(compact)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindSign, err)
	}
	return sig, nil
}

func (k *privateKey) Export() (memory.Copiable, error) {
	key, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	return memory.Own(key.Serialize()), nil
}

// Free zeroizes the scalar.
func (k *privateKey) Free() {
	if k == nil || k.key == nil {
		return
	}
	k.key.Zero()
	k.key = nil
}
