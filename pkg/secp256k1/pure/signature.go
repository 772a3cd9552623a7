package pure

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

const (
	compactSize       = 65
	compactMagic      = 27
	compactCompressed = 4
)

type signatureFactory struct{}

func (signatureFactory) Import(c memory.Copiable) (secp256k1.SignatureAndRecovery, error) {
	b, release, err := input(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	sig, err := parseSignature(b)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	return sig, nil
}

type signature struct {
	r, s  btcec.ModNScalar
	id    byte
	freed bool
}

func parseSignature(b []byte) (*signature, error) {
	rb, sb, id, err := secp256k1.SplitSignature(b)
	if err != nil {
		return nil, err
	}
	r, err := scalar(rb, "signature r")
	if err != nil {
		return nil, err
	}
	s, err := scalar(sb, "signature s")
	if err != nil {
		return nil, err
	}
	return &signature{r: r, s: s, id: id}, nil
}

// fromCompact converts <header><r><s> as produced by ecdsa.SignCompact.
func fromCompact(compact []byte) (*signature, error) {
	if len(compact) != compactSize {
		return nil, errors.New("pure: unexpected compact signature size")
	}
	id := (compact[0] - compactMagic) & 3
	out := make([]byte, secp256k1.SignatureAndRecoverySize)
	copy(out, compact[1:])
	out[64] = id
	return parseSignature(out)
}

func (s *signature) compact() []byte {
	out := make([]byte, compactSize)
	out[0] = compactMagic + compactCompressed + s.id
	r := s.r.Bytes()
	sv := s.s.Bytes()
	copy(out[1:33], r[:])
	copy(out[33:], sv[:])
	return out
}

func (s *signature) Export() (memory.Copiable, error) {
	if s == nil || s.freed {
		return nil, secp256k1.Wrap(secp256k1.KindExport, secp256k1.ErrFreed)
	}
	out := make([]byte, secp256k1.SignatureAndRecoverySize)
	r := s.r.Bytes()
	sv := s.s.Bytes()
	copy(out[:32], r[:])
	copy(out[32:64], sv[:])
	out[64] = s.id
	return memory.Own(out), nil
}

func (s *signature) Free() {
	if s == nil || s.freed {
		return
	}
	s.r.Zero()
	s.s.Zero()
	s.freed = true
}

// nativeSignature returns sig as a pure signature. Signatures from other
// adapters are converted through their exported bytes; done releases the
// converted copy and must always be called.
func nativeSignature(sig secp256k1.SignatureAndRecovery) (*signature, func(), error) {
	noop := func() {}
	if sig == nil {
		return nil, noop, errors.New("pure: nil signature")
	}
	if s, ok := sig.(*signature); ok {
		if s.freed {
			return nil, noop, secp256k1.ErrFreed
		}
		return s, noop, nil
	}

	exported, err := sig.Export()
	if err != nil {
		return nil, noop, errors.Join(secp256k1.ErrForeignHandle, err)
	}
	defer exported.Free()

	s, err := parseSignature(exported.Bytes())
	if err != nil {
		return nil, noop, errors.Join(secp256k1.ErrForeignHandle, err)
	}
	return s, s.Free, nil
}
