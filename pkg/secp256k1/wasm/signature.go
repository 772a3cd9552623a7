package wasm

import (
	"errors"
	"runtime"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

type signatureFactory struct {
	m *Module
}

func (f signatureFactory) Import(c memory.Copiable) (secp256k1.SignatureAndRecovery, error) {
	ptr, err := f.m.importSignature(c)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	return newSignature(f.m, ptr), nil
}

func (m *Module) importSignature(c memory.Copiable) (uint32, error) {
	in, release, err := m.input(c)
	defer release()
	if err != nil {
		return 0, err
	}
	if _, _, _, err := secp256k1.SplitSignature(m.view(in)); err != nil {
		return 0, err
	}
	return m.create(hostmod.ExportSigFrom, in.ptr, in.n)
}

type signature struct {
	handle
}

func newSignature(m *Module, ptr uint32) *signature {
	s := &signature{handle{m: m, ptr: ptr, freeFn: hostmod.ExportSigFree}}
	runtime.SetFinalizer(s, (*signature).Free)
	return s
}

func (s *signature) Export() (memory.Copiable, error) {
	h, err := s.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	out, err := s.m.output(secp256k1.SignatureAndRecoverySize, func(out uint32) (uint32, error) {
		if err := s.m.check(hostmod.ExportSigTo, h, out); err != nil {
			return 0, err
		}
		return secp256k1.SignatureAndRecoverySize, nil
	})
	runtime.KeepAlive(s)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	return out, nil
}

func (s *signature) Free() {
	if s != nil && s.release() {
		runtime.SetFinalizer(s, nil)
	}
}

// nativeSignature returns the engine offset of sig. Signatures from another
// adapter or Module are imported through their exported bytes. done must be
// called once the engine no longer uses the offset: it frees the temporary
// copy, or keeps a native sig reachable until then.
func (m *Module) nativeSignature(sig secp256k1.SignatureAndRecovery) (uint32, func(), error) {
	noop := func() {}
	if sig == nil {
		return 0, noop, errors.New("wasm: nil signature")
	}
	if s, ok := sig.(*signature); ok && s.m == m {
		h, err := s.live()
		if err != nil {
			return 0, noop, err
		}
		return h, func() { runtime.KeepAlive(s) }, nil
	}

	exported, err := sig.Export()
	if err != nil {
		return 0, noop, errors.Join(secp256k1.ErrForeignHandle, err)
	}
	ptr, err := m.importSignature(memory.Move(exported))
	if err != nil {
		return 0, noop, errors.Join(secp256k1.ErrForeignHandle, err)
	}
	tmp := &handle{m: m, ptr: ptr, freeFn: hostmod.ExportSigFree}
	return ptr, func() { tmp.release() }, nil
}
