package wasm

import (
	"runtime"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

type privateKeyFactory struct {
	m *Module
}

func (f privateKeyFactory) Random() (secp256k1.PrivateKey, error) {
	ptr, err := f.m.create(hostmod.ExportKeyRandom)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindGenerate, err)
	}
	return newPrivateKey(f.m, ptr), nil
}

func (f privateKeyFactory) Import(c memory.Copiable) (secp256k1.PrivateKey, error) {
	in, release, err := f.m.input(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	if in.n != secp256k1.PrivateKeySize {
		return nil, secp256k1.Wrap(secp256k1.KindImport,
			secp256k1.LengthError("private key", int(in.n), secp256k1.PrivateKeySize))
	}

	ptr, err := f.m.create(hostmod.ExportKeyFrom, in.ptr, in.n)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	return newPrivateKey(f.m, ptr), nil
}

type privateKey struct {
	handle
}

func newPrivateKey(m *Module, ptr uint32) *privateKey {
	k := &privateKey{handle{m: m, ptr: ptr, freeFn: hostmod.ExportKeyFree}}
	runtime.SetFinalizer(k, (*privateKey).Free)
	return k
}

func (k *privateKey) PublicKey() (secp256k1.PublicKey, error) {
	h, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindConvert, err)
	}
	ptr, err := k.m.create(hostmod.ExportKeyVerifier, h)
	runtime.KeepAlive(k)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindConvert, err)
	}
	return newPublicKey(k.m, ptr), nil
}

func (k *privateKey) Sign(c memory.Copiable) (secp256k1.SignatureAndRecovery, error) {
	h, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindSign, err)
	}
	d, release, err := k.m.digest(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindSign, err)
	}

	ptr, err := k.m.create(hostmod.ExportKeySign, h, d.ptr, d.n)
	runtime.KeepAlive(k)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindSign, err)
	}
	return newSignature(k.m, ptr), nil
}

func (k *privateKey) Export() (memory.Copiable, error) {
	h, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	out, err := k.m.output(secp256k1.PrivateKeySize, func(out uint32) (uint32, error) {
		if err := k.m.check(hostmod.ExportKeyTo, h, out); err != nil {
			return 0, err
		}
		return secp256k1.PrivateKeySize, nil
	})
	runtime.KeepAlive(k)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	return out, nil
}

// Free releases the engine object, which zeroizes the scalar.
func (k *privateKey) Free() {
	if k != nil && k.release() {
		runtime.SetFinalizer(k, nil)
	}
}
