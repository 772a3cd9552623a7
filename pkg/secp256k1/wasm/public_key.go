package wasm

import (
	"runtime"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

type publicKeyFactory struct {
	m *Module
}

func (f publicKeyFactory) Import(c memory.Copiable) (secp256k1.PublicKey, error) {
	in, release, err := f.m.input(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	if in.n != secp256k1.CompressedPublicKeySize && in.n != secp256k1.UncompressedPublicKeySize {
		return nil, secp256k1.Wrap(secp256k1.KindImport, secp256k1.LengthError("public key", int(in.n),
			secp256k1.CompressedPublicKeySize, secp256k1.UncompressedPublicKeySize))
	}

	ptr, err := f.m.create(hostmod.ExportPubFrom, in.ptr, in.n)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindImport, err)
	}
	return newPublicKey(f.m, ptr), nil
}

func (f publicKeyFactory) Recover(c memory.Copiable, sig secp256k1.SignatureAndRecovery) (secp256k1.PublicKey, error) {
	d, release, err := f.m.digest(c)
	defer release()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindRecover, err)
	}
	s, done, err := f.m.nativeSignature(sig)
	defer done()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindRecover, err)
	}

	ptr, err := f.m.create(hostmod.ExportPubRecover, d.ptr, d.n, s)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindRecover, err)
	}
	return newPublicKey(f.m, ptr), nil
}

type publicKey struct {
	handle
}

func newPublicKey(m *Module, ptr uint32) *publicKey {
	k := &publicKey{handle{m: m, ptr: ptr, freeFn: hostmod.ExportPubFree}}
	runtime.SetFinalizer(k, (*publicKey).Free)
	return k
}

func (k *publicKey) export(size uint32, compressed uint32) (memory.Copiable, error) {
	h, err := k.live()
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	out, err := k.m.output(size, func(out uint32) (uint32, error) {
		n, err := k.m.invoke(hostmod.ExportPubTo, h, out, compressed)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, k.m.lastError(hostmod.ExportPubTo)
		}
		return n, nil
	})
	runtime.KeepAlive(k)
	if err != nil {
		return nil, secp256k1.Wrap(secp256k1.KindExport, err)
	}
	return out, nil
}

func (k *publicKey) ExportCompressed() (memory.Copiable, error) {
	return k.export(secp256k1.CompressedPublicKeySize, 1)
}

func (k *publicKey) ExportUncompressed() (memory.Copiable, error) {
	return k.export(secp256k1.UncompressedPublicKeySize, 0)
}

func (k *publicKey) Verify(c memory.Copiable, sig secp256k1.SignatureAndRecovery) (bool, error) {
	h, err := k.live()
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}
	d, release, err := k.m.digest(c)
	defer release()
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}
	s, done, err := k.m.nativeSignature(sig)
	defer done()
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}

	res, err := k.m.invoke(hostmod.ExportPubVerify, h, d.ptr, d.n, s)
	runtime.KeepAlive(k)
	if err != nil {
		return false, secp256k1.Wrap(secp256k1.KindVerify, err)
	}
	switch res {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, secp256k1.Wrap(secp256k1.KindVerify, k.m.lastError(hostmod.ExportPubVerify))
	}
}

func (k *publicKey) Free() {
	if k != nil && k.release() {
		runtime.SetFinalizer(k, nil)
	}
}
