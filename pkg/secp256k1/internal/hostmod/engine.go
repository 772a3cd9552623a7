package hostmod

import (
	"context"
	"io"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/tetratelabs/wazero/api"
)

type objectKind uint8

const (
	objectKey objectKind = iota + 1
	objectPoint
	objectSignature
)

func (k objectKind) size() uint32 {
	switch k {
	case objectKey:
		return KeySize
	case objectPoint:
		return PointSize
	case objectSignature:
		return SignatureSize
	default:
		return 0
	}
}

// engine implements the exported functions. Each export runs under mu, so
// the allocator stays consistent even if callers misuse the module from
// several goroutines.
type engine struct {
	mu      sync.Mutex
	mem     api.Memory
	heap    *heap
	objects map[uint32]objectKind
	lastErr uint32
	rand    io.Reader
}

func newEngine(rand io.Reader) *engine {
	return &engine{
		objects: make(map[uint32]objectKind),
		rand:    rand,
	}
}

// attach binds the engine to the guest's memory. The host functions are only
// reachable through the guest, so no export runs before attach.
func (e *engine) attach(mem api.Memory, maxPages uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mem = mem
	e.heap = newHeap(mem, maxPages)
}

func (e *engine) fail(code uint32) uint32 {
	e.lastErr = code
	return 0
}

// read copies n bytes out of linear memory. Host code never keeps views,
// since alloc may grow (and move) the memory.
func (e *engine) read(ptr, n uint32) ([]byte, bool) {
	if ptr == 0 {
		return nil, false
	}
	view, ok := e.mem.Read(ptr, n)
	if !ok {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, view)
	return out, true
}

// writeTo writes b into the live allocation at out after checking that it
// fits.
func (e *engine) writeTo(out uint32, b []byte) bool {
	size, ok := e.heap.sizeOf(out)
	if !ok || size < uint32(len(b)) {
		return false
	}
	return e.mem.Write(out, b)
}

func (e *engine) newObject(kind objectKind, data []byte) uint32 {
	ptr, ok := e.heap.alloc(kind.size())
	if !ok {
		return e.fail(StatusMemory)
	}
	if !e.mem.Write(ptr, data) {
		e.heap.release(ptr)
		return e.fail(StatusMemory)
	}
	e.objects[ptr] = kind
	return ptr
}

func (e *engine) object(h uint32, kind objectKind) ([]byte, bool) {
	if e.objects[h] != kind {
		return nil, false
	}
	return e.read(h, kind.size())
}

func (e *engine) freeObject(h uint32, kind objectKind) {
	if e.objects[h] != kind {
		e.lastErr = StatusParam
		return
	}
	delete(e.objects, h)
	e.heap.release(h)
}

func (e *engine) privateKey(h uint32) (*secp256k1.PrivateKey, bool) {
	b, ok := e.object(h, objectKey)
	if !ok {
		return nil, false
	}
	defer clear(b)
	return secp256k1.PrivKeyFromBytes(b), true
}

func (e *engine) publicKey(h uint32) (*secp256k1.PublicKey, bool) {
	b, ok := e.object(h, objectPoint)
	if !ok {
		return nil, false
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, false
	}
	return pub, true
}

// signature returns the compact <header><r><s> form used by dcrd.
func (e *engine) signature(h uint32) ([]byte, *ecdsa.Signature, bool) {
	b, ok := e.object(h, objectSignature)
	if !ok {
		return nil, nil, false
	}
	r, s, ok := parseRS(b)
	if !ok {
		return nil, nil, false
	}
	compact := make([]byte, SignatureSize)
	compact[0] = 27 + 4 + b[64]
	copy(compact[1:], b[:64])
	return compact, ecdsa.NewSignature(&r, &s), true
}

func parseRS(b []byte) (r, s secp256k1.ModNScalar, ok bool) {
	if len(b) != SignatureSize || b[64] > 3 {
		return r, s, false
	}
	if r.SetByteSlice(b[:32]) || r.IsZero() {
		return r, s, false
	}
	if s.SetByteSlice(b[32:64]) || s.IsZero() {
		return r, s, false
	}
	return r, s, true
}

func (e *engine) digest(ptr, n uint32) ([]byte, bool) {
	if n == 0 {
		return nil, false
	}
	return e.read(ptr, n)
}

// Exported functions.

func (e *engine) alloc(_ context.Context, size uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ptr, ok := e.heap.alloc(size)
	if !ok {
		return e.fail(StatusMemory)
	}
	return ptr
}

func (e *engine) free(_ context.Context, ptr uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.objects, ptr)
	if !e.heap.release(ptr) {
		e.lastErr = StatusParam
	}
}

func (e *engine) allocated(_ context.Context) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heap.live()
}

func (e *engine) lastError(_ context.Context) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *engine) keyRandom(_ context.Context) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var buf [KeySize]byte
	defer clear(buf[:])
	for i := 0; i < randomKeyRetries; i++ {
		if _, err := io.ReadFull(e.rand, buf[:]); err != nil {
			return e.fail(StatusEntropy)
		}
		var s secp256k1.ModNScalar
		overflow := s.SetBytes(&buf)
		valid := overflow == 0 && !s.IsZero()
		s.Zero()
		if valid {
			return e.newObject(objectKey, buf[:])
		}
	}
	return e.fail(StatusEntropy)
}

func (e *engine) keyFromBytes(_ context.Context, ptr, n uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n != KeySize {
		return e.fail(StatusParam)
	}
	b, ok := e.read(ptr, n)
	if !ok {
		return e.fail(StatusParam)
	}
	defer clear(b)

	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(b)
	valid := !overflow && !s.IsZero()
	s.Zero()
	if !valid {
		return e.fail(StatusInvalidKey)
	}
	return e.newObject(objectKey, b)
}

func (e *engine) keyToBytes(_ context.Context, h, out uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.object(h, objectKey)
	if !ok {
		e.lastErr = StatusParam
		return StatusParam
	}
	defer clear(b)
	if !e.writeTo(out, b) {
		e.lastErr = StatusMemory
		return StatusMemory
	}
	return StatusOK
}

func (e *engine) keyVerifyingKey(_ context.Context, h uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	priv, ok := e.privateKey(h)
	if !ok {
		return e.fail(StatusParam)
	}
	defer priv.Zero()
	return e.newObject(objectPoint, priv.PubKey().SerializeUncompressed())
}

func (e *engine) keySign(_ context.Context, h, ptr, n uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	priv, ok := e.privateKey(h)
	if !ok {
		return e.fail(StatusParam)
	}
	defer priv.Zero()
	hash, ok := e.digest(ptr, n)
	if !ok {
		return e.fail(StatusParam)
	}

	compact := ecdsa.SignCompact(priv, hash, true)
	out := make([]byte, SignatureSize)
	copy(out, compact[1:])
	out[64] = (compact[0] - 27) & 3
	return e.newObject(objectSignature, out)
}

func (e *engine) keyFree(_ context.Context, h uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.freeObject(h, objectKey)
}

func (e *engine) pubFromSEC1(_ context.Context, ptr, n uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n != CompressedSize && n != PointSize {
		return e.fail(StatusParam)
	}
	b, ok := e.read(ptr, n)
	if !ok {
		return e.fail(StatusParam)
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return e.fail(StatusInvalidPoint)
	}
	return e.newObject(objectPoint, pub.SerializeUncompressed())
}

func (e *engine) pubRecover(_ context.Context, ptr, n, sig uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	hash, ok := e.digest(ptr, n)
	if !ok {
		return e.fail(StatusParam)
	}
	compact, _, ok := e.signature(sig)
	if !ok {
		return e.fail(StatusInvalidSignature)
	}
	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return e.fail(StatusRecoveryFailed)
	}
	return e.newObject(objectPoint, pub.SerializeUncompressed())
}

func (e *engine) pubToSEC1(_ context.Context, h, out, compressed uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	pub, ok := e.publicKey(h)
	if !ok {
		return e.fail(StatusParam)
	}
	var b []byte
	if compressed != 0 {
		b = pub.SerializeCompressed()
	} else {
		b = pub.SerializeUncompressed()
	}
	if !e.writeTo(out, b) {
		return e.fail(StatusMemory)
	}
	return uint32(len(b))
}

func (e *engine) pubVerify(_ context.Context, h, ptr, n, sig uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	pub, ok := e.publicKey(h)
	if !ok {
		e.lastErr = StatusParam
		return VerifyFailed
	}
	hash, ok := e.digest(ptr, n)
	if !ok {
		e.lastErr = StatusParam
		return VerifyFailed
	}
	_, parsed, ok := e.signature(sig)
	if !ok {
		e.lastErr = StatusInvalidSignature
		return VerifyFailed
	}
	if parsed.Verify(hash, pub) {
		return 1
	}
	return 0
}

func (e *engine) pubFree(_ context.Context, h uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.freeObject(h, objectPoint)
}

func (e *engine) sigFromBytes(_ context.Context, ptr, n uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n != SignatureSize {
		return e.fail(StatusParam)
	}
	b, ok := e.read(ptr, n)
	if !ok {
		return e.fail(StatusParam)
	}
	if _, _, ok := parseRS(b); !ok {
		return e.fail(StatusInvalidSignature)
	}
	return e.newObject(objectSignature, b)
}

func (e *engine) sigToBytes(_ context.Context, h, out uint32) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.object(h, objectSignature)
	if !ok {
		e.lastErr = StatusParam
		return StatusParam
	}
	if !e.writeTo(out, b) {
		e.lastErr = StatusMemory
		return StatusMemory
	}
	return StatusOK
}

func (e *engine) sigFree(_ context.Context, h uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.freeObject(h, objectSignature)
}
