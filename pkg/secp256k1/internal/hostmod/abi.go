package hostmod

// Module names inside the runtime.
const (
	ModuleName       = "secp256k1"
	GuestModuleName  = "secp256k1_engine"
	MemoryExportName = "memory"
)

// Exported function names.
const (
	ExportAlloc       = "alloc"
	ExportFree        = "free"
	ExportAllocated   = "allocated"
	ExportLastError   = "last_error"
	ExportKeyRandom   = "signing_key_random"
	ExportKeyFrom     = "signing_key_from_bytes"
	ExportKeyTo       = "signing_key_to_bytes"
	ExportKeyVerifier = "signing_key_verifying_key"
	ExportKeySign     = "signing_key_sign_prehash_recoverable"
	ExportKeyFree     = "signing_key_free"
	ExportPubFrom     = "verifying_key_from_sec1_bytes"
	ExportPubRecover  = "verifying_key_recover_from_prehash"
	ExportPubTo       = "verifying_key_to_sec1_bytes"
	ExportPubVerify   = "verifying_key_verify_prehash"
	ExportPubFree     = "verifying_key_free"
	ExportSigFrom     = "signature_from_bytes"
	ExportSigTo       = "signature_to_bytes"
	ExportSigFree     = "signature_free"
)

// Signature describes an export. Every parameter and result is an i32.
type Signature struct {
	Name    string
	Params  int
	Results int
}

// Signatures lists every function a conforming engine must export.
var Signatures = []Signature{
	{ExportAlloc, 1, 1},
	{ExportFree, 1, 0},
	{ExportAllocated, 0, 1},
	{ExportLastError, 0, 1},
	{ExportKeyRandom, 0, 1},
	{ExportKeyFrom, 2, 1},
	{ExportKeyTo, 2, 1},
	{ExportKeyVerifier, 1, 1},
	{ExportKeySign, 3, 1},
	{ExportKeyFree, 1, 0},
	{ExportPubFrom, 2, 1},
	{ExportPubRecover, 3, 1},
	{ExportPubTo, 3, 1},
	{ExportPubVerify, 4, 1},
	{ExportPubFree, 1, 0},
	{ExportSigFrom, 2, 1},
	{ExportSigTo, 2, 1},
	{ExportSigFree, 1, 0},
}

// Status codes reported by last_error.
const (
	StatusOK               uint32 = 0
	StatusUnknown          uint32 = 1
	StatusParam            uint32 = 2
	StatusMemory           uint32 = 3
	StatusInvalidKey       uint32 = 4
	StatusInvalidPoint     uint32 = 5
	StatusInvalidSignature uint32 = 6
	StatusRecoveryFailed   uint32 = 7
	StatusEntropy          uint32 = 8
)

// VerifyFailed is returned by verifying_key_verify_prehash when the call
// itself failed, as opposed to 0 for an invalid signature.
const VerifyFailed = ^uint32(0)

// Object sizes in linear memory.
const (
	KeySize          = 32
	PointSize        = 65
	CompressedSize   = 33
	SignatureSize    = 65
	pageSize         = 65536
	allocAlign       = 8
	heapBase         = 16
	randomKeyRetries = 16
)
