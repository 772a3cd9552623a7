package wasm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/internal/hostmod"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

// Name is the adapter name reported by Module.Adapter.
const Name = "wasm"

var (
	// ErrMissingExport is returned by Bind when the module lacks part of the
	// ABI.
	ErrMissingExport = errors.New("wasm: missing export")

	// ErrOutOfMemory is the cause when the engine cannot allocate.
	ErrOutOfMemory = errors.New("wasm: linear memory exhausted")
)

// Config configures a Module. The zero value is usable.
type Config struct {
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger logging.Logger

	// InitialPages and MaxPages size the built-in engine's linear memory in
	// 64 KiB pages. Ignored by Bind.
	InitialPages uint32
	MaxPages     uint32

	// Rand is the entropy source of the built-in engine. Defaults to
	// crypto/rand. Ignored by Bind.
	Rand io.Reader
}

// Module is an instantiated engine.
type Module struct {
	runtime wazero.Runtime // nil when bound to a caller-owned module
	mod     api.Module
	mem     api.Memory
	log     logging.Logger
}

// New instantiates the built-in engine in a fresh wazero runtime owned by the
// Module. Close releases it.
func New(ctx context.Context, cfg Config) (*Module, error) {
	r := wazero.NewRuntime(ctx)
	inst, err := hostmod.Instantiate(ctx, r, hostmod.Config{
		InitialPages: cfg.InitialPages,
		MaxPages:     cfg.MaxPages,
		Rand:         cfg.Rand,
	})
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("wasm: %w", err)
	}

	m, err := Bind(inst.Module, cfg)
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	m.runtime = r
	m.log.Debug(ctx, "engine instantiated",
		"pages", inst.Memory.Size()/65536,
		"max_pages", cfg.MaxPages,
	)
	return m, nil
}

// Bind attaches to mod, which must export every function in the engine ABI
// with its i32 signature and its linear memory as "memory". The caller keeps ownership of mod.
func Bind(mod api.Module, cfg Config) (*Module, error) {
	if mod == nil {
		return nil, errors.New("wasm: nil module")
	}
	var missing []string
	for _, sig := range hostmod.Signatures {
		fn := mod.ExportedFunction(sig.Name)
		if fn == nil {
			missing = append(missing, sig.Name)
			continue
		}
		def := fn.Definition()
		if len(def.ParamTypes()) != sig.Params || len(def.ResultTypes()) != sig.Results {
			missing = append(missing, sig.Name)
		}
	}
	mem := mod.ExportedMemory(hostmod.MemoryExportName)
	if mem == nil {
		missing = append(missing, hostmod.MemoryExportName)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s lacks %v", ErrMissingExport, mod.Name(), missing)
	}
	return newModule(mod, mem, cfg.Logger), nil
}

func newModule(mod api.Module, mem api.Memory, l logging.Logger) *Module {
	return &Module{
		mod: mod,
		mem: mem,
		log: logging.OrDefault(l).With("adapter", Name),
	}
}

// Adapter returns the factories backed by m.
func (m *Module) Adapter() *secp256k1.Adapter {
	return &secp256k1.Adapter{
		Name:                 Name,
		PrivateKey:           privateKeyFactory{m: m},
		PublicKey:            publicKeyFactory{m: m},
		SignatureAndRecovery: signatureFactory{m: m},
	}
}

// Alloc copies b into linear memory. The returned capsule is consumed in
// place when passed back into m and must be freed by the caller.
func (m *Module) Alloc(b []byte) (*memory.Foreign, error) {
	f, err := m.place(b)
	if err != nil {
		return nil, err
	}
	runtime.SetFinalizer(f, (*memory.Foreign).Free)
	return f, nil
}

// Allocated reports the number of live linear-memory allocations.
func (m *Module) Allocated() (uint32, error) {
	return m.invoke(hostmod.ExportAllocated)
}

// Close reports leaked allocations and, for modules created by New, closes
// the runtime. Handles must not be used afterwards.
func (m *Module) Close(ctx context.Context) error {
	if n, err := m.Allocated(); err == nil && n > 0 {
		m.log.Warn(ctx, "closing engine with live allocations", "count", n)
	}
	if m.runtime == nil {
		return nil
	}
	return m.runtime.Close(ctx)
}

// invoke calls an exported function with u32 arguments. Functions are looked
// up per call since api.Function values are not goroutine-safe and handle
// finalizers run on their own goroutine.
func (m *Module) invoke(name string, args ...uint32) (uint32, error) {
	fn := m.mod.ExportedFunction(name)
	if fn == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingExport, name)
	}
	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = api.EncodeU32(a)
	}
	res, err := fn.Call(context.Background(), params...)
	if err != nil {
		return 0, fmt.Errorf("wasm: call %s: %w", name, err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return api.DecodeU32(res[0]), nil
}

// create calls a constructor export that returns a pointer, translating a
// null result into the engine's last error.
func (m *Module) create(name string, args ...uint32) (uint32, error) {
	ptr, err := m.invoke(name, args...)
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, m.lastError(name)
	}
	return ptr, nil
}

// check calls an export returning a status code.
func (m *Module) check(name string, args ...uint32) error {
	code, err := m.invoke(name, args...)
	if err != nil {
		return err
	}
	if code != hostmod.StatusOK {
		return &StatusError{Export: name, Code: code}
	}
	return nil
}

func (m *Module) lastError(name string) error {
	code, err := m.invoke(hostmod.ExportLastError)
	if err != nil {
		return err
	}
	return &StatusError{Export: name, Code: code}
}
