package hostmod

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Config tunes the engine. The zero value is usable.
type Config struct {
	// InitialPages is the initial size of the linear memory in 64 KiB pages.
	// Defaults to 1.
	InitialPages uint32

	// MaxPages caps memory growth. Zero leaves the cap to the runtime.
	MaxPages uint32

	// Rand is the entropy source for signing_key_random. Defaults to
	// crypto/rand.Reader.
	Rand io.Reader
}

// Instance is an instantiated engine. Module is the guest that exports the
// functions in Signatures and Memory is its linear memory.
type Instance struct {
	Module api.Module
	Memory api.Memory
}

// Instantiate creates the host module and the guest that re-exports it in r.
// Both are closed together with r.
func Instantiate(ctx context.Context, r wazero.Runtime, cfg Config) (*Instance, error) {
	if cfg.InitialPages == 0 {
		cfg.InitialPages = 1
	}
	if cfg.MaxPages != 0 && cfg.MaxPages < cfg.InitialPages {
		return nil, fmt.Errorf("hostmod: max pages %d below initial pages %d", cfg.MaxPages, cfg.InitialPages)
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}

	e := newEngine(cfg.Rand)
	funcs := map[string]any{
		ExportAlloc:       e.alloc,
		ExportFree:        e.free,
		ExportAllocated:   e.allocated,
		ExportLastError:   e.lastError,
		ExportKeyRandom:   e.keyRandom,
		ExportKeyFrom:     e.keyFromBytes,
		ExportKeyTo:       e.keyToBytes,
		ExportKeyVerifier: e.keyVerifyingKey,
		ExportKeySign:     e.keySign,
		ExportKeyFree:     e.keyFree,
		ExportPubFrom:     e.pubFromSEC1,
		ExportPubRecover:  e.pubRecover,
		ExportPubTo:       e.pubToSEC1,
		ExportPubVerify:   e.pubVerify,
		ExportPubFree:     e.pubFree,
		ExportSigFrom:     e.sigFromBytes,
		ExportSigTo:       e.sigToBytes,
		ExportSigFree:     e.sigFree,
	}

	builder := r.NewHostModuleBuilder(ModuleName)
	for _, sig := range Signatures {
		builder = builder.NewFunctionBuilder().WithFunc(funcs[sig.Name]).Export(sig.Name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("hostmod: instantiate host module: %w", err)
	}

	guest, err := r.InstantiateWithConfig(ctx,
		GuestModule(cfg.InitialPages, cfg.MaxPages),
		wazero.NewModuleConfig().WithName(GuestModuleName),
	)
	if err != nil {
		return nil, fmt.Errorf("hostmod: instantiate guest: %w", err)
	}
	mem := guest.ExportedMemory(MemoryExportName)
	if mem == nil {
		return nil, errors.New("hostmod: guest exports no memory")
	}
	e.attach(mem, cfg.MaxPages)

	return &Instance{Module: guest, Memory: mem}, nil
}
