package secp256k1

import (
	"context"
	"sync/atomic"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
)

// The active-adapter slot. It is meant to be configured once at process
// start; mutating it while other goroutines call Get leaves them observing
// either the old or the new adapter.
var (
	active atomic.Pointer[Adapter]
	logger atomic.Pointer[logging.Logger]
)

// Set replaces the active adapter. Passing nil clears the slot.
func Set(a *Adapter) {
	prev := active.Swap(a)
	currentLogger().Debug(context.Background(), "secp256k1 adapter changed",
		"from", prev.String(),
		"to", a.String(),
	)
}

// Get returns the active adapter, or ErrNoAdapter when none is set.
func Get() (*Adapter, error) {
	a := active.Load()
	if a == nil {
		return nil, ErrNoAdapter
	}
	return a, nil
}

// MustGet returns the active adapter and panics when none is set.
func MustGet() *Adapter {
	a, err := Get()
	if err != nil {
		panic(err)
	}
	return a
}

// SetLogger installs the logger used by this package. nil restores the
// slog.Default() backed logger.
func SetLogger(l logging.Logger) {
	if l == nil {
		logger.Store(nil)
		return
	}
	logger.Store(&l)
}

// Logger returns the package logger.
func Logger() logging.Logger {
	return currentLogger()
}

func currentLogger() logging.Logger {
	if l := logger.Load(); l != nil {
		return *l
	}
	return logging.New(nil)
}
