package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

// patterns covers every non-test package in the module.
var patterns = []string{
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/...",
	"github.com/coinbase/cb-secp256k1-go/cmd/...",
	"github.com/coinbase/cb-secp256k1-go/examples/...",
}

func load(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	return pkgs
}
