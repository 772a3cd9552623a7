package internalcheck

import (
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// unsafeAllowed lists the packages that may touch raw pointers.
var unsafeAllowed = map[string]bool{
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory/cmem": true,
}

func TestUnsafeConfinedToCHeap(t *testing.T) {
	pkgs := load(t, packages.NeedSyntax|packages.NeedFiles|packages.NeedName)

	var findings []string
	for _, pkg := range pkgs {
		if unsafeAllowed[pkg.PkgPath] {
			continue
		}
		for _, file := range pkg.Syntax {
			for _, imp := range file.Imports {
				path, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					continue
				}
				if path == "unsafe" {
					findings = append(findings, pkg.Fset.Position(imp.Pos()).String()+": unsafe import outside memory/cmem")
				}
			}
		}
	}

	if len(findings) > 0 {
		t.Fatalf("unsafe policy violation:\n%s", strings.Join(findings, "\n"))
	}
}
