// Command secp256k1-go exercises the secp256k1 adapters from the shell.
//
//	secp256k1-go [-backend pure|wasm] [-v] <command> [flags]
//
// Commands: version, keygen, pubkey, sign, recover, verify. Keys, digests and
// signatures are hex encoded.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/pure"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/wasm"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("secp256k1-go: ")

	backend := flag.String("backend", pure.Name, "engine to use: pure or wasm")
	verbose := flag.Bool("v", false, "log adapter diagnostics to stderr")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	secp256k1.SetLogger(logger)

	ctx := context.Background()
	closeFn, err := activate(ctx, *backend, logger)
	if err != nil {
		log.Fatalf("select backend: %v", err)
	}
	defer func() {
		if cerr := closeFn(ctx); cerr != nil {
			log.Printf("close error: %v", cerr)
		}
	}()

	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Printf("%s: %v", flag.Arg(0), err)
		_ = closeFn(ctx)
		os.Exit(1)
	}
}

// activate installs the requested adapter in the registry. The returned func
// releases the engine.
func activate(ctx context.Context, name string, logger logging.Logger) (func(context.Context) error, error) {
	switch name {
	case pure.Name:
		secp256k1.Set(pure.New())
		return func(context.Context) error { return nil }, nil
	case wasm.Name:
		m, err := wasm.New(ctx, wasm.Config{Logger: logger})
		if err != nil {
			return nil, err
		}
		secp256k1.Set(m.Adapter())
		return m.Close, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func run(cmd string, args []string) error {
	switch cmd {
	case "version":
		fmt.Println(secp256k1.WrapperVersion())
		return nil
	case "keygen":
		return keygen(args)
	case "pubkey":
		return pubkey(args)
	case "sign":
		return sign(args)
	case "recover":
		return recoverKey(args)
	case "verify":
		return verify(args)
	default:
		usage()
		return fmt.Errorf("unknown command")
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: secp256k1-go [-backend pure|wasm] [-v] <command> [flags]\n\n")
	fmt.Fprintf(out, "commands:\n")
	fmt.Fprintf(out, "  version\n")
	fmt.Fprintf(out, "  keygen\n")
	fmt.Fprintf(out, "  pubkey  -key HEX [-uncompressed]\n")
	fmt.Fprintf(out, "  sign    -key HEX (-digest HEX | -message TEXT)\n")
	fmt.Fprintf(out, "  recover (-digest HEX | -message TEXT) -sig HEX\n")
	fmt.Fprintf(out, "  verify  -pub HEX (-digest HEX | -message TEXT) -sig HEX\n\n")
	flag.PrintDefaults()
}
