package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"

	"github.com/minio/sha256-simd"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1"
	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/memory"
)

// digestFlags binds the mutually exclusive -digest and -message flags.
type digestFlags struct {
	digest  *string
	message *string
}

func addDigestFlags(fs *flag.FlagSet) digestFlags {
	return digestFlags{
		digest:  fs.String("digest", "", "pre-hashed digest (hex)"),
		message: fs.String("message", "", "message to hash with SHA-256"),
	}
}

func (d digestFlags) bytes() ([]byte, error) {
	switch {
	case *d.digest != "" && *d.message != "":
		return nil, errors.New("-digest and -message are mutually exclusive")
	case *d.digest != "":
		return decodeHex("digest", *d.digest)
	case *d.message != "":
		sum := sha256.Sum256([]byte(*d.message))
		return sum[:], nil
	default:
		return nil, errors.New("one of -digest or -message is required")
	}
}

func decodeHex(what, s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("-%s is required", what)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return b, nil
}

// hexOf encodes a capsule returned by the adapter and releases it.
func hexOf(c memory.Copiable, err error) (string, error) {
	if err != nil {
		return "", err
	}
	b := c.CopyAndFree()
	defer secp256k1.ZeroizeBytes(b)
	return hex.EncodeToString(b), nil
}

func printHex(c memory.Copiable, err error) error {
	s, err := hexOf(c, err)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

func importKey(s string) (secp256k1.PrivateKey, error) {
	raw, err := decodeHex("key", s)
	if err != nil {
		return nil, err
	}
	defer secp256k1.ZeroizeBytes(raw)
	return secp256k1.MustGet().PrivateKey.Import(memory.Own(raw))
}

func importSignature(s string) (secp256k1.SignatureAndRecovery, error) {
	raw, err := decodeHex("sig", s)
	if err != nil {
		return nil, err
	}
	return secp256k1.MustGet().SignatureAndRecovery.Import(memory.Own(raw))
}

func keygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := secp256k1.MustGet().PrivateKey.Random()
	if err != nil {
		return err
	}
	defer key.Free()
	pub, err := key.PublicKey()
	if err != nil {
		return err
	}
	defer pub.Free()

	priv, err := hexOf(key.Export())
	if err != nil {
		return err
	}
	compressed, err := hexOf(pub.ExportCompressed())
	if err != nil {
		return err
	}
	uncompressed, err := hexOf(pub.ExportUncompressed())
	if err != nil {
		return err
	}
	fmt.Printf("private:      %s\n", priv)
	fmt.Printf("compressed:   %s\n", compressed)
	fmt.Printf("uncompressed: %s\n", uncompressed)
	return nil
}

func pubkey(args []string) error {
	fs := flag.NewFlagSet("pubkey", flag.ExitOnError)
	keyHex := fs.String("key", "", "private key (hex)")
	uncompressed := fs.Bool("uncompressed", false, "print the 65-byte encoding")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := importKey(*keyHex)
	if err != nil {
		return err
	}
	defer key.Free()
	pub, err := key.PublicKey()
	if err != nil {
		return err
	}
	defer pub.Free()

	export := pub.ExportCompressed
	if *uncompressed {
		export = pub.ExportUncompressed
	}
	return printHex(export())
}

func sign(args []string) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	keyHex := fs.String("key", "", "private key (hex)")
	df := addDigestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	digest, err := df.bytes()
	if err != nil {
		return err
	}

	key, err := importKey(*keyHex)
	if err != nil {
		return err
	}
	defer key.Free()
	sig, err := key.Sign(memory.Own(digest))
	if err != nil {
		return err
	}
	defer sig.Free()
	return printHex(sig.Export())
}

func recoverKey(args []string) error {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	sigHex := fs.String("sig", "", "signature r||s||id (hex)")
	df := addDigestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	digest, err := df.bytes()
	if err != nil {
		return err
	}

	sig, err := importSignature(*sigHex)
	if err != nil {
		return err
	}
	defer sig.Free()
	pub, err := secp256k1.MustGet().PublicKey.Recover(memory.Own(digest), sig)
	if err != nil {
		return err
	}
	defer pub.Free()
	return printHex(pub.ExportCompressed())
}

func verify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	pubHex := fs.String("pub", "", "public key, compressed or uncompressed (hex)")
	sigHex := fs.String("sig", "", "signature r||s||id (hex)")
	df := addDigestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	digest, err := df.bytes()
	if err != nil {
		return err
	}

	raw, err := decodeHex("pub", *pubHex)
	if err != nil {
		return err
	}
	pub, err := secp256k1.MustGet().PublicKey.Import(memory.Own(raw))
	if err != nil {
		return err
	}
	defer pub.Free()
	sig, err := importSignature(*sigHex)
	if err != nil {
		return err
	}
	defer sig.Free()

	ok, err := pub.Verify(memory.Own(digest), sig)
	if err != nil {
		return err
	}
	if ok {
		fmt.Println("valid")
	} else {
		fmt.Println("invalid")
	}
	return nil
}
