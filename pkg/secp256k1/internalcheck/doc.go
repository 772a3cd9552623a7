// Package internalcheck holds static policy tests over the module's own
// sources.
//
// # Internal Use Only
//
// The package exports nothing. Its tests load the secp256k1 packages with
// golang.org/x/tools/go/packages and fail on patterns that are unsafe around
// key material.
package internalcheck
