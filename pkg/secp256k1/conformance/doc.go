// Package conformance is a contract test suite for secp256k1 adapters.
//
// Every adapter package runs it from its own tests:
//
//	func TestConformance(t *testing.T) {
//	    conformance.Run(t, pure.New())
//	}
//
// Options add per-test hooks, e.g. a leak probe for adapters that own
// foreign memory.
package conformance
