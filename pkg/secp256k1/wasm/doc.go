// Package wasm is the foreign linear-memory secp256k1 adapter.
//
// A Module drives a compiled engine through wazero. Byte inputs are placed in
// the engine's linear memory before each call and results are copied back to
// the Go heap before they are returned, so no linear-memory allocation
// outlives the operation that made it. Handles are offsets of engine objects
// and are released through the engine's free exports.
//
// New instantiates the built-in engine. Bind attaches to an already
// instantiated module that exports the same ABI and its memory.
//
// A Module and its handles are NOT safe for concurrent use.
package wasm
