// Package memory implements byte capsules: immutable, ownership-aware
// wrappers around raw bytes that can cross the boundary between the Go heap
// and a foreign allocator (the linear memory of a compiled module, or the C
// heap) without unnecessary copies.
//
// # Ownership modes
//
// A capsule either owns a heap slice (Own, CopyOf) or references a region
// owned by a foreign allocator (WrapForeign). Foreign regions must be released
// through their allocator before the allocator reclaims them; Free does that
// exactly once, zeroizing the region first.
//
//	buf, err := module.Alloc(digest) // foreign capsule in linear memory
//	if err != nil {
//	    return err
//	}
//	defer buf.Free()
//
// # Moving
//
// Move marks a capsule as transferred into a creation call. The callee
// obtains ownership with Take and frees the capsule on every exit path:
//
//	key, err := adapter.PrivateKey.Import(memory.Move(buf))
//
// Free is idempotent, so a caller that frees a moved capsule again does not
// corrupt anything; reading a freed capsule is rejected by View.
package memory
