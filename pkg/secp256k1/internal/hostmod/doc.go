// Package hostmod builds the compiled secp256k1 engine that the wasm adapter
// runs by default.
//
// The engine is split across two wazero modules living in one runtime:
//
//   - a host module implementing the secp256k1 ABI (abi.go). Its functions
//     address linear memory exclusively through u32 offsets and keep every
//     key, point and signature object inside that memory.
//   - a guest module (assembled in memory.go) that imports those functions,
//     declares the linear memory and exports both. Callers only ever invoke
//     the guest's exports; wazero does not allow calling a host module's
//     functions directly.
//
// Arithmetic is delegated to dcrd's secp256k1/v4. Status codes are reported
// through the last_error export and converted to Go errors by the caller.
package hostmod
