package hostmod

const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionMemory   = 0x05
	sectionExport   = 0x07
	sectionCode     = 0x0a

	kindFunc   = 0x00
	kindMemory = 0x02

	typeI32  = 0x7f
	typeFunc = 0x60

	opLocalGet = 0x20
	opCall     = 0x10
	opEnd      = 0x0b
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// MemoryModule assembles a wasm binary that declares a single linear memory
// of minPages (and maxPages when non-zero) and exports it as "memory".
func MemoryModule(minPages, maxPages uint32) []byte {
	out := append([]byte(nil), wasmHeader...)
	out = appendSection(out, sectionMemory, memorySection(minPages, maxPages))
	return appendSection(out, sectionExport, exportSection(nil))
}

// GuestModule assembles the engine's guest: it imports every function in
// Signatures from ModuleName, declares the linear memory and exports both.
// Each export is a wrapper that forwards its arguments to the import of the
// same name.
func GuestModule(minPages, maxPages uint32) []byte {
	n := uint32(len(Signatures))

	types := uleb128(n)
	imports := uleb128(n)
	funcs := uleb128(n)
	code := uleb128(n)
	for i, sig := range Signatures {
		types = append(types, typeFunc)
		types = append(types, i32s(sig.Params)...)
		types = append(types, i32s(sig.Results)...)

		imports = appendName(imports, ModuleName)
		imports = appendName(imports, sig.Name)
		imports = append(imports, kindFunc)
		imports = append(imports, uleb128(uint32(i))...)

		funcs = append(funcs, uleb128(uint32(i))...)

		body := []byte{0x00} // no locals
		for p := 0; p < sig.Params; p++ {
			body = append(body, opLocalGet)
			body = append(body, uleb128(uint32(p))...)
		}
		body = append(body, opCall)
		body = append(body, uleb128(uint32(i))...)
		body = append(body, opEnd)
		code = append(code, uleb128(uint32(len(body)))...)
		code = append(code, body...)
	}

	out := append([]byte(nil), wasmHeader...)
	out = appendSection(out, sectionType, types)
	out = appendSection(out, sectionImport, imports)
	out = appendSection(out, sectionFunction, funcs)
	out = appendSection(out, sectionMemory, memorySection(minPages, maxPages))
	out = appendSection(out, sectionExport, exportSection(Signatures))
	return appendSection(out, sectionCode, code)
}

func memorySection(minPages, maxPages uint32) []byte {
	sec := []byte{0x01} // one memory
	if maxPages == 0 {
		sec = append(sec, 0x00)
		return append(sec, uleb128(minPages)...)
	}
	sec = append(sec, 0x01)
	sec = append(sec, uleb128(minPages)...)
	return append(sec, uleb128(maxPages)...)
}

// exportSection exports memory 0 and, for each signature, the wrapper that
// follows the imports in the function index space.
func exportSection(sigs []Signature) []byte {
	n := uint32(len(sigs))
	sec := uleb128(n + 1)
	sec = appendName(sec, MemoryExportName)
	sec = append(sec, kindMemory, 0x00)
	for i, sig := range sigs {
		sec = appendName(sec, sig.Name)
		sec = append(sec, kindFunc)
		sec = append(sec, uleb128(n+uint32(i))...)
	}
	return sec
}

func i32s(n int) []byte {
	out := uleb128(uint32(n))
	for i := 0; i < n; i++ {
		out = append(out, typeI32)
	}
	return out
}

func appendName(dst []byte, name string) []byte {
	dst = append(dst, uleb128(uint32(len(name)))...)
	return append(dst, name...)
}

func appendSection(dst []byte, id byte, payload []byte) []byte {
	dst = append(dst, id)
	dst = append(dst, uleb128(uint32(len(payload)))...)
	return append(dst, payload...)
}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
