// Package sandboxtest assembles tiny WebAssembly guests by hand so sandbox
// behaviour can be tested without a wasm toolchain.
package sandboxtest

const (
	typeMakeMove byte = iota // (i32, i32) -> i32
	typeAlloc                // (i32) -> i32
	typeNullary              // () -> i32
)

var funcTypes = [][]byte{
	{0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
	{0x60, 0x01, 0x7f, 0x01, 0x7f},
	{0x60, 0x00, 0x01, 0x7f},
}

const (
	opUnreachable = 0x00
	opBlock       = 0x02
	opLoop        = 0x03
	opIf          = 0x04
	opEnd         = 0x0b
	opBr          = 0x0c
	opBrIf        = 0x0d
	opReturn      = 0x0f
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opLoad8U      = 0x2d
	opMemoryGrow  = 0x40
	opI32Const    = 0x41
	opI32Eq       = 0x46
	opI32LtU      = 0x49
	opI32GeU      = 0x4f
	opI32Add      = 0x6a
	blockEmpty    = 0x40
	i32           = 0x7f
)

type function struct {
	typ    byte
	locals []byte
	code   []byte
}

type export struct {
	name  string
	kind  byte // 0 func, 2 memory
	index byte
}

// AllocBase is where the stock alloc export places the snapshot.
const AllocBase = 1024

func allocFunc(at int32) function {
	return function{typ: typeAlloc, code: append([]byte{opI32Const}, sleb(at)...)}
}

func guest(makeMove function, alloc function) []byte {
	return build([]function{alloc, makeMove}, []export{
		{"memory", 2, 0},
		{"alloc", 0, 0},
		{"make_move", 0, 1},
	})
}

// Constant always proposes column, ignoring the board.
func Constant(column int32) []byte {
	return guest(function{typ: typeMakeMove, code: append([]byte{opI32Const}, sleb(column)...)}, allocFunc(AllocBase))
}

// Spin never returns.
func Spin() []byte {
	code := []byte{opLoop, blockEmpty, opBr, 0x00, opEnd, opI32Const, 0x00}
	return guest(function{typ: typeMakeMove, code: code}, allocFunc(AllocBase))
}

// Trap hits unreachable on every call.
func Trap() []byte {
	return guest(function{typ: typeMakeMove, code: []byte{opUnreachable}}, allocFunc(AllocBase))
}

// GrowMemory asks for 100 more pages and traps when the host refuses.
func GrowMemory() []byte {
	code := []byte{
		opI32Const, 0xe4, 0x00, opMemoryGrow, 0x00,
		opI32Const, 0x7f, opI32Eq,
		opIf, blockEmpty, opUnreachable, opEnd,
		opI32Const, 0x00,
	}
	return guest(function{typ: typeMakeMove, code: code}, allocFunc(AllocBase))
}

// BadAlloc hands back an offset past the end of guest memory.
func BadAlloc() []byte {
	return guest(function{typ: typeMakeMove, code: []byte{opI32Const, 0x00}}, allocFunc(70000))
}

// FirstOpen reads the snapshot and plays the leftmost column that is not
// full, or the column count when every column is full.
func FirstOpen() []byte {
	// params: 0 ptr, 1 len; locals: 2 i, 3 columns, 4 rows
	code := []byte{
		opLocalGet, 0, opLoad8U, 0, 0, opLocalSet, 3,
		opLocalGet, 0, opLoad8U, 0, 1, opLocalSet, 4,
		opI32Const, 0, opLocalSet, 2,
		opBlock, blockEmpty,
		opLoop, blockEmpty,
		opLocalGet, 2, opLocalGet, 3, opI32GeU, opBrIf, 1,
		opLocalGet, 0, opLocalGet, 2, opI32Add, opLoad8U, 0, 3,
		opLocalGet, 4, opI32LtU,
		opIf, blockEmpty, opLocalGet, 2, opReturn, opEnd,
		opLocalGet, 2, opI32Const, 1, opI32Add, opLocalSet, 2,
		opBr, 0,
		opEnd,
		opEnd,
		opLocalGet, 3,
	}
	return guest(function{typ: typeMakeMove, locals: []byte{0x01, 0x03, i32}, code: code}, allocFunc(AllocBase))
}

// MissingMakeMove exports memory and alloc only.
func MissingMakeMove() []byte {
	return build([]function{allocFunc(AllocBase)}, []export{
		{"memory", 2, 0},
		{"alloc", 0, 0},
	})
}

// WrongSignature exports make_move taking no parameters.
func WrongSignature() []byte {
	return guest(function{typ: typeNullary, code: []byte{opI32Const, 0x00}}, allocFunc(AllocBase))
}

// Garbage is not a wasm binary.
func Garbage() []byte {
	return []byte("definitely not wasm")
}

func build(funcs []function, exports []export) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types []byte
	types = append(types, uleb(uint32(len(funcTypes)))...)
	for _, ft := range funcTypes {
		types = append(types, ft...)
	}
	out = append(out, section(1, types)...)

	fsec := uleb(uint32(len(funcs)))
	for _, f := range funcs {
		fsec = append(fsec, f.typ)
	}
	out = append(out, section(3, fsec)...)

	// one memory, min 1 page, no max
	out = append(out, section(5, []byte{0x01, 0x00, 0x01})...)

	esec := uleb(uint32(len(exports)))
	for _, e := range exports {
		esec = append(esec, uleb(uint32(len(e.name)))...)
		esec = append(esec, e.name...)
		esec = append(esec, e.kind, e.index)
	}
	out = append(out, section(7, esec)...)

	csec := uleb(uint32(len(funcs)))
	for _, f := range funcs {
		locals := f.locals
		if locals == nil {
			locals = []byte{0x00}
		}
		body := append(append(append([]byte{}, locals...), f.code...), opEnd)
		csec = append(csec, uleb(uint32(len(body)))...)
		csec = append(csec, body...)
	}
	out = append(out, section(10, csec)...)
	return out
}

func section(id byte, content []byte) []byte {
	return append(append([]byte{id}, uleb(uint32(len(content)))...), content...)
}

func uleb(v uint32) []byte {
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

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
