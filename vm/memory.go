package vm

// mem is the machine's flat, byte-addressable linear memory. Every local
// slot and every collection/struct heap block the lowerer emits lives here
// at an 8-byte-aligned offset, so OpAddressOfLocal can hand out a real
// address that a later OpLoadIndirect/OpStoreIndirect reads and writes
// identically to OpLoadLocal/OpStoreLocal — locals and heap blocks share
// one address space, with locals living at fixed frame-relative offsets
// right alongside heap-allocated storage.
type mem struct {
	words []uint64
}

// alloc reserves size bytes (rounded up to a whole 8-byte word) and returns
// their starting byte address. There is no garbage collection and no reuse: the arena only grows for the lifetime of a Run.
func (m *mem) alloc(size int) uint64 {
	words := (size + 7) / 8
	addr := uint64(len(m.words)) * 8
	m.words = append(m.words, make([]uint64, words)...)
	return addr
}

func (m *mem) load(addr uint64) uint64 {
	return m.words[addr/8]
}

func (m *mem) store(addr, v uint64) {
	m.words[addr/8] = v
}
