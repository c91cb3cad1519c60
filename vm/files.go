package vm

import "os"

// openFile is the VM-side record behind a file handle value. A failed open
// is kept as a handle whose err is set rather than refused outright: the
// lowerer always pairs every open with a matching close on every exit path
// so the read/write/close opcodes have to accept a handle to a
// file that never successfully opened and degrade to the checked-failure
// error codes the language's Result convention already expects, instead of
// panicking the whole machine over an outside-the-program filesystem
// condition.
type openFile struct {
	f   *os.File
	err error
}

// openFileRead/openFileWrite/openFileAppend implement
// OpFileOpenRead/Write/Append: imm names a string-table index holding the
// path; the pushed result is a handle value keying m.files.
func (m *machine) openFileRead(path string) uint64  { return m.registerFile(os.Open(path)) }
func (m *machine) openFileWrite(path string) uint64 { return m.registerFile(os.Create(path)) }

func (m *machine) openFileAppend(path string) uint64 {
	return m.registerFile(os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644))
}

func (m *machine) registerFile(f *os.File, err error) uint64 {
	h := m.nextHandle
	m.nextHandle++
	m.files[h] = &openFile{f: f, err: err}
	return h
}

// writeString implements OpFileWriteString: handle, strIdx -> i32 error
// code. A handle that never opened, or a write that fails, yields 1; a
// successful write yields 0.
func (m *machine) writeString(handle uint64, s string) uint64 {
	of, ok := m.files[handle]
	if !ok || of.err != nil {
		return 1
	}
	if _, err := of.f.WriteString(s); err != nil {
		return 1
	}
	return 0
}

// readByte implements OpFileReadByte: handle -> byte, or -1 at EOF or on a
// handle that never opened.
func (m *machine) readByte(handle uint64) int64 {
	of, ok := m.files[handle]
	if !ok || of.err != nil {
		return -1
	}
	var b [1]byte
	n, err := of.f.Read(b[:])
	if n == 0 || err != nil {
		return -1
	}
	return int64(b[0])
}

// closeFile implements OpFileClose: handle -> (no push).
func (m *machine) closeFile(handle uint64) {
	of, ok := m.files[handle]
	if !ok {
		return
	}
	if of.f != nil {
		of.f.Close()
	}
	delete(m.files, handle)
}
