package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// magic is the fixed 4-byte header every ".psir" artifact starts with.
var magic = [4]byte{'P', 'S', 'I', 'R'}

// version is the current binary format version, encoded as 2 little-endian
// bytes immediately after magic.
const version uint16 = 1

// Encode serializes m into the ".psir" wire format:
// magic, version, varint-counted string table, then varint-counted function
// table with varint-prefixed names and instruction streams.
func Encode(m *Module) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	var versionBytes [2]byte
	binary.LittleEndian.PutUint16(versionBytes[:], version)
	buf.Write(versionBytes[:])
	writeUvarint(&buf, uint64(m.EntryIndex+1)) // 0 means "no entry selected"

	writeUvarint(&buf, uint64(len(m.Strings)))
	for _, s := range m.Strings {
		writeUvarint(&buf, uint64(len(s)))
		buf.WriteString(s)
	}

	writeUvarint(&buf, uint64(len(m.Functions)))
	for _, fn := range m.Functions {
		writeUvarint(&buf, uint64(len(fn.Name)))
		buf.WriteString(fn.Name)
		writeUvarint(&buf, uint64(fn.NumLocals))
		writeUvarint(&buf, uint64(fn.ParamCount))
		writeUvarint(&buf, uint64(len(fn.Instructions)))
		for _, ins := range fn.Instructions {
			writeUvarint(&buf, uint64(ins.Op))
			var immBytes [8]byte
			binary.LittleEndian.PutUint64(immBytes[:], ins.Imm)
			buf.Write(immBytes[:])
		}
	}

	return buf.Bytes(), nil
}

// Decode parses the ".psir" wire format produced by Encode. Malformed input
// is reported with the same diagnostic vocabulary the format's own
// description requires: "bad magic", "unsupported version", and
// "unknown opcode: <n>".
func Decode(data []byte) (*Module, error) {
	r := bytes.NewReader(data)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil || gotMagic != magic {
		return nil, fmt.Errorf("bad magic")
	}
	var versionBytes [2]byte
	if _, err := io.ReadFull(r, versionBytes[:]); err != nil {
		return nil, fmt.Errorf("bad magic")
	}
	gotVersion := binary.LittleEndian.Uint16(versionBytes[:])
	if gotVersion != version {
		return nil, fmt.Errorf("unsupported version")
	}
	entryPlusOne, err := readUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("truncated header: %w", err)
	}

	stringCount, err := readUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("truncated string table: %w", err)
	}
	strings := make([]string, 0, stringCount)
	for i := uint64(0); i < stringCount; i++ {
		n, err := readUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("truncated string table: %w", err)
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, fmt.Errorf("truncated string table: %w", err)
		}
		strings = append(strings, string(b))
	}

	funcCount, err := readUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("truncated function table: %w", err)
	}
	functions := make([]Function, 0, funcCount)
	for i := uint64(0); i < funcCount; i++ {
		nameLen, err := readUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("truncated function table: %w", err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, fmt.Errorf("truncated function table: %w", err)
		}
		numLocals, err := readUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("truncated function table: %w", err)
		}
		paramCount, err := readUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("truncated function table: %w", err)
		}
		instrCount, err := readUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("truncated function table: %w", err)
		}
		instrs := make([]Instruction, 0, instrCount)
		for j := uint64(0); j < instrCount; j++ {
			opVal, err := readUvarint(r)
			if err != nil {
				return nil, fmt.Errorf("truncated instruction stream: %w", err)
			}
			op := Opcode(opVal)
			if !op.Valid() {
				return nil, fmt.Errorf("unknown opcode: %d", opVal)
			}
			var immBytes [8]byte
			if _, err := io.ReadFull(r, immBytes[:]); err != nil {
				return nil, fmt.Errorf("truncated instruction stream: %w", err)
			}
			instrs = append(instrs, Instruction{Op: op, Imm: binary.LittleEndian.Uint64(immBytes[:])})
		}
		functions = append(functions, Function{
			Name:         string(nameBytes),
			NumLocals:    int(numLocals),
			ParamCount:   int(paramCount),
			Instructions: instrs,
		})
	}

	return &Module{Strings: strings, Functions: functions, EntryIndex: int(entryPlusOne) - 1}, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}
