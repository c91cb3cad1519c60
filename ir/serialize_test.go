package ir

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModule() *Module {
	m := NewModule()
	strs := NewStringTable()
	idx := strs.Intern("hello")
	fn := Function{
		Name:       "/main",
		NumLocals:  1,
		ParamCount: 0,
		Instructions: []Instruction{
			{Op: OpPushString, Imm: uint64(idx)},
			{Op: OpPrintString, Imm: EncodePrintImm(PrintNewline)},
			{Op: OpPushI32, Imm: 7},
			{Op: OpReturnI32},
		},
	}
	m.Strings = strs.Strings()
	m.EntryIndex = m.AddFunction(fn)
	return m
}

// Round-trip law: Serialize then Deserialize is the identity on any
// valid IR module.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := sampleModule()
	encoded, err := Encode(m)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, m.Strings, decoded.Strings)
	assert.Equal(t, m.EntryIndex, decoded.EntryIndex)
	require.Len(t, decoded.Functions, len(m.Functions))

	wantDump := Disassemble(&m.Functions[0])
	gotDump := Disassemble(&decoded.Functions[0])
	if wantDump != gotDump {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(wantDump),
			B:        difflib.SplitLines(gotDump),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Fatalf("disassembly mismatch after round trip:\n%s", diff)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := Decode([]byte("nope"))
	require.Error(t, err)
	assert.Equal(t, "bad magic", err.Error())
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	m := sampleModule()
	encoded, err := Encode(m)
	require.NoError(t, err)
	encoded[4] = 0xFF // corrupt the low version byte
	_, err = Decode(encoded)
	require.Error(t, err)
	assert.Equal(t, "unsupported version", err.Error())
}

func TestDecodeUnknownOpcode(t *testing.T) {
	m := NewModule()
	m.Functions = []Function{{
		Name:         "/main",
		Instructions: []Instruction{{Op: Opcode(9999), Imm: 0}},
	}}
	m.EntryIndex = 0
	encoded, err := Encode(m)
	require.NoError(t, err)
	_, err = Decode(encoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown opcode: 9999")
}
