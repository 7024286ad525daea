package gmdata

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/gmdata/gml"
)

// buildEndToEnd assembles a container with GEN8, STRG, CODE and SCPT
// wired together: one string "scr_main", one code entry named by it
// holding push.d pi + ret, and one script mapping to it.
//
//	  0: FORM header
//	  8: GEN8 chunk (8 + 132)
//	148: STRG chunk header
//	156: STRG body: list (8) + gm_string at 164 (len 8 + 13 bytes)
//	177: CODE chunk header
//	185: CODE body: list (8) + entry header at 193 (20) + blob at 213 (16)
//	229: SCPT chunk header
//	237: SCPT body: list (8) + entry at 245 (8)
func buildEndToEnd() []byte {
	const nameChars = StringRef(168) // char bytes of "scr_main"

	var strg builder
	strg.u32(1)
	strg.u32(164)
	strg.u32(8)
	strg.raw([]byte("scr_main"))
	strg.u8(0)

	var code builder
	code.u32(1)
	code.u32(193)
	code.u32(uint32(nameChars)) // name ref
	code.u32(16)                // blob_length
	code.u16(0)                 // locals_count
	code.u16(0)                 // args_count
	code.i32(213 - (193 + 12))  // rel addr field at 205 -> blob at 213
	code.u32(0)                 // offset_in_blob
	code.raw([]byte{0x00, 0x00, 0x00, 0xC0})                         // push.d
	code.raw([]byte{0x18, 0x2D, 0x44, 0x54, 0xFB, 0x21, 0x09, 0x40}) // pi f64
	code.raw([]byte{0x00, 0x00, 0x00, 0x9C})                         // ret

	var scpt builder
	scpt.u32(1)
	scpt.u32(245)
	scpt.u32(uint32(nameChars))
	scpt.u32(0) // code id

	return buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("STRG", strg.Bytes()),
		chunk("CODE", code.Bytes()),
		chunk("SCPT", scpt.Bytes()),
	)
}

func TestEndToEndDecode(t *testing.T) {
	f, err := Parse(buildEndToEnd())
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	code := f.Code()
	require.NotNil(t, code)
	require.Len(t, code.Entries, 1)
	entry := code.Entries[0]

	name, err := f.ResolveString(entry.Name)
	require.NoError(t, err)
	assert.Equal(t, "scr_main", name)

	off, length := f.CodeByteRange(entry)
	assert.Equal(t, uint32(213), off)
	assert.Equal(t, uint32(16), length)

	dec, err := f.DecodeCode(entry)
	require.NoError(t, err)

	push, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, gml.OpPush, push.Op)
	body, ok := push.Body.(gml.PushBody)
	require.True(t, ok)
	assert.Equal(t, gml.TypeDouble, body.Type)
	assert.Equal(t, math.Pi, body.Double)

	ret, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, gml.OpRet, ret.Op)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)

	// The decoder is restartable.
	dec.Reset()
	again, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, gml.OpPush, again.Op)
}

func TestScriptCodeLookup(t *testing.T) {
	f, err := Parse(buildEndToEnd())
	require.NoError(t, err)

	scpt := f.Scripts()
	require.NotNil(t, scpt)
	require.Len(t, scpt.Scripts, 1)

	script := scpt.Scripts[0]
	assert.False(t, script.IsConstructor())

	entry, err := f.ScriptCode(script)
	require.NoError(t, err)
	assert.Equal(t, f.Code().Entries[0], entry)
}

func TestScriptConstructorFlag(t *testing.T) {
	s := &ScriptEntry{CodeID: 0x8000_0001}
	assert.True(t, s.IsConstructor())
	s = &ScriptEntry{CodeID: 17}
	assert.False(t, s.IsConstructor())
}

func TestDecodeCodeBadRange(t *testing.T) {
	f, err := Parse(buildEndToEnd())
	require.NoError(t, err)

	bogus := &CodeEntry{BytecodeOffset: 1 << 30, BytecodeLength: 64}
	_, err = f.DecodeCode(bogus)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPointer)
}
