package gmdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncChunkV15(t *testing.T) {
	var b builder
	b.u32(2) // func_count
	b.u32(0) // name ref
	b.u32(3) // occurrences
	b.i32(0x100)
	b.u32(0)
	b.u32(0)
	b.i32(-1)
	b.u32(1) // locals_count
	b.u32(2) // var_count
	b.u32(0) // code entry name ref
	b.u32(0) // var 0 index
	b.u32(0) // var 0 name ref
	b.u32(1) // var 1 index
	b.u32(0) // var 1 name ref

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("FUNC", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	fn := f.Functions()
	require.NotNil(t, fn)
	require.False(t, fn.Native)
	require.Len(t, fn.Functions, 2)
	assert.Equal(t, uint32(3), fn.Functions[0].Occurrences)
	assert.Equal(t, int32(0x100), fn.Functions[0].FirstAddress)

	require.Len(t, fn.Locals, 1)
	require.Len(t, fn.Locals[0].Vars, 2)
	assert.Equal(t, uint32(1), fn.Locals[0].Vars[1].Index)
}

func TestFuncChunkV14Flat(t *testing.T) {
	var b builder
	// Two flat 12-byte entries, no count prefix.
	b.u32(0)
	b.u32(1)
	b.i32(0x20)
	b.u32(0)
	b.u32(2)
	b.i32(0x40)

	data := buildForm(
		chunk("GEN8", gen8Body(14, 1, nil)),
		chunk("FUNC", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)

	fn := f.Functions()
	require.NotNil(t, fn)
	require.Len(t, fn.Functions, 2)
	assert.Empty(t, fn.Locals)
	assert.Equal(t, int32(0x40), fn.Functions[1].FirstAddress)
}

func TestFuncChunkNative(t *testing.T) {
	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("FUNC", nil),
	)

	f, err := Parse(data)
	require.NoError(t, err)

	fn := f.Functions()
	require.NotNil(t, fn)
	assert.True(t, fn.Native)
}

func TestFirstAddressCorrection(t *testing.T) {
	e := FunctionEntry{FirstAddress: 0x100}

	// Up to BC 16 the stored value addresses the call instruction.
	assert.Equal(t, int32(0x100), e.CallInstructionAddress(14))
	assert.Equal(t, int32(0x100), e.CallInstructionAddress(16))

	// From BC 17 it addresses the operand word, 4 bytes in.
	assert.Equal(t, int32(0xFC), e.CallInstructionAddress(17))
}
