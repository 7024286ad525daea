package gmdata

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// builder assembles little-endian test fixtures.
type builder struct {
	bytes.Buffer
}

func (b *builder) u8(v uint8)   { b.WriteByte(v) }
func (b *builder) u16(v uint16) { _ = binary.Write(b, binary.LittleEndian, v) }
func (b *builder) u32(v uint32) { _ = binary.Write(b, binary.LittleEndian, v) }
func (b *builder) u64(v uint64) { _ = binary.Write(b, binary.LittleEndian, v) }
func (b *builder) i32(v int32)  { _ = binary.Write(b, binary.LittleEndian, v) }
func (b *builder) f32(v float32) { _ = binary.Write(b, binary.LittleEndian, v) }
func (b *builder) raw(p []byte) { b.Write(p) }
func (b *builder) tag(t string) { b.WriteString(t) }

// gen8Body builds a GEN8 chunk body for the given versions. The body is
// 132 bytes for bytecode version >= 14 with no rooms.
func gen8Body(bc uint8, ideMajor uint32, roomOrder []uint32) []byte {
	var b builder
	b.u8(1)           // is_debug_disabled
	b.u8(bc)          // bytecode_version
	b.u16(0)          // padding
	b.u32(0)          // filename ref
	b.u32(0)          // config ref
	b.u32(100)        // last_obj
	b.u32(10000)      // last_tile
	b.u32(0xBEEF)     // game_id
	b.raw(make([]byte, 16)) // guid
	b.u32(0)          // name ref
	b.u32(ideMajor)   // ide_version_major
	b.u32(4)          // ide_version_minor
	b.u32(1)          // ide_version_release
	b.u32(567)        // ide_version_build
	b.u32(1024)       // default_window_width
	b.u32(768)        // default_window_height
	b.u32(0)          // info_flags
	b.u32(0)          // license_crc32
	b.raw(make([]byte, 16)) // license_md5
	b.u64(1700000000) // timestamp
	b.u32(0)          // display_name ref
	b.u64(0)          // active_targets
	b.u64(0)          // function_classifications
	b.i32(-1)         // steam_app_id
	if bc >= 14 {
		b.u32(6502) // debugger_port
	}
	b.u32(uint32(len(roomOrder)))
	for _, r := range roomOrder {
		b.u32(r)
	}
	return b.Bytes()
}

// buildForm wraps chunks into a FORM container. Each chunk is a
// (tag, body) pair.
func buildForm(chunks ...[2][]byte) []byte {
	var inner builder
	for _, ch := range chunks {
		inner.raw(ch[0])
		inner.u32(uint32(len(ch[1])))
		inner.raw(ch[1])
	}
	var b builder
	b.tag(Magic)
	b.u32(uint32(inner.Len()))
	b.raw(inner.Bytes())
	return b.Bytes()
}

func chunk(tag string, body []byte) [2][]byte {
	return [2][]byte{[]byte(tag), body}
}

func TestParseMinimalV15(t *testing.T) {
	data := buildForm(chunk("GEN8", gen8Body(15, 1, nil)))

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	require.Len(t, f.Chunks, 1)
	require.Equal(t, "GEN8", f.Chunks[0].Tag)
	require.Equal(t, int64(0), f.BaseOffset())

	g := f.Gen8()
	require.NotNil(t, g)
	require.Equal(t, uint8(15), g.BytecodeVersion)
	require.Equal(t, uint32(1), g.IDEVersionMajor)
	require.Empty(t, g.RoomOrder)
	require.Equal(t, uint32(6502), g.DebuggerPort)
	require.Equal(t, uint8(15), f.BytecodeVersion)
}

func TestParsePEEnvelope(t *testing.T) {
	form := buildForm(chunk("GEN8", gen8Body(15, 1, nil)))
	prefix := bytes.Repeat([]byte{0xAA}, 256)
	data := append(append([]byte{}, prefix...), form...)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, int64(256), f.BaseOffset())

	g := f.Gen8()
	require.NotNil(t, g)
	require.Equal(t, uint8(15), g.BytecodeVersion)
}

func TestParseNoFormMagic(t *testing.T) {
	_, err := Parse(bytes.Repeat([]byte{0x00}, 64))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestChunkContiguity(t *testing.T) {
	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, []uint32{0, 1})),
		chunk("XXXX", []byte{1, 2, 3, 4}),
		chunk("YYYY", []byte{}),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, f.Chunks, 3)

	var sum uint32
	prevEnd := uint32(8)
	for _, ch := range f.Chunks {
		require.Equal(t, prevEnd, ch.Start, "chunk %s is not contiguous", ch.Tag)
		sum += 8 + ch.Size
		prevEnd = ch.BodyEnd()
	}
	require.Equal(t, f.DeclaredSize, sum)
}

func TestUnknownChunkPreserved(t *testing.T) {
	body := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("ZZZZ", body),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	ch := f.ChunkByTag("ZZZZ")
	require.NotNil(t, ch)
	assert.Nil(t, ch.Body)
	assert.Equal(t, body, ch.Raw)
}

func TestGen8NotFirst(t *testing.T) {
	data := buildForm(
		chunk("XXXX", []byte{0, 0, 0, 0}),
		chunk("GEN8", gen8Body(15, 1, nil)),
	)

	// Tolerant mode records the ordering violation and keeps parsing.
	f, err := Parse(data)
	require.NoError(t, err)
	require.NotEmpty(t, f.ChunkErrors)

	// Strict mode fails outright.
	_, err = ParseWithOptions(data, Options{Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestTolerantModeKeepsBadChunkBytes(t *testing.T) {
	// A STRG body whose single entry is missing its NUL terminator.
	var strg builder
	strg.u32(1)
	// The entry sits right after the pointer list inside the STRG body.
	// STRG body starts at 8 (FORM header) + 8 (GEN8 header) + 132 (GEN8
	// body) + 8 (STRG header).
	entryOff := uint32(8 + 8 + 132 + 8 + 8)
	strg.u32(entryOff)
	strg.u32(2)             // length
	strg.raw([]byte("hi"))  // chars
	strg.u8(0xFF)           // corrupt terminator

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("STRG", strg.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, f.ChunkErrors, 1)
	assert.Equal(t, "STRG", f.ChunkErrors[0].Tag)
	assert.ErrorIs(t, f.ChunkErrors[0].Err, ErrMalformedString)

	ch := f.ChunkByTag("STRG")
	require.NotNil(t, ch)
	assert.Nil(t, ch.Body)
	assert.NotEmpty(t, ch.Raw)

	_, err = ParseWithOptions(data, Options{Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedString)

	off, ok := ErrorOffset(err)
	require.True(t, ok)
	assert.Equal(t, int64(entryOff), off)
}

func TestCycleDetection(t *testing.T) {
	// Two pointers at the same offset: legal without cycle detection,
	// rejected with it.
	var b builder
	b.u32(2)
	b.u32(168)
	b.u32(168)
	b.u32(1)
	b.raw([]byte("a"))
	b.u8(0)

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("STRG", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)
	require.Len(t, f.Strings().Entries, 2)

	f, err = ParseWithOptions(data, Options{DetectCycles: true})
	require.NoError(t, err)
	require.Len(t, f.ChunkErrors, 1)
	assert.ErrorIs(t, f.ChunkErrors[0].Err, ErrCycleDetected)
}

func TestTruncatedChunkBody(t *testing.T) {
	var b builder
	b.tag(Magic)
	b.u32(11) // chunk region: GEN8 header plus the three bytes present
	b.tag("GEN8")
	b.u32(90) // body size beyond EOF
	b.raw([]byte{1, 2, 3})

	_, err := Parse(b.Bytes())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDeclaredSizeBoundsChunkWalk(t *testing.T) {
	// Bytes after the declared chunk region must be ignored.
	form := buildForm(chunk("GEN8", gen8Body(15, 1, nil)))
	data := append(form, []byte("TRAILING GARBAGE")...)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, f.Chunks, 1)
}
