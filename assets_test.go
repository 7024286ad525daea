package gmdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeqnVersionPrefix(t *testing.T) {
	// SEQN is the one chunk with a version word before the pointer list.
	var b builder
	b.u32(1) // version
	b.u32(0) // empty pointer list

	data := buildForm(
		chunk("GEN8", gen8Body(17, 2, nil)),
		chunk("SEQN", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	seqn := f.Sequences()
	require.NotNil(t, seqn)
	assert.Equal(t, uint32(1), seqn.Version)
	assert.Empty(t, seqn.Sequences)
}

func TestShaderEntryRemainders(t *testing.T) {
	// Body starts at 156. Two entries: 168 (8 bytes by spacing) and 176
	// (10 bytes to body end). Name is 4 bytes, so remainders are 4 and 6.
	var b builder
	b.u32(2)
	b.u32(168)
	b.u32(176)
	b.u32(0) // entry 0 name ref
	b.raw([]byte{1, 2, 3, 4})
	b.u32(0) // entry 1 name ref
	b.raw([]byte{5, 6, 7, 8, 9, 10})

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("SHDR", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	shdr := f.Shaders()
	require.NotNil(t, shdr)
	require.Len(t, shdr.Shaders, 2)
	assert.Equal(t, []byte{1, 2, 3, 4}, shdr.Shaders[0].Rest)
	assert.Equal(t, []byte{5, 6, 7, 8, 9, 10}, shdr.Shaders[1].Rest)
}

func TestSoundEntries(t *testing.T) {
	// One sound entry at 164 (body start 156 + 8-byte pointer list).
	var b builder
	b.u32(1)
	b.u32(164)
	b.u32(0)       // name ref
	b.u32(0x64)    // flags
	b.u32(0)       // type_name ref
	b.u32(0)       // file_name ref
	b.u32(0)       // effects
	b.f32(0.75)    // volume
	b.f32(1.0)     // pitch
	b.i32(-1)      // group_id
	b.i32(2)       // audio_id

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("SOND", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	sond := f.Sounds()
	require.NotNil(t, sond)
	require.Len(t, sond.Sounds, 1)
	assert.Equal(t, float32(0.75), sond.Sounds[0].Volume)
	assert.Equal(t, int32(2), sond.Sounds[0].AudioID)
}

func TestAudioEntries(t *testing.T) {
	var b builder
	b.u32(1)
	b.u32(164)
	b.u32(4)
	b.raw([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("AUDO", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)

	audo := f.Audio()
	require.NotNil(t, audo)
	require.Len(t, audo.Entries, 1)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, audo.Entries[0].Data)
}

func TestTextureLayoutGMS1BySpacing(t *testing.T) {
	// Two pointers 8 bytes apart select the GMS1 entry layout.
	var b builder
	b.u32(2)
	b.u32(168)
	b.u32(176)
	b.u32(0) // entry 0 unknown
	b.u32(0) // entry 0 data_offset: external
	b.u32(0) // entry 1 unknown
	b.u32(160) // entry 1 data_offset: in bounds

	data := buildForm(
		chunk("GEN8", gen8Body(17, 2, nil)),
		chunk("TXTR", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	txtr := f.Textures()
	require.NotNil(t, txtr)
	require.Len(t, txtr.Entries, 2)
	assert.False(t, txtr.Entries[0].GMS2)
	assert.True(t, txtr.Entries[0].External)
	assert.False(t, txtr.Entries[1].External)
	assert.Equal(t, uint32(160), txtr.Entries[1].DataOffset)
}

func TestTextureLayoutGMS2BySpacing(t *testing.T) {
	// Two pointers 28 bytes apart select the GMS2 entry layout.
	var b builder
	b.u32(2)
	b.u32(168)
	b.u32(196)
	for i := 0; i < 2; i++ {
		b.u32(0) // unknown0
		b.u32(0) // unknown1
		b.u32(1) // scaled
		b.u32(1) // generated
		b.u32(0) // unknown2
		b.u32(0) // width_or_zero
		b.u32(170) // data_offset
	}

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("TXTR", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	txtr := f.Textures()
	require.NotNil(t, txtr)
	require.Len(t, txtr.Entries, 2)
	assert.True(t, txtr.Entries[0].GMS2)
	assert.Equal(t, uint32(1), txtr.Entries[0].Scaled)
	assert.False(t, txtr.Entries[0].External)
}

func TestTextureSingleEntryDefault(t *testing.T) {
	// Single-entry chunks fall back to the bytecode version: GMS1 below
	// BC 17.
	var b builder
	b.u32(1)
	b.u32(164)
	b.u32(0)
	b.u32(0)

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("TXTR", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	txtr := f.Textures()
	require.NotNil(t, txtr)
	require.Len(t, txtr.Entries, 1)
	assert.False(t, txtr.Entries[0].GMS2)
}

func TestTexturePageItems(t *testing.T) {
	var b builder
	b.u32(1)
	b.u32(164)
	for _, v := range []uint16{0, 16, 32, 48, 1, 2, 32, 48, 32, 48, 7} {
		b.u16(v)
	}

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("TPAG", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)

	tpag := f.TexturePages()
	require.NotNil(t, tpag)
	require.Len(t, tpag.Items, 1)
	item := tpag.Items[0]
	assert.Equal(t, uint16(16), item.SourceY)
	assert.Equal(t, uint16(48), item.SourceHeight)
	assert.Equal(t, uint16(7), item.TexturePageID)
}

func TestSpriteEntries(t *testing.T) {
	var b builder
	b.u32(2)
	b.u32(168)
	b.u32(232)
	// Normal sprite with one frame.
	b.u32(0)    // name ref
	b.u32(64)   // width
	b.u32(64)   // height
	b.i32(0)    // bbox_left
	b.i32(63)   // bbox_right
	b.i32(63)   // bbox_bottom
	b.i32(0)    // bbox_top
	b.u32(1)    // transparent
	b.u32(0)    // smooth
	b.u32(1)    // preload
	b.u32(uint32(BboxAutomatic))
	b.u32(uint32(MaskRectangle))
	b.i32(32)   // origin_x
	b.i32(32)   // origin_y
	b.i32(1)    // tpag_count
	b.u32(500)  // tpag ptr
	// Special (sequence-driven) sprite: negative frame count.
	b.u32(0)
	b.u32(16)
	b.u32(16)
	b.i32(0)
	b.i32(15)
	b.i32(15)
	b.i32(0)
	b.u32(0)
	b.u32(0)
	b.u32(0)
	b.u32(uint32(BboxManual))
	b.u32(uint32(MaskPrecise))
	b.i32(0)
	b.i32(0)
	b.i32(-1) // tpag_count

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("SPRT", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	sprt := f.Sprites()
	require.NotNil(t, sprt)
	require.Len(t, sprt.Sprites, 2)

	normal := sprt.Sprites[0]
	assert.False(t, normal.Special)
	assert.Equal(t, []uint32{500}, normal.TpagPtrs)
	assert.Equal(t, MaskRectangle, normal.SepMasks)

	special := sprt.Sprites[1]
	assert.True(t, special.Special)
	assert.Empty(t, special.TpagPtrs)
	assert.Equal(t, int32(-1), special.TpagCount)
}

func TestOptionsConstants(t *testing.T) {
	var b builder
	b.u32(0x11) // flags
	b.raw(make([]byte, 56))
	b.u32(2)
	b.u32(0) // constant 0 name ref
	b.u32(0) // constant 0 value ref
	b.u32(0)
	b.u32(0)

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("OPTN", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)

	optn := f.GameOptions()
	require.NotNil(t, optn)
	assert.Equal(t, uint32(0x11), optn.Flags)
	assert.Len(t, optn.Reserved, 56)
	assert.Len(t, optn.Constants, 2)
}

func TestGlobAndLang(t *testing.T) {
	var glob builder
	glob.u32(2)
	glob.u32(7)
	glob.u32(9)

	var lang builder
	lang.u32(1) // entry_count
	lang.u32(1) // actual_count
	lang.u32(0) // name ref
	lang.u32(0) // region ref

	data := buildForm(
		chunk("GEN8", gen8Body(16, 1, nil)),
		chunk("GLOB", glob.Bytes()),
		chunk("LANG", lang.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	g := f.Globals()
	require.NotNil(t, g)
	assert.Equal(t, []uint32{7, 9}, g.ScriptIDs)

	l := f.Languages()
	require.NotNil(t, l)
	assert.Equal(t, uint32(1), l.EntryCount)
	assert.Len(t, l.Entries, 1)
}

func TestFontGlyphs(t *testing.T) {
	// Font entry at 164; glyph pointer list inline after the 40-byte
	// fixed header; one glyph at 212.
	var b builder
	b.u32(1)
	b.u32(164)
	b.u32(0)   // name ref
	b.u32(0)   // display_name ref
	b.u32(12)  // size
	b.u32(0)   // bold
	b.u32(0)   // italic
	b.u16(32)  // range_start
	b.u8(1)    // charset
	b.u8(1)    // antialias
	b.u32(127) // range_end
	b.u32(0)   // tpag ptr
	b.f32(1)   // scale_x
	b.f32(1)   // scale_y
	b.u32(1)   // glyph count
	b.u32(212) // glyph ptr
	b.u16('A') // character
	b.u16(3)   // x
	b.u16(5)   // y
	b.u16(8)   // width
	b.u16(12)  // height
	b.u16(1)   // shift (i16)
	b.u16(9)   // advance (i16)

	data := buildForm(
		chunk("GEN8", gen8Body(15, 1, nil)),
		chunk("FONT", b.Bytes()),
	)

	f, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, f.ChunkErrors)

	font := f.Fonts()
	require.NotNil(t, font)
	require.Len(t, font.Fonts, 1)
	entry := font.Fonts[0]
	assert.Equal(t, uint16(32), entry.RangeStart)
	require.Len(t, entry.Glyphs, 1)
	assert.Equal(t, uint16('A'), entry.Glyphs[0].Character)
	assert.Equal(t, int16(9), entry.Glyphs[0].Advance)
}
