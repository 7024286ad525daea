// Package gmdata provides a pure Go parser for GameMaker Studio compiled
// game-data containers (data.win / game.win). It exposes a typed view of
// every chunk (game metadata, string table, objects, rooms, scripts,
// sprites, fonts, sounds, textures, bytecode) and decodes the embedded
// GML virtual-machine bytecode through the gml subpackage.
package gmdata

import (
	"os"
	"strings"

	"github.com/scigolib/gmdata/gml"
	"github.com/scigolib/gmdata/internal/utils"
)

// Options configures container parsing behaviour.
type Options struct {
	// Strict aborts on the first chunk parse error. The default (tolerant)
	// mode records per-chunk errors and preserves the raw chunk bytes.
	Strict bool

	// DetectCycles tracks visited pointer-list offsets per chunk and fails
	// on re-entry. Offsets in well-formed files are strictly monotonic per
	// entry group, so this is a defensive measure.
	DetectCycles bool
}

// ChunkError records a sub-parser failure for one chunk in tolerant mode.
type ChunkError struct {
	Tag string
	Err error
}

// File is a parsed GameMaker data container. All offsets held by the
// parsed structures are absolute from the FORM magic; the buffer is
// normalised so those offsets index the file data directly.
type File struct {
	data       []byte // buffer starting at the FORM magic
	baseOffset int64  // PE envelope bytes stripped before FORM

	// DeclaredSize is the u32 size field following the FORM magic.
	DeclaredSize uint32

	// Chunks in file order. GEN8 is always first in well-formed files.
	Chunks []*Chunk

	// BytecodeVersion and IDEVersionMajor are lifted from GEN8 and govern
	// the layout of CODE, FUNC, VARI and several asset chunks.
	BytecodeVersion uint8
	IDEVersionMajor uint32

	// ChunkErrors collects per-chunk failures in tolerant mode.
	ChunkErrors []ChunkError

	byTag map[string]*Chunk
}

// Chunk is one tagged, sized segment in the FORM container.
type Chunk struct {
	Tag   string
	Size  uint32
	Start uint32 // absolute offset of the 8-byte chunk header
	Raw   []byte // body bytes, aliasing the file buffer
	Body  any    // typed body, nil for unknown or failed chunks
}

// BodyStart returns the absolute offset of the chunk body.
func (ch *Chunk) BodyStart() uint32 {
	return ch.Start + 8
}

// BodyEnd returns the absolute offset one past the chunk body.
func (ch *Chunk) BodyEnd() uint32 {
	return ch.Start + 8 + ch.Size
}

// Parse parses a GameMaker data container from a byte buffer in tolerant
// mode. The buffer may carry a PE envelope before the FORM magic.
func Parse(data []byte) (*File, error) {
	return ParseWithOptions(data, Options{})
}

// ParseWithOptions parses with explicit parsing options.
func ParseWithOptions(data []byte, opts Options) (*File, error) {
	return parseContainer(data, opts)
}

// Open reads and parses a data.win file from disk in tolerant mode.
func Open(path string) (*File, error) {
	//nolint:gosec // G304: user-provided filename is intentional for a file parser
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError("file read failed", err)
	}
	return Parse(data)
}

// BaseOffset returns the number of PE-envelope bytes that preceded the
// FORM magic in the original input (0 for a bare container).
func (f *File) BaseOffset() int64 {
	return f.baseOffset
}

// ChunkByTag returns the first chunk with the given 4-byte tag, or nil.
func (f *File) ChunkByTag(tag string) *Chunk {
	return f.byTag[tag]
}

func chunkBody[T any](f *File, tag string) *T {
	if ch := f.byTag[tag]; ch != nil {
		if b, ok := ch.Body.(*T); ok {
			return b
		}
	}
	return nil
}

// Gen8 returns the parsed GEN8 metadata, or nil when absent.
func (f *File) Gen8() *Gen8 { return chunkBody[Gen8](f, "GEN8") }

// Strings returns the STRG string table, or nil when absent.
func (f *File) Strings() *StringTable { return chunkBody[StringTable](f, "STRG") }

// Code returns the CODE chunk, or nil when absent.
func (f *File) Code() *CodeChunk { return chunkBody[CodeChunk](f, "CODE") }

// Functions returns the FUNC chunk, or nil when absent.
func (f *File) Functions() *FuncChunk { return chunkBody[FuncChunk](f, "FUNC") }

// Variables returns the VARI chunk, or nil when absent.
func (f *File) Variables() *VariChunk { return chunkBody[VariChunk](f, "VARI") }

// Scripts returns the SCPT chunk, or nil when absent.
func (f *File) Scripts() *ScriptChunk { return chunkBody[ScriptChunk](f, "SCPT") }

// Globals returns the GLOB chunk, or nil when absent.
func (f *File) Globals() *GlobChunk { return chunkBody[GlobChunk](f, "GLOB") }

// Languages returns the LANG chunk, or nil when absent.
func (f *File) Languages() *LangChunk { return chunkBody[LangChunk](f, "LANG") }

// Sequences returns the SEQN chunk, or nil when absent.
func (f *File) Sequences() *SeqChunk { return chunkBody[SeqChunk](f, "SEQN") }

// Shaders returns the SHDR chunk, or nil when absent.
func (f *File) Shaders() *ShaderChunk { return chunkBody[ShaderChunk](f, "SHDR") }

// Backgrounds returns the BGND chunk, or nil when absent.
func (f *File) Backgrounds() *BackgroundChunk { return chunkBody[BackgroundChunk](f, "BGND") }

// Sounds returns the SOND chunk, or nil when absent.
func (f *File) Sounds() *SoundChunk { return chunkBody[SoundChunk](f, "SOND") }

// Audio returns the AUDO chunk, or nil when absent.
func (f *File) Audio() *AudioChunk { return chunkBody[AudioChunk](f, "AUDO") }

// Textures returns the TXTR chunk, or nil when absent.
func (f *File) Textures() *TextureChunk { return chunkBody[TextureChunk](f, "TXTR") }

// TexturePages returns the TPAG chunk, or nil when absent.
func (f *File) TexturePages() *TexturePageChunk { return chunkBody[TexturePageChunk](f, "TPAG") }

// Sprites returns the SPRT chunk, or nil when absent.
func (f *File) Sprites() *SpriteChunk { return chunkBody[SpriteChunk](f, "SPRT") }

// Fonts returns the FONT chunk, or nil when absent.
func (f *File) Fonts() *FontChunk { return chunkBody[FontChunk](f, "FONT") }

// GameOptions returns the OPTN chunk, or nil when absent.
func (f *File) GameOptions() *OptionsChunk { return chunkBody[OptionsChunk](f, "OPTN") }

// Objects returns the OBJT chunk, or nil when absent.
func (f *File) Objects() *ObjectChunk { return chunkBody[ObjectChunk](f, "OBJT") }

// Rooms returns the ROOM chunk, or nil when absent.
func (f *File) Rooms() *RoomChunk { return chunkBody[RoomChunk](f, "ROOM") }

// ResolveString materialises the GameMaker string a StringRef points to.
// The reference addresses the character bytes; the u32 length prefix sits
// four bytes before, and a NUL terminator follows the characters.
func (f *File) ResolveString(ref StringRef) (string, error) {
	if ref < 4 || int64(ref) >= int64(len(f.data)) {
		return "", utils.NewError(utils.ErrInvalidPointer, int64(ref), "string reference")
	}
	cur := NewCursor(f.data)
	if err := cur.Seek(int64(ref - 4)); err != nil {
		return "", err
	}
	return readGmString(cur)
}

// CodeByteRange returns the absolute offset and length of a code entry's
// bytecode. For shared-blob entries the length is the gap-based value
// reconstructed at parse time.
func (f *File) CodeByteRange(entry *CodeEntry) (offset, length uint32) {
	return entry.BytecodeOffset, entry.BytecodeLength
}

// DecodeCode constructs a lazy, restartable instruction decoder over a
// code entry's bytecode range, selecting the instruction encoding from
// the container's bytecode version.
func (f *File) DecodeCode(entry *CodeEntry) (*gml.Decoder, error) {
	start := int64(entry.BytecodeOffset)
	end := start + int64(entry.BytecodeLength)
	if start < 0 || end > int64(len(f.data)) || end < start {
		return nil, utils.NewError(utils.ErrInvalidPointer, start, "code entry byte range")
	}
	return gml.NewDecoder(f.data[start:end], f.BytecodeVersion)
}

// ScriptCode resolves a SCPT entry to its CODE entry. Plain scripts index
// the CODE list directly; GMS2.3 constructors and nested scripts (high
// bit set on the code id) resolve by the canonical "gml_Script_<name>"
// code entry name instead.
func (f *File) ScriptCode(script *ScriptEntry) (*CodeEntry, error) {
	code := f.Code()
	if code == nil {
		return nil, utils.NewError(utils.ErrInvalidPointer, 0, "no CODE chunk")
	}
	if !script.IsConstructor() {
		idx := int(script.CodeID)
		if idx < 0 || idx >= len(code.Entries) {
			return nil, utils.NewError(utils.ErrInvalidPointer, int64(script.CodeID), "script code index")
		}
		return code.Entries[idx], nil
	}
	name, err := f.ResolveString(script.Name)
	if err != nil {
		return nil, err
	}
	want := "gml_Script_" + name
	for _, entry := range code.Entries {
		entryName, err := f.ResolveString(entry.Name)
		if err != nil {
			continue
		}
		if entryName == want || strings.HasPrefix(entryName, want+"_") {
			return entry, nil
		}
	}
	return nil, utils.NewError(utils.ErrInvalidPointer, int64(script.Name), "constructor script has no matching code entry")
}

// ErrorOffset reports the absolute byte offset carried by a parse error.
func ErrorOffset(err error) (int64, bool) {
	return utils.ErrorOffset(err)
}
