package gmdata

import (
	"bytes"
	"encoding/binary"

	"github.com/scigolib/gmdata/internal/utils"
)

// Magic is the four-byte tag identifying a GameMaker container.
const Magic = "FORM"

// parser carries the shared state of one container parse: the global
// cursor, the file being built, and the per-chunk cycle-detection set.
type parser struct {
	cur     *Cursor
	f       *File
	opts    Options
	visited map[uint32]struct{}
}

// findForm scans for the first FORM magic whose following u32 size field
// fits in the remaining buffer. Bytes before it are a PE envelope (some
// GM1 games embed data.win inside the game executable).
func findForm(data []byte) int64 {
	from := 0
	for {
		i := bytes.Index(data[from:], []byte(Magic))
		if i < 0 {
			return -1
		}
		at := from + i
		if at+8 <= len(data) {
			size := binary.LittleEndian.Uint32(data[at+4:])
			if uint64(size)+8 <= uint64(len(data)-at) {
				return int64(at)
			}
		}
		from = at + 1
	}
}

func parseContainer(data []byte, opts Options) (*File, error) {
	base := findForm(data)
	if base < 0 {
		return nil, utils.NewError(utils.ErrBadMagic, 0, "FORM magic not found")
	}

	f := &File{
		data:       data[base:],
		baseOffset: base,
		byTag:      make(map[string]*Chunk),
	}
	p := &parser{
		cur:  NewCursor(f.data),
		f:    f,
		opts: opts,
	}

	if _, err := p.cur.ReadBytes(4); err != nil { // magic, verified by the scan
		return nil, err
	}
	declared, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	f.DeclaredSize = declared

	// Chunk region runs to the declared boundary or EOF, whichever first.
	end := int64(8) + int64(declared)
	if end > int64(len(f.data)) {
		end = int64(len(f.data))
	}

	for p.cur.Pos() < end && !p.cur.EOF() {
		if err := p.parseChunk(); err != nil {
			return nil, err
		}
	}

	if len(f.Chunks) == 0 || f.Chunks[0].Tag != "GEN8" {
		err := utils.NewError(utils.ErrBadMagic, 8, "GEN8 is not the first chunk")
		if opts.Strict {
			return nil, err
		}
		f.ChunkErrors = append(f.ChunkErrors, ChunkError{Tag: "GEN8", Err: err})
	}
	return f, nil
}

// parseChunk reads one chunk header, dispatches the tag-specific body
// parser over the body range, and advances the cursor to the next chunk
// header regardless of how much the sub-parser consumed.
func (p *parser) parseChunk() error {
	start := p.cur.Pos()
	tagBytes, err := p.cur.ReadBytes(4)
	if err != nil {
		return err
	}
	for _, b := range tagBytes {
		if b < 0x20 || b > 0x7E {
			return utils.NewError(utils.ErrBadMagic, start, "chunk tag is not printable ASCII")
		}
	}
	tag := string(tagBytes)
	size, err := p.cur.ReadU32()
	if err != nil {
		return err
	}

	bodyStart := p.cur.Pos()
	raw, err := p.cur.ReadBytes(int(size))
	if err != nil {
		return utils.NewError(utils.ErrTruncated, bodyStart, "chunk body for "+tag)
	}

	ch := &Chunk{
		Tag:   tag,
		Size:  size,
		Start: uint32(start),
		Raw:   raw,
	}
	p.f.Chunks = append(p.f.Chunks, ch)
	if _, dup := p.f.byTag[tag]; !dup {
		p.f.byTag[tag] = ch
	}

	// Sub-parsers run with the global cursor seeked to the body start so
	// absolute pointer-list offsets resolve directly; the position is
	// restored to the next chunk header afterwards.
	next := p.cur.Pos()
	p.visited = nil
	if p.opts.DetectCycles {
		p.visited = make(map[uint32]struct{})
	}
	err = p.cur.WithSavedPos(func() error {
		if err := p.cur.Seek(bodyStart); err != nil {
			return err
		}
		body, err := p.parseBody(ch)
		if err != nil {
			return err
		}
		ch.Body = body
		return nil
	})
	if err != nil {
		if p.opts.Strict {
			return err
		}
		ch.Body = nil
		p.f.ChunkErrors = append(p.f.ChunkErrors, ChunkError{Tag: tag, Err: err})
	}
	return p.cur.Seek(next)
}

// parseBody dispatches on the chunk tag. Unknown tags are preserved as
// raw bytes and are not an error.
func (p *parser) parseBody(ch *Chunk) (any, error) {
	switch ch.Tag {
	case "GEN8":
		return p.parseGen8(ch)
	case "STRG":
		return p.parseStrg(ch)
	case "CODE":
		return p.parseCode(ch)
	case "FUNC":
		return p.parseFunc(ch)
	case "VARI":
		return p.parseVari(ch)
	case "SCPT":
		return p.parseScpt(ch)
	case "GLOB":
		return p.parseGlob(ch)
	case "LANG":
		return p.parseLang(ch)
	case "SEQN":
		return p.parseSeqn(ch)
	case "SHDR":
		return p.parseShdr(ch)
	case "BGND":
		return p.parseBgnd(ch)
	case "SOND":
		return p.parseSond(ch)
	case "AUDO":
		return p.parseAudo(ch)
	case "TXTR":
		return p.parseTxtr(ch)
	case "TPAG":
		return p.parseTpag(ch)
	case "SPRT":
		return p.parseSprt(ch)
	case "OPTN":
		return p.parseOptn(ch)
	case "FONT":
		return p.parseFont(ch)
	case "OBJT":
		return p.parseObjt(ch)
	case "ROOM":
		return p.parseRoom(ch)
	default:
		return nil, nil
	}
}
