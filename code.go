package gmdata

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/scigolib/gmdata/internal/utils"
)

// CodeChunk holds the bytecode entry headers for every script and event
// handler. An empty chunk means the game was compiled to native code.
type CodeChunk struct {
	Native  bool
	Entries []*CodeEntry
}

// CodeEntry is one code entry header. Exactly one of V14/V15 is set,
// selected by the container's bytecode version. BytecodeOffset and
// BytecodeLength are the resolved byte range fed to the gml decoder; for
// GMS2.3 shared blobs the length is reconstructed from sorted
// offset-in-blob gaps after all headers are read.
type CodeEntry struct {
	HeaderOffset uint32
	Name         StringRef

	V14 *CodeEntryV14
	V15 *CodeEntryV15

	BytecodeOffset uint32
	BytecodeLength uint32
}

// CodeEntryV14 is the BC <= 14 shape: bytecode follows the 8-byte header
// immediately and the length is stored.
type CodeEntryV14 struct {
	Length uint32
}

// CodeEntryV15 is the BC >= 15 shape. BlobAddr is the resolved absolute
// address of the (possibly shared) bytecode blob:
// (file offset of the BCRelAddr field) + BCRelAddr.
type CodeEntryV15 struct {
	BlobLength   uint32
	LocalsCount  uint16
	ArgsCount    uint16
	BCRelAddr    int32
	OffsetInBlob uint32
	BlobAddr     uint32
}

func (p *parser) parseCode(ch *Chunk) (*CodeChunk, error) {
	if ch.Size == 0 {
		return &CodeChunk{Native: true}, nil
	}
	if err := p.checkBytecodeVersion(ch); err != nil {
		return nil, err
	}
	list, err := p.readPointerList("CODE pointer list")
	if err != nil {
		return nil, err
	}
	body := &CodeChunk{Entries: make([]*CodeEntry, 0, list.Count())}
	v15 := p.f.BytecodeVersion >= 15
	err = p.resolveEach(list, "CODE entry", func(i int, off uint32) error {
		entry, err := p.readCodeEntry(off, v15)
		if err != nil {
			return err
		}
		body.Entries = append(body.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if v15 {
		resolveBlobRanges(body.Entries)
	}
	return body, nil
}

// checkBytecodeVersion gates the version-branched chunks. An unknown
// version in GEN8 alone is tolerated; descending into CODE, FUNC or VARI
// with one is not.
func (p *parser) checkBytecodeVersion(ch *Chunk) error {
	if p.f.BytecodeVersion < 13 {
		return utils.NewError(utils.ErrVersionUnsupported, int64(ch.BodyStart()), ch.Tag+" chunk")
	}
	return nil
}

func (p *parser) readCodeEntry(off uint32, v15 bool) (*CodeEntry, error) {
	entry := &CodeEntry{HeaderOffset: off}
	var err error
	if entry.Name, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if !v15 {
		length, err := p.cur.ReadU32()
		if err != nil {
			return nil, err
		}
		entry.V14 = &CodeEntryV14{Length: length}
		entry.BytecodeOffset = off + 8
		entry.BytecodeLength = length
		return entry, nil
	}
	v := &CodeEntryV15{}
	if v.BlobLength, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if v.LocalsCount, err = p.cur.ReadU16(); err != nil {
		return nil, err
	}
	if v.ArgsCount, err = p.cur.ReadU16(); err != nil {
		return nil, err
	}
	relFieldOffset := uint32(p.cur.Pos())
	if v.BCRelAddr, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if v.OffsetInBlob, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	blobAddr := int64(relFieldOffset) + int64(v.BCRelAddr)
	if blobAddr < 0 || blobAddr > int64(p.cur.Len()) {
		return nil, utils.NewError(utils.ErrInvalidPointer, blobAddr, "code entry blob address")
	}
	v.BlobAddr = uint32(blobAddr)
	entry.V15 = v
	entry.BytecodeOffset = v.BlobAddr + v.OffsetInBlob
	return entry, nil
}

// resolveBlobRanges reconstructs per-entry bytecode lengths for V15
// entries. GMS2.3 child functions (lambdas, struct constructors) share
// one blob with their parent and report the total blob length; the
// per-entry length is the gap to the next entry in blob-offset order, or
// the tail of the blob for the last entry. Single-entry groups degrade to
// the plain whole-blob case.
func resolveBlobRanges(entries []*CodeEntry) {
	groups := make(map[uint32][]*CodeEntry)
	for _, e := range entries {
		groups[e.V15.BlobAddr] = append(groups[e.V15.BlobAddr], e)
	}
	addrs := maps.Keys(groups)
	slices.Sort(addrs)
	for _, addr := range addrs {
		group := groups[addr]
		slices.SortStableFunc(group, func(a, b *CodeEntry) int {
			switch {
			case a.V15.OffsetInBlob < b.V15.OffsetInBlob:
				return -1
			case a.V15.OffsetInBlob > b.V15.OffsetInBlob:
				return 1
			default:
				return 0
			}
		})
		for i, e := range group {
			if i+1 < len(group) {
				e.BytecodeLength = group[i+1].V15.OffsetInBlob - e.V15.OffsetInBlob
			} else {
				e.BytecodeLength = e.V15.BlobLength - e.V15.OffsetInBlob
			}
		}
	}
}
