package gmdata

import (
	"github.com/scigolib/gmdata/internal/utils"
)

// StringRef is a u32 absolute file offset pointing at the character bytes
// of a GameMaker string. The u32 length prefix sits at offset-4 and a NUL
// terminator follows the characters. References are stored raw and
// materialised on demand via File.ResolveString.
type StringRef uint32

// StringTable is the parsed STRG chunk: every interned string in the
// file. Offsets in the table point at the length prefix, unlike StringRef
// values used elsewhere, which point at the character bytes.
type StringTable struct {
	Entries []StringEntry
}

// StringEntry is one interned string and the absolute offset of its
// length prefix.
type StringEntry struct {
	Offset uint32
	Value  string
}

// CharOffset returns the StringRef form of the entry, the way other
// chunks reference it.
func (e StringEntry) CharOffset() StringRef {
	return StringRef(e.Offset + 4)
}

// readGmString reads [length: u32][chars: u8 × length][NUL] at the cursor.
func readGmString(cur *Cursor) (string, error) {
	start := cur.Pos()
	length, err := cur.ReadU32()
	if err != nil {
		return "", err
	}
	chars, err := cur.ReadBytes(int(length))
	if err != nil {
		return "", utils.NewError(utils.ErrMalformedString, start, "string characters")
	}
	term, err := cur.ReadU8()
	if err != nil || term != 0 {
		return "", utils.NewError(utils.ErrMalformedString, start, "string terminator")
	}
	return string(chars), nil
}

// parseStrg parses the STRG pointer list. Each offset points at a
// GmString's length prefix.
func (p *parser) parseStrg(ch *Chunk) (*StringTable, error) {
	list, err := p.readPointerList("STRG pointer list")
	if err != nil {
		return nil, err
	}
	table := &StringTable{Entries: make([]StringEntry, 0, list.Count())}
	err = p.resolveEach(list, "STRG entry", func(i int, off uint32) error {
		value, err := readGmString(p.cur)
		if err != nil {
			return err
		}
		table.Entries = append(table.Entries, StringEntry{Offset: off, Value: value})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// readStringRef reads a raw u32 string reference at the cursor.
func (p *parser) readStringRef() (StringRef, error) {
	v, err := p.cur.ReadU32()
	return StringRef(v), err
}
