package gmdata

import (
	"github.com/scigolib/gmdata/internal/utils"
)

// PointerList is the format's ubiquitous indirection: a count-prefixed
// table of absolute file offsets, each pointing at a typed entry. Entry
// sizes are not stored; spacing between consecutive offsets bounds every
// entry but the last, whose upper bound is the enclosing chunk's end.
type PointerList struct {
	Offsets []uint32
}

// Count returns the number of entries in the list.
func (l *PointerList) Count() int {
	return len(l.Offsets)
}

// EntrySpan returns the byte size available to entry i, from pointer
// spacing or the chunk body end for the last entry.
func (l *PointerList) EntrySpan(i int, bodyEnd uint32) uint32 {
	if i+1 < len(l.Offsets) {
		return l.Offsets[i+1] - l.Offsets[i]
	}
	return bodyEnd - l.Offsets[i]
}

// readPointerList reads a count-prefixed offset table at the cursor.
func (p *parser) readPointerList(context string) (*PointerList, error) {
	at := p.cur.Pos()
	count, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateEntryCount(uint64(count), 4, uint64(p.cur.Remaining()), context); err != nil {
		return nil, utils.NewError(utils.ErrTruncated, at, context)
	}
	list := &PointerList{Offsets: make([]uint32, count)}
	for i := range list.Offsets {
		off, err := p.cur.ReadU32()
		if err != nil {
			return nil, err
		}
		list.Offsets[i] = off
	}
	return list, nil
}

// checkPointer validates one pointer-list offset: zero and out-of-bounds
// offsets are invalid, and with cycle detection enabled an offset may be
// visited at most once per chunk body.
func (p *parser) checkPointer(off uint32, context string) error {
	if off == 0 || int64(off) >= int64(p.cur.Len()) {
		return utils.NewError(utils.ErrInvalidPointer, int64(off), context)
	}
	if p.visited != nil {
		if _, seen := p.visited[off]; seen {
			return utils.NewError(utils.ErrCycleDetected, int64(off), context)
		}
		p.visited[off] = struct{}{}
	}
	return nil
}

// resolveEach resolves every offset in the list: save cursor position,
// seek to the absolute offset, parse the entry via fn, restore.
func (p *parser) resolveEach(list *PointerList, context string, fn func(i int, off uint32) error) error {
	for i, off := range list.Offsets {
		if err := p.checkPointer(off, context); err != nil {
			return err
		}
		err := p.cur.WithSavedPos(func() error {
			if err := p.cur.Seek(int64(off)); err != nil {
				return err
			}
			return fn(i, off)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
