package gmdata

// FontChunk holds font asset definitions with per-glyph texture atlas
// coordinates.
type FontChunk struct {
	Fonts []*FontEntry
}

// FontEntry is one font. The glyph pointer list follows the fixed header
// inline.
type FontEntry struct {
	Name        StringRef
	DisplayName StringRef
	Size        uint32
	Bold        uint32
	Italic      uint32
	RangeStart  uint16
	Charset     uint8
	Antialias   uint8
	RangeEnd    uint32
	TpagPtr     uint32
	ScaleX      float32
	ScaleY      float32
	Glyphs      []Glyph
}

// Glyph is the per-character rendering record.
type Glyph struct {
	Character uint16
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	Shift     int16
	Advance   int16
}

func (p *parser) parseFont(ch *Chunk) (*FontChunk, error) {
	list, err := p.readPointerList("FONT pointer list")
	if err != nil {
		return nil, err
	}
	body := &FontChunk{Fonts: make([]*FontEntry, 0, list.Count())}
	err = p.resolveEach(list, "FONT entry", func(i int, off uint32) error {
		e := &FontEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.DisplayName, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Size, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.Bold, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.Italic, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.RangeStart, err = p.cur.ReadU16(); err != nil {
			return err
		}
		if e.Charset, err = p.cur.ReadU8(); err != nil {
			return err
		}
		if e.Antialias, err = p.cur.ReadU8(); err != nil {
			return err
		}
		if e.RangeEnd, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.TpagPtr, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.ScaleX, err = p.cur.ReadF32(); err != nil {
			return err
		}
		if e.ScaleY, err = p.cur.ReadF32(); err != nil {
			return err
		}
		glyphList, err := p.readPointerList("FONT glyph list")
		if err != nil {
			return err
		}
		e.Glyphs = make([]Glyph, 0, glyphList.Count())
		err = p.resolveEach(glyphList, "FONT glyph", func(j int, glyphOff uint32) error {
			var g Glyph
			var err error
			if g.Character, err = p.cur.ReadU16(); err != nil {
				return err
			}
			if g.X, err = p.cur.ReadU16(); err != nil {
				return err
			}
			if g.Y, err = p.cur.ReadU16(); err != nil {
				return err
			}
			if g.Width, err = p.cur.ReadU16(); err != nil {
				return err
			}
			if g.Height, err = p.cur.ReadU16(); err != nil {
				return err
			}
			if g.Shift, err = p.cur.ReadI16(); err != nil {
				return err
			}
			if g.Advance, err = p.cur.ReadI16(); err != nil {
				return err
			}
			e.Glyphs = append(e.Glyphs, g)
			return nil
		})
		if err != nil {
			return err
		}
		body.Fonts = append(body.Fonts, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
