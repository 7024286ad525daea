package gmdata

// TextureChunk holds texture atlas pages. Each entry points at raw image
// data (PNG, or QOI in recent GMS releases) embedded in the container,
// or at an external texture file.
type TextureChunk struct {
	Entries []*TextureEntry
}

// TextureEntry is one atlas page. The GMS1 layout is 8 bytes, the GMS2
// layout 28; the parser disambiguates by pointer spacing. External
// pages (data offset zero or past the file end) have no embedded data.
type TextureEntry struct {
	GMS2 bool

	// GMS1 fields.
	Unknown uint32

	// GMS2 fields.
	Unknown0    uint32
	Unknown1    uint32
	Scaled      uint32
	Generated   uint32
	Unknown2    uint32
	WidthOrZero uint32

	DataOffset uint32
	External   bool
}

func (p *parser) parseTxtr(ch *Chunk) (*TextureChunk, error) {
	list, err := p.readPointerList("TXTR pointer list")
	if err != nil {
		return nil, err
	}

	// Layout detection: two adjacent pointers at most 12 bytes apart can
	// only hold the 8-byte GMS1 entry. Single-entry chunks default to
	// GMS1 unless the bytecode version says GMS2.
	gms2 := p.f.BytecodeVersion >= 17
	if list.Count() >= 2 {
		gms2 = list.Offsets[1]-list.Offsets[0] > 12
	}

	body := &TextureChunk{Entries: make([]*TextureEntry, 0, list.Count())}
	err = p.resolveEach(list, "TXTR entry", func(i int, off uint32) error {
		e := &TextureEntry{GMS2: gms2}
		var err error
		if gms2 {
			if e.Unknown0, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if e.Unknown1, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if e.Scaled, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if e.Generated, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if e.Unknown2, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if e.WidthOrZero, err = p.cur.ReadU32(); err != nil {
				return err
			}
		} else {
			if e.Unknown, err = p.cur.ReadU32(); err != nil {
				return err
			}
		}
		if e.DataOffset, err = p.cur.ReadU32(); err != nil {
			return err
		}
		e.External = e.DataOffset == 0 || int64(e.DataOffset) >= int64(p.cur.Len())
		body.Entries = append(body.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// TexturePageChunk holds texture page items: rectangular sub-regions on
// atlas pages. Sprite frames, font glyphs and background tiles each map
// to one item.
type TexturePageChunk struct {
	Items []*TexturePageItem
}

// TexturePageItem is a 22-byte atlas region: where the pixels live on
// the page, where they land on the target surface, and the logical
// render size.
type TexturePageItem struct {
	SourceX       uint16
	SourceY       uint16
	SourceWidth   uint16
	SourceHeight  uint16
	TargetX       uint16
	TargetY       uint16
	TargetWidth   uint16
	TargetHeight  uint16
	RenderWidth   uint16
	RenderHeight  uint16
	TexturePageID uint16
}

func (p *parser) parseTpag(ch *Chunk) (*TexturePageChunk, error) {
	list, err := p.readPointerList("TPAG pointer list")
	if err != nil {
		return nil, err
	}
	body := &TexturePageChunk{Items: make([]*TexturePageItem, 0, list.Count())}
	err = p.resolveEach(list, "TPAG entry", func(i int, off uint32) error {
		item := &TexturePageItem{}
		fields := []*uint16{
			&item.SourceX, &item.SourceY, &item.SourceWidth, &item.SourceHeight,
			&item.TargetX, &item.TargetY, &item.TargetWidth, &item.TargetHeight,
			&item.RenderWidth, &item.RenderHeight, &item.TexturePageID,
		}
		for _, f := range fields {
			v, err := p.cur.ReadU16()
			if err != nil {
				return err
			}
			*f = v
		}
		body.Items = append(body.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// BboxMode selects how a sprite's bounding box is computed.
type BboxMode uint32

// Bounding box modes.
const (
	BboxAutomatic BboxMode = 0
	BboxFullImage BboxMode = 1
	BboxManual    BboxMode = 2
)

// SepMasks selects the collision mask shape for a sprite.
type SepMasks uint32

// Collision mask kinds.
const (
	MaskPrecise          SepMasks = 0
	MaskRectangle        SepMasks = 1
	MaskRotatedRectangle SepMasks = 2
	MaskDiamond          SepMasks = 3
)

// SpriteChunk holds sprite asset metadata: dimensions, bounding boxes
// and per-frame texture page references.
type SpriteChunk struct {
	Sprites []*SpriteEntry
}

// SpriteEntry is one sprite. A negative frame count marks a GMS2.3
// sequence-driven "special" sprite with no inline TPAG list.
type SpriteEntry struct {
	Name        StringRef
	Width       uint32
	Height      uint32
	BboxLeft    int32
	BboxRight   int32
	BboxBottom  int32
	BboxTop     int32
	Transparent uint32
	Smooth      uint32
	Preload     uint32
	BboxMode    BboxMode
	SepMasks    SepMasks
	OriginX     int32
	OriginY     int32

	TpagCount int32
	TpagPtrs  []uint32
	Special   bool
}

func (p *parser) parseSprt(ch *Chunk) (*SpriteChunk, error) {
	list, err := p.readPointerList("SPRT pointer list")
	if err != nil {
		return nil, err
	}
	body := &SpriteChunk{Sprites: make([]*SpriteEntry, 0, list.Count())}
	err = p.resolveEach(list, "SPRT entry", func(i int, off uint32) error {
		e := &SpriteEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Width, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.Height, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.BboxLeft, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.BboxRight, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.BboxBottom, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.BboxTop, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.Transparent, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.Smooth, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.Preload, err = p.cur.ReadU32(); err != nil {
			return err
		}
		mode, err := p.cur.ReadU32()
		if err != nil {
			return err
		}
		e.BboxMode = BboxMode(mode)
		masks, err := p.cur.ReadU32()
		if err != nil {
			return err
		}
		e.SepMasks = SepMasks(masks)
		if e.OriginX, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.OriginY, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.TpagCount, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.TpagCount < 0 {
			e.Special = true
		} else {
			e.TpagPtrs = make([]uint32, 0, e.TpagCount)
			for j := int32(0); j < e.TpagCount; j++ {
				ptr, err := p.cur.ReadU32()
				if err != nil {
					return err
				}
				e.TpagPtrs = append(e.TpagPtrs, ptr)
			}
		}
		body.Sprites = append(body.Sprites, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
