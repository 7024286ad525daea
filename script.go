package gmdata

// ScriptChunk maps script asset names to CODE entries.
type ScriptChunk struct {
	Scripts []*ScriptEntry
}

// ScriptEntry is one script asset. In GMS2.3+, constructor functions and
// nested scripts carry a code id with the high bit set; those do not
// index CODE directly and are resolved by canonical name instead (see
// File.ScriptCode).
type ScriptEntry struct {
	Name   StringRef
	CodeID uint32
}

// IsConstructor reports whether the entry is a GMS2.3 constructor or
// nested script (high bit set on the code id).
func (e *ScriptEntry) IsConstructor() bool {
	return e.CodeID >= 0x8000_0000
}

func (p *parser) parseScpt(ch *Chunk) (*ScriptChunk, error) {
	list, err := p.readPointerList("SCPT pointer list")
	if err != nil {
		return nil, err
	}
	body := &ScriptChunk{Scripts: make([]*ScriptEntry, 0, list.Count())}
	err = p.resolveEach(list, "SCPT entry", func(i int, off uint32) error {
		e := &ScriptEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.CodeID, err = p.cur.ReadU32(); err != nil {
			return err
		}
		body.Scripts = append(body.Scripts, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GlobChunk lists CODE indices of global init scripts, which execute at
// game startup before the first room loads. Present only for BC >= 16.
type GlobChunk struct {
	ScriptIDs []uint32
}

func (p *parser) parseGlob(ch *Chunk) (*GlobChunk, error) {
	count, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	body := &GlobChunk{ScriptIDs: make([]uint32, 0, count)}
	for i := uint32(0); i < count; i++ {
		id, err := p.cur.ReadU32()
		if err != nil {
			return nil, err
		}
		body.ScriptIDs = append(body.ScriptIDs, id)
	}
	return body, nil
}

// LangChunk holds language and localisation configuration. Present only
// for BC >= 16.
type LangChunk struct {
	EntryCount uint32
	Entries    []LangEntry
}

// LangEntry names one language and its region.
type LangEntry struct {
	Name   StringRef
	Region StringRef
}

func (p *parser) parseLang(ch *Chunk) (*LangChunk, error) {
	body := &LangChunk{}
	var err error
	if body.EntryCount, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	actual, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	body.Entries = make([]LangEntry, 0, actual)
	for i := uint32(0); i < actual; i++ {
		var e LangEntry
		if e.Name, err = p.readStringRef(); err != nil {
			return nil, err
		}
		if e.Region, err = p.readStringRef(); err != nil {
			return nil, err
		}
		body.Entries = append(body.Entries, e)
	}
	return body, nil
}
