package gmdata

// SoundChunk holds sound asset metadata: file references, volume and
// audio group assignment.
type SoundChunk struct {
	Sounds []*SoundEntry
}

// SoundEntry is one sound asset. AudioID indexes AUDO for embedded
// sounds; -1 means the sound streams from an external file.
type SoundEntry struct {
	Name     StringRef
	Flags    uint32
	TypeName StringRef
	FileName StringRef
	Effects  uint32
	Volume   float32
	Pitch    float32
	GroupID  int32
	AudioID  int32
}

func (p *parser) parseSond(ch *Chunk) (*SoundChunk, error) {
	list, err := p.readPointerList("SOND pointer list")
	if err != nil {
		return nil, err
	}
	body := &SoundChunk{Sounds: make([]*SoundEntry, 0, list.Count())}
	err = p.resolveEach(list, "SOND entry", func(i int, off uint32) error {
		e := &SoundEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Flags, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.TypeName, err = p.readStringRef(); err != nil {
			return err
		}
		if e.FileName, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Effects, err = p.cur.ReadU32(); err != nil {
			return err
		}
		if e.Volume, err = p.cur.ReadF32(); err != nil {
			return err
		}
		if e.Pitch, err = p.cur.ReadF32(); err != nil {
			return err
		}
		if e.GroupID, err = p.cur.ReadI32(); err != nil {
			return err
		}
		if e.AudioID, err = p.cur.ReadI32(); err != nil {
			return err
		}
		body.Sounds = append(body.Sounds, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// AudioChunk holds embedded audio files (WAV, OGG, MP3), indexed by
// SoundEntry.AudioID.
type AudioChunk struct {
	Entries []AudioEntry
}

// AudioEntry is one length-prefixed audio blob. Data aliases the file
// buffer.
type AudioEntry struct {
	Data []byte
}

func (p *parser) parseAudo(ch *Chunk) (*AudioChunk, error) {
	list, err := p.readPointerList("AUDO pointer list")
	if err != nil {
		return nil, err
	}
	body := &AudioChunk{Entries: make([]AudioEntry, 0, list.Count())}
	err = p.resolveEach(list, "AUDO entry", func(i int, off uint32) error {
		length, err := p.cur.ReadU32()
		if err != nil {
			return err
		}
		data, err := p.cur.ReadBytes(int(length))
		if err != nil {
			return err
		}
		body.Entries = append(body.Entries, AudioEntry{Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// ShaderChunk holds shader asset definitions. Only the name is decoded;
// the source-string layout varies by GM version and is kept opaque,
// bounded by pointer spacing or the body end.
type ShaderChunk struct {
	Shaders []*ShaderEntry
}

// ShaderEntry is one shader: its name and the undecoded remainder.
type ShaderEntry struct {
	Name StringRef
	Rest []byte
}

func (p *parser) parseShdr(ch *Chunk) (*ShaderChunk, error) {
	list, err := p.readPointerList("SHDR pointer list")
	if err != nil {
		return nil, err
	}
	body := &ShaderChunk{Shaders: make([]*ShaderEntry, 0, list.Count())}
	err = p.resolveEach(list, "SHDR entry", func(i int, off uint32) error {
		e := &ShaderEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Rest, err = p.readEntryRemainder(list, i, ch, 4); err != nil {
			return err
		}
		body.Shaders = append(body.Shaders, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// BackgroundChunk holds background (GMS1) or tileset (GMS2) asset
// metadata. Only the name is decoded; the tileset geometry is opaque.
type BackgroundChunk struct {
	Backgrounds []*BackgroundEntry
}

// BackgroundEntry is one background/tileset: name plus opaque remainder.
type BackgroundEntry struct {
	Name StringRef
	Rest []byte
}

func (p *parser) parseBgnd(ch *Chunk) (*BackgroundChunk, error) {
	list, err := p.readPointerList("BGND pointer list")
	if err != nil {
		return nil, err
	}
	body := &BackgroundChunk{Backgrounds: make([]*BackgroundEntry, 0, list.Count())}
	err = p.resolveEach(list, "BGND entry", func(i int, off uint32) error {
		e := &BackgroundEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Rest, err = p.readEntryRemainder(list, i, ch, 4); err != nil {
			return err
		}
		body.Backgrounds = append(body.Backgrounds, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// SeqChunk holds animation sequence definitions (GMS2.3+). Unlike every
// other chunk, SEQN carries a 4-byte version field before the pointer
// list.
type SeqChunk struct {
	Version   uint32
	Sequences []*SequenceEntry
}

// SequenceEntry is one sequence: name plus the version-dependent
// remainder (tracks, keyframes, embedded curves), kept opaque.
type SequenceEntry struct {
	Name StringRef
	Rest []byte
}

func (p *parser) parseSeqn(ch *Chunk) (*SeqChunk, error) {
	version, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	list, err := p.readPointerList("SEQN pointer list")
	if err != nil {
		return nil, err
	}
	body := &SeqChunk{Version: version, Sequences: make([]*SequenceEntry, 0, list.Count())}
	err = p.resolveEach(list, "SEQN entry", func(i int, off uint32) error {
		e := &SequenceEntry{}
		var err error
		if e.Name, err = p.readStringRef(); err != nil {
			return err
		}
		if e.Rest, err = p.readEntryRemainder(list, i, ch, 4); err != nil {
			return err
		}
		body.Sequences = append(body.Sequences, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// readEntryRemainder reads the undecoded tail of a pointer-list entry
// after consumed header bytes, bounded by pointer spacing or the chunk
// body end. The cursor sits just past the consumed prefix.
func (p *parser) readEntryRemainder(list *PointerList, i int, ch *Chunk, consumed uint32) ([]byte, error) {
	span := list.EntrySpan(i, ch.BodyEnd())
	if span <= consumed {
		return nil, nil
	}
	return p.cur.ReadBytes(int(span - consumed))
}
