package gmdata

// VariChunk holds variable reference chains. An empty chunk means the
// game was compiled to native code. The entry shape depends on the
// bytecode version: 12-byte entries with no header up to BC 14, a
// 12-byte header plus 20-byte entries from BC 15.
type VariChunk struct {
	Native bool

	// Header is present only for BC >= 15.
	Header *VariHeaderV15

	V14 []VariEntryV14
	V15 []VariEntryV15
}

// Count returns the number of variable entries in whichever layout the
// chunk carries.
func (v *VariChunk) Count() int {
	if v.Header != nil {
		return len(v.V15)
	}
	return len(v.V14)
}

// VariHeaderV15 is the 3-field header at the start of VARI for BC >= 15.
type VariHeaderV15 struct {
	InstanceVarCount    uint32
	InstanceVarCountMax uint32
	MaxLocalVarCount    uint32
}

// VariEntryV14 is the BC <= 14 variable entry (12 bytes).
type VariEntryV14 struct {
	Name         StringRef
	Occurrences  uint32
	FirstAddress int32
}

// VariEntryV15 is the BC >= 15 variable entry (20 bytes).
type VariEntryV15 struct {
	Name         StringRef
	InstanceType int32
	VarID        int32
	Occurrences  uint32
	FirstAddress int32
}

func (p *parser) parseVari(ch *Chunk) (*VariChunk, error) {
	if ch.Size == 0 {
		return &VariChunk{Native: true}, nil
	}
	if err := p.checkBytecodeVersion(ch); err != nil {
		return nil, err
	}
	body := &VariChunk{}
	if p.f.BytecodeVersion <= 14 {
		count := ch.Size / 12
		body.V14 = make([]VariEntryV14, 0, count)
		for i := uint32(0); i < count; i++ {
			var e VariEntryV14
			var err error
			if e.Name, err = p.readStringRef(); err != nil {
				return nil, err
			}
			if e.Occurrences, err = p.cur.ReadU32(); err != nil {
				return nil, err
			}
			if e.FirstAddress, err = p.cur.ReadI32(); err != nil {
				return nil, err
			}
			body.V14 = append(body.V14, e)
		}
		return body, nil
	}

	hdr := &VariHeaderV15{}
	var err error
	if hdr.InstanceVarCount, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if hdr.InstanceVarCountMax, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if hdr.MaxLocalVarCount, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	body.Header = hdr

	count := (ch.Size - 12) / 20
	body.V15 = make([]VariEntryV15, 0, count)
	for i := uint32(0); i < count; i++ {
		var e VariEntryV15
		if e.Name, err = p.readStringRef(); err != nil {
			return nil, err
		}
		if e.InstanceType, err = p.cur.ReadI32(); err != nil {
			return nil, err
		}
		if e.VarID, err = p.cur.ReadI32(); err != nil {
			return nil, err
		}
		if e.Occurrences, err = p.cur.ReadU32(); err != nil {
			return nil, err
		}
		if e.FirstAddress, err = p.cur.ReadI32(); err != nil {
			return nil, err
		}
		body.V15 = append(body.V15, e)
	}
	return body, nil
}
