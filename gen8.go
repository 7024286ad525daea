package gmdata

import (
	"github.com/google/uuid"
)

// Gen8 is the game metadata chunk: version info, window dimensions, room
// order. Always the first chunk. Its BytecodeVersion field governs the
// layout of CODE, FUNC and VARI, and IDEVersionMajor gates the presence
// of SEQN and the GMS2 trailing fields.
type Gen8 struct {
	IsDebugDisabled uint8
	BytecodeVersion uint8
	Padding         uint16
	Filename        StringRef
	Config          StringRef
	LastObj         uint32
	LastTile        uint32
	GameID          uint32
	GUID            uuid.UUID
	Name            StringRef
	IDEVersionMajor uint32
	IDEVersionMinor uint32
	IDEVersionRel   uint32
	IDEVersionBuild uint32
	WindowWidth     uint32
	WindowHeight    uint32
	InfoFlags       uint32
	LicenseCRC32    uint32
	LicenseMD5      [16]byte
	Timestamp       uint64
	DisplayName     StringRef
	ActiveTargets   uint64
	FunctionClassif uint64
	SteamAppID      int32

	// DebuggerPort is present only when BytecodeVersion >= 14.
	DebuggerPort uint32

	RoomOrder []uint32

	// GMS2Extra is the opaque trailing blob present when
	// IDEVersionMajor >= 2.
	GMS2Extra []byte
}

func (p *parser) parseGen8(ch *Chunk) (*Gen8, error) {
	g := &Gen8{}
	var err error
	if g.IsDebugDisabled, err = p.cur.ReadU8(); err != nil {
		return nil, err
	}
	if g.BytecodeVersion, err = p.cur.ReadU8(); err != nil {
		return nil, err
	}
	if g.Padding, err = p.cur.ReadU16(); err != nil {
		return nil, err
	}
	if g.Filename, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if g.Config, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if g.LastObj, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.LastTile, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.GameID, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	guid, err := p.cur.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	if g.GUID, err = uuid.FromBytes(guid); err != nil {
		return nil, err
	}
	if g.Name, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if g.IDEVersionMajor, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.IDEVersionMinor, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.IDEVersionRel, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.IDEVersionBuild, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.WindowWidth, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.WindowHeight, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.InfoFlags, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if g.LicenseCRC32, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	md5, err := p.cur.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	copy(g.LicenseMD5[:], md5)
	if g.Timestamp, err = p.cur.ReadU64(); err != nil {
		return nil, err
	}
	if g.DisplayName, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if g.ActiveTargets, err = p.cur.ReadU64(); err != nil {
		return nil, err
	}
	if g.FunctionClassif, err = p.cur.ReadU64(); err != nil {
		return nil, err
	}
	if g.SteamAppID, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if g.BytecodeVersion >= 14 {
		if g.DebuggerPort, err = p.cur.ReadU32(); err != nil {
			return nil, err
		}
	}
	roomCount, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	g.RoomOrder = make([]uint32, 0, roomCount)
	for i := uint32(0); i < roomCount; i++ {
		id, err := p.cur.ReadU32()
		if err != nil {
			return nil, err
		}
		g.RoomOrder = append(g.RoomOrder, id)
	}
	if g.IDEVersionMajor >= 2 {
		rest := int(int64(ch.BodyEnd()) - p.cur.Pos())
		if rest > 0 {
			if g.GMS2Extra, err = p.cur.ReadBytes(rest); err != nil {
				return nil, err
			}
		}
	}

	// Subsequent chunks (CODE/FUNC/VARI, texture and object layouts)
	// branch on the bytecode version; both values are kept on the File.
	p.f.BytecodeVersion = g.BytecodeVersion
	p.f.IDEVersionMajor = g.IDEVersionMajor
	return g, nil
}
