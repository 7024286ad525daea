package gmdata

// RoomChunk holds room definitions: level layouts with object
// placements, views and backgrounds.
type RoomChunk struct {
	Rooms []*RoomEntry
}

// RoomEntry is one room. The four sub-list pointers resolve to further
// pointer lists; object placements are decoded fully, while background,
// view and tile entries are exposed as their resolved entry offsets.
type RoomEntry struct {
	Name                StringRef
	Caption             StringRef
	Width               uint32
	Height              uint32
	Speed               uint32
	Persistent          uint32
	BackgroundColor     uint32
	DrawBackgroundColor uint32
	CreationCodeID      int32
	Flags               uint32

	BackgroundPtrs []uint32
	ViewPtrs       []uint32
	TilePtrs       []uint32
	Objects        []*RoomObjectEntry

	PhysicsWorld         uint32
	PhysicsTop           uint32
	PhysicsLeft          uint32
	PhysicsRight         uint32
	PhysicsBottom        uint32
	PhysicsGravityX      float32
	PhysicsGravityY      float32
	PhysicsPixelsToMeter float32
}

// RoomObjectEntry is an object instance pre-placed in a room (36 bytes).
type RoomObjectEntry struct {
	X              int32
	Y              int32
	ObjectID       int32
	InstanceID     uint32
	CreationCodeID int32
	ScaleX         float32
	ScaleY         float32
	Color          uint32
	Rotation       float32
}

func (p *parser) parseRoom(ch *Chunk) (*RoomChunk, error) {
	list, err := p.readPointerList("ROOM pointer list")
	if err != nil {
		return nil, err
	}
	body := &RoomChunk{Rooms: make([]*RoomEntry, 0, list.Count())}
	err = p.resolveEach(list, "ROOM entry", func(i int, off uint32) error {
		e, err := p.readRoomEntry()
		if err != nil {
			return err
		}
		body.Rooms = append(body.Rooms, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (p *parser) readRoomEntry() (*RoomEntry, error) {
	e := &RoomEntry{}
	var err error
	if e.Name, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if e.Caption, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if e.Width, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.Height, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.Speed, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.Persistent, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.BackgroundColor, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.DrawBackgroundColor, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.CreationCodeID, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if e.Flags, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	backgroundPtr, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	viewsPtr, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	objectsPtr, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	tilesPtr, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	if e.PhysicsWorld, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.PhysicsTop, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.PhysicsLeft, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.PhysicsRight, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.PhysicsBottom, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.PhysicsGravityX, err = p.cur.ReadF32(); err != nil {
		return nil, err
	}
	if e.PhysicsGravityY, err = p.cur.ReadF32(); err != nil {
		return nil, err
	}
	if e.PhysicsPixelsToMeter, err = p.cur.ReadF32(); err != nil {
		return nil, err
	}

	if e.BackgroundPtrs, err = p.readSubListPtrs(backgroundPtr, "ROOM background list"); err != nil {
		return nil, err
	}
	if e.ViewPtrs, err = p.readSubListPtrs(viewsPtr, "ROOM view list"); err != nil {
		return nil, err
	}
	if e.TilePtrs, err = p.readSubListPtrs(tilesPtr, "ROOM tile list"); err != nil {
		return nil, err
	}
	if err = p.readRoomObjects(objectsPtr, e); err != nil {
		return nil, err
	}
	return e, nil
}

// readSubListPtrs resolves a room sub-list pointer to its pointer list
// and returns the entry offsets. A zero pointer denotes an absent list.
func (p *parser) readSubListPtrs(ptr uint32, context string) ([]uint32, error) {
	if ptr == 0 {
		return nil, nil
	}
	if err := p.checkPointer(ptr, context); err != nil {
		return nil, err
	}
	var offsets []uint32
	err := p.cur.WithSavedPos(func() error {
		if err := p.cur.Seek(int64(ptr)); err != nil {
			return err
		}
		list, err := p.readPointerList(context)
		if err != nil {
			return err
		}
		offsets = list.Offsets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return offsets, nil
}

func (p *parser) readRoomObjects(ptr uint32, e *RoomEntry) error {
	if ptr == 0 {
		return nil
	}
	if err := p.checkPointer(ptr, "ROOM object list"); err != nil {
		return err
	}
	return p.cur.WithSavedPos(func() error {
		if err := p.cur.Seek(int64(ptr)); err != nil {
			return err
		}
		list, err := p.readPointerList("ROOM object list")
		if err != nil {
			return err
		}
		e.Objects = make([]*RoomObjectEntry, 0, list.Count())
		return p.resolveEach(list, "ROOM object entry", func(i int, off uint32) error {
			obj := &RoomObjectEntry{}
			var err error
			if obj.X, err = p.cur.ReadI32(); err != nil {
				return err
			}
			if obj.Y, err = p.cur.ReadI32(); err != nil {
				return err
			}
			if obj.ObjectID, err = p.cur.ReadI32(); err != nil {
				return err
			}
			if obj.InstanceID, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if obj.CreationCodeID, err = p.cur.ReadI32(); err != nil {
				return err
			}
			if obj.ScaleX, err = p.cur.ReadF32(); err != nil {
				return err
			}
			if obj.ScaleY, err = p.cur.ReadF32(); err != nil {
				return err
			}
			if obj.Color, err = p.cur.ReadU32(); err != nil {
				return err
			}
			if obj.Rotation, err = p.cur.ReadF32(); err != nil {
				return err
			}
			e.Objects = append(e.Objects, obj)
			return nil
		})
	})
}
