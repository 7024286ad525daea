package gmdata

// PhysicsShape selects the physics collision shape of an object.
type PhysicsShape uint32

// Physics shape kinds.
const (
	ShapeCircle        PhysicsShape = 0
	ShapeBox           PhysicsShape = 1
	ShapeCustomPolygon PhysicsShape = 2
)

// EventType is the category index of an object event list (create,
// destroy, alarm, step, collision, ...).
type EventType uint32

// Event type categories.
const (
	EventCreate     EventType = 0
	EventDestroy    EventType = 1
	EventAlarm      EventType = 2
	EventStep       EventType = 3
	EventCollision  EventType = 4
	EventKeyboard   EventType = 5
	EventMouse      EventType = 6
	EventOther      EventType = 7
	EventDraw       EventType = 8
	EventKeyPress   EventType = 9
	EventKeyRelease EventType = 10
	EventTrigger    EventType = 11
)

// ObjectChunk holds object definitions: the game's "classes", each with
// physics properties and event handlers.
type ObjectChunk struct {
	Objects []*ObjectEntry
}

// ObjectEntry is one object definition. GMS2 (BC >= 17) inserts a
// Managed field between Visible and Solid; GMS2 reports which shape the
// entry took.
type ObjectEntry struct {
	Name        StringRef
	SpriteIndex int32
	Visible     uint32
	GMS2        bool
	Managed     uint32 // BC >= 17 only
	Solid       uint32

	Depth       int32
	Persistent  uint32
	ParentIndex int32
	MaskIndex   int32

	Physics PhysicsProperties

	// EventLists holds one list per event type category, in category
	// order. Categories with a zero pointer are empty.
	EventLists [][]*EventEntry
}

// PhysicsProperties is the physics block shared by GMS1 and GMS2 object
// entries.
type PhysicsProperties struct {
	Enabled        uint32
	Sensor         uint32
	Shape          PhysicsShape
	Density        float32
	Restitution    float32
	Group          uint32
	LinearDamping  float32
	AngularDamping float32
	Friction       float32
	Awake          uint32
	Kinematic      uint32
	Vertices       []PhysicsVertex
}

// PhysicsVertex is one polygon vertex of a custom physics shape.
type PhysicsVertex struct {
	X float32
	Y float32
}

// EventEntry is one event handler (e.g. Create_0, Alarm_3) with its
// actions. Modern games carry exactly one code action per event.
type EventEntry struct {
	Subtype uint32
	Actions []*Action
}

// Action is one 56-byte event action record. Modern GM games use
// ActionKind 7 with ExecType 2 (execute a CODE entry); other kinds are
// legacy drag-and-drop actions.
type Action struct {
	LibID       uint32
	ActionID    uint32
	ActionKind  uint32
	HasRelative uint32
	IsQuestion  uint32
	AppliesTo   int32
	ExecType    uint32
	FuncName    StringRef
	CodeID      uint32
	ArgCount    uint32
	Who         int32
	Relative    uint32
	IsNot       uint32
	Padding     uint32
}

func (p *parser) parseObjt(ch *Chunk) (*ObjectChunk, error) {
	list, err := p.readPointerList("OBJT pointer list")
	if err != nil {
		return nil, err
	}
	gms2 := p.f.BytecodeVersion >= 17
	body := &ObjectChunk{Objects: make([]*ObjectEntry, 0, list.Count())}
	err = p.resolveEach(list, "OBJT entry", func(i int, off uint32) error {
		e, err := p.readObjectEntry(gms2)
		if err != nil {
			return err
		}
		body.Objects = append(body.Objects, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (p *parser) readObjectEntry(gms2 bool) (*ObjectEntry, error) {
	e := &ObjectEntry{GMS2: gms2}
	var err error
	if e.Name, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if e.SpriteIndex, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if e.Visible, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if gms2 {
		if e.Managed, err = p.cur.ReadU32(); err != nil {
			return nil, err
		}
	}
	if e.Solid, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.Depth, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if e.Persistent, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if e.ParentIndex, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if e.MaskIndex, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if err = p.readPhysics(&e.Physics); err != nil {
		return nil, err
	}

	eventTypeCount, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	listPtrs := make([]uint32, 0, eventTypeCount)
	for i := uint32(0); i < eventTypeCount; i++ {
		ptr, err := p.cur.ReadU32()
		if err != nil {
			return nil, err
		}
		listPtrs = append(listPtrs, ptr)
	}
	e.EventLists = make([][]*EventEntry, len(listPtrs))
	for i, ptr := range listPtrs {
		if ptr == 0 {
			continue
		}
		if err := p.checkPointer(ptr, "OBJT event sublist"); err != nil {
			return nil, err
		}
		idx := i
		err := p.cur.WithSavedPos(func() error {
			if err := p.cur.Seek(int64(ptr)); err != nil {
				return err
			}
			events, err := p.readEventSublist()
			if err != nil {
				return err
			}
			e.EventLists[idx] = events
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (p *parser) readPhysics(ph *PhysicsProperties) error {
	var err error
	if ph.Enabled, err = p.cur.ReadU32(); err != nil {
		return err
	}
	if ph.Sensor, err = p.cur.ReadU32(); err != nil {
		return err
	}
	shape, err := p.cur.ReadU32()
	if err != nil {
		return err
	}
	ph.Shape = PhysicsShape(shape)
	if ph.Density, err = p.cur.ReadF32(); err != nil {
		return err
	}
	if ph.Restitution, err = p.cur.ReadF32(); err != nil {
		return err
	}
	if ph.Group, err = p.cur.ReadU32(); err != nil {
		return err
	}
	if ph.LinearDamping, err = p.cur.ReadF32(); err != nil {
		return err
	}
	if ph.AngularDamping, err = p.cur.ReadF32(); err != nil {
		return err
	}
	vertexCount, err := p.cur.ReadU32()
	if err != nil {
		return err
	}
	if ph.Friction, err = p.cur.ReadF32(); err != nil {
		return err
	}
	if ph.Awake, err = p.cur.ReadU32(); err != nil {
		return err
	}
	if ph.Kinematic, err = p.cur.ReadU32(); err != nil {
		return err
	}
	ph.Vertices = make([]PhysicsVertex, 0, vertexCount)
	for i := uint32(0); i < vertexCount; i++ {
		var v PhysicsVertex
		if v.X, err = p.cur.ReadF32(); err != nil {
			return err
		}
		if v.Y, err = p.cur.ReadF32(); err != nil {
			return err
		}
		ph.Vertices = append(ph.Vertices, v)
	}
	return nil
}

func (p *parser) readEventSublist() ([]*EventEntry, error) {
	list, err := p.readPointerList("OBJT event list")
	if err != nil {
		return nil, err
	}
	events := make([]*EventEntry, 0, list.Count())
	err = p.resolveEach(list, "OBJT event entry", func(i int, off uint32) error {
		ev := &EventEntry{}
		var err error
		if ev.Subtype, err = p.cur.ReadU32(); err != nil {
			return err
		}
		actionList, err := p.readPointerList("OBJT action list")
		if err != nil {
			return err
		}
		ev.Actions = make([]*Action, 0, actionList.Count())
		err = p.resolveEach(actionList, "OBJT action", func(j int, actionOff uint32) error {
			a, err := p.readAction()
			if err != nil {
				return err
			}
			ev.Actions = append(ev.Actions, a)
			return nil
		})
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (p *parser) readAction() (*Action, error) {
	a := &Action{}
	var err error
	if a.LibID, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.ActionID, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.ActionKind, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.HasRelative, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.IsQuestion, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.AppliesTo, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if a.ExecType, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.FuncName, err = p.readStringRef(); err != nil {
		return nil, err
	}
	if a.CodeID, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.ArgCount, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.Who, err = p.cur.ReadI32(); err != nil {
		return nil, err
	}
	if a.Relative, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.IsNot, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	if a.Padding, err = p.cur.ReadU32(); err != nil {
		return nil, err
	}
	return a, nil
}
