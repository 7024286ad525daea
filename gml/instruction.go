package gml

// DataType is the 4-bit VM value type carried in instruction type
// nibbles.
type DataType uint8

// VM data types.
const (
	TypeDouble   DataType = 0
	TypeFloat    DataType = 1
	TypeInt32    DataType = 2
	TypeInt64    DataType = 3
	TypeBool     DataType = 4
	TypeVariable DataType = 5
	TypeString   DataType = 6
	TypeInt16    DataType = 15
)

// StackSize returns the size in bytes of one stack item of this type,
// as used by Dup duplication counts.
func (t DataType) StackSize() int {
	switch t {
	case TypeVariable:
		return 16
	case TypeDouble, TypeInt64:
		return 8
	default:
		return 4
	}
}

// ComparisonKind is the Cmp operator, carried in bits 15-8 of the
// instruction word (BC >= 15) or in the opcode byte (BC <= 14).
type ComparisonKind uint8

// Comparison operators.
const (
	CmpLess         ComparisonKind = 1
	CmpLessEqual    ComparisonKind = 2
	CmpEqual        ComparisonKind = 3
	CmpNotEqual     ComparisonKind = 4
	CmpGreaterEqual ComparisonKind = 5
	CmpGreater      ComparisonKind = 6
)

// InstanceType is the well-known negative instance id space used by
// variable references.
type InstanceType int16

// Well-known instances.
const (
	InstanceArg      InstanceType = -16
	InstanceStatic   InstanceType = -15
	InstanceStackTop InstanceType = -9
	InstanceLocal    InstanceType = -7
	InstanceBuiltin  InstanceType = -6
	InstanceGlobal   InstanceType = -5
	InstanceNoone    InstanceType = -4
	InstanceAll      InstanceType = -3
	InstanceOther    InstanceType = -2
	InstanceOwn      InstanceType = -1
)

// VariableRef is the packed 32-bit operand of variable push/pop
// instructions. Bits 23-0 are the zero-based VARI table index; the high
// five bits of byte 3 carry the reference-type flags. The low three bits
// of byte 3 are reserved and preserved raw.
type VariableRef struct {
	Raw uint32
}

// Reference-type flag values.
const (
	RefNormal        uint8 = 0x00
	RefCrossInstance uint8 = 0x80
	RefSingleton     uint8 = 0xA0
)

// VariableID returns the zero-based VARI table index.
func (r VariableRef) VariableID() uint32 {
	return r.Raw & 0xFFFFFF
}

// RefType returns the reference-type flags (high five bits of byte 3).
func (r VariableRef) RefType() uint8 {
	return uint8(r.Raw>>24) & 0xF8
}

// BreakSignal is the signed selector of a Brk instruction, taken from
// val16.
type BreakSignal int16

// Brk signals.
const (
	SignalChkIndex    BreakSignal = -1  // bounds-check array index
	SignalPushAF      BreakSignal = -2  // array get
	SignalPopAF       BreakSignal = -3  // array set
	SignalPushAC      BreakSignal = -4  // capture array ref
	SignalSetOwner    BreakSignal = -5  // pop owner instance id
	SignalIsStaticOK  BreakSignal = -6  // static-init check
	SignalSetStatic   BreakSignal = -7  // enter static scope
	SignalSaveARef    BreakSignal = -8  // save array ref
	SignalRestoreARef BreakSignal = -9  // restore array ref
	SignalChkNullish  BreakSignal = -10 // nullish check (?? / ?.)
	SignalPushRef     BreakSignal = -11 // push asset reference
)

// AssetKind tags the asset table referenced by a pushref operand.
type AssetKind uint8

// Asset kinds, from bits 31-24 of the pushref operand word.
const (
	AssetFunc     AssetKind = 0
	AssetSprite   AssetKind = 1
	AssetSound    AssetKind = 2
	AssetRoom     AssetKind = 3
	AssetPath     AssetKind = 4
	AssetScript   AssetKind = 5
	AssetFont     AssetKind = 6
	AssetTimeline AssetKind = 7
	AssetShader   AssetKind = 8
	AssetSequence AssetKind = 9
)

// Body is the decoded operand of one instruction. The concrete type is
// selected by the operation: EmptyBody, BranchBody, CallBody, PopBody,
// PushBody, DupBody or BreakBody.
type Body interface {
	body()
}

// EmptyBody marks instructions with no operand words.
type EmptyBody struct{}

func (EmptyBody) body() {}

// BranchBody carries the signed branch offset of B/Bt/Bf/PushEnv/PopEnv,
// in 4-byte words relative to the instruction start.
type BranchBody struct {
	Words int32
}

func (BranchBody) body() {}

// Bytes returns the branch offset in bytes.
func (b BranchBody) Bytes() int32 {
	return b.Words * 4
}

// CallBody carries the operand of a direct function call.
type CallBody struct {
	FunctionID uint32
	ArgCount   uint16
}

func (CallBody) body() {}

// PopBody carries the operand of a variable write.
type PopBody struct {
	Ref      VariableRef
	Instance int16
}

func (PopBody) body() {}

// PushBody carries the operand of Push/PushLoc/PushGlb/PushBltn/PushI.
// Exactly the field matching Type is meaningful; String holds the
// absolute character offset of a GameMaker string.
type PushBody struct {
	Type     DataType
	Double   float64
	Float    float32
	Int64    int64
	Int32    int32
	Int16    int16
	Bool     bool
	String   uint32
	Ref      VariableRef
	Instance int16
}

func (PushBody) body() {}

// DupMode classifies the three Dup behaviours.
type DupMode uint8

// Dup modes.
const (
	DupStandard DupMode = iota
	DupSwap
	DupNoOp
)

// DupBody carries the Dup parameters: val16's low byte is the
// duplication size, the high byte the GMS2.3 swap flag.
type DupBody struct {
	Size     uint8
	SwapFlag uint8
}

func (DupBody) body() {}

// Mode classifies the instruction: standard duplication, stack swap, or
// the GMS2.3 struct-swap no-op marker.
func (d DupBody) Mode() DupMode {
	switch {
	case d.SwapFlag == 0:
		return DupStandard
	case d.Size > 0:
		return DupSwap
	default:
		return DupNoOp
	}
}

// BreakBody carries a Brk signal and, when the instruction's primary
// type is Int32, its extra operand word.
type BreakBody struct {
	Signal   BreakSignal
	HasExtra bool
	Extra    int32
}

func (BreakBody) body() {}

// AssetKind returns the asset table tag of a pushref operand.
func (b BreakBody) AssetKind() AssetKind {
	return AssetKind(uint32(b.Extra) >> 24 & 0xFF)
}

// AssetIndex returns the 24-bit asset index of a pushref operand.
func (b BreakBody) AssetIndex() uint32 {
	return uint32(b.Extra) & 0xFFFFFF
}

// Instruction is one decoded VM instruction.
type Instruction struct {
	// Offset is the byte offset of the instruction word from the start
	// of the decoded range.
	Offset uint32

	// Word is the raw instruction word.
	Word uint32

	Op        Op
	RawOpcode uint8
	Type1     DataType
	Type2     DataType
	Val16     uint16

	// CmpKind is meaningful only when Op is OpCmp.
	CmpKind ComparisonKind

	Body Body
}

// Unknown reports whether the opcode byte had no entry in the version's
// opcode table. Unknown instructions carry an empty body and decoding
// continues at the next word boundary.
func (in Instruction) Unknown() bool {
	return in.Op == OpInvalid
}

// Size returns the full encoded size of the instruction in bytes,
// including operand words.
func (in Instruction) Size() uint32 {
	switch b := in.Body.(type) {
	case PushBody:
		switch b.Type {
		case TypeDouble, TypeInt64:
			return 12
		case TypeInt16:
			return 4
		default:
			return 8
		}
	case CallBody, PopBody:
		return 8
	case BreakBody:
		if b.HasExtra {
			return 8
		}
		return 4
	default:
		return 4
	}
}
