package gml

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/scigolib/gmdata/internal/utils"
)

// Error kinds surfaced by bytecode decoding. Match with errors.Is.
var (
	ErrVersionUnsupported   = utils.ErrVersionUnsupported
	ErrUnalignedBytecode    = utils.ErrUnalignedBytecode
	ErrTruncatedInstruction = utils.ErrTruncatedInstruction
)

// Decoder lazily decodes one code entry's bytecode range into
// instructions. It is restartable via Reset and stops exactly when the
// range is exhausted; a trailing partial instruction is an error and
// previously decoded instructions remain valid.
type Decoder struct {
	data    []byte
	version uint8
	pos     int
	err     error
}

// NewDecoder creates a decoder over a bytecode byte range. The bytecode
// version is a construction input taken from the container's GEN8 chunk,
// never inferred from the stream; versions below 13 are not decodable.
// The range must be a whole number of 4-byte VM words.
func NewDecoder(data []byte, bytecodeVersion uint8) (*Decoder, error) {
	if bytecodeVersion < 13 {
		return nil, utils.NewError(ErrVersionUnsupported, 0, "bytecode decoder")
	}
	if len(data)%4 != 0 {
		return nil, utils.NewError(ErrUnalignedBytecode, int64(len(data)), "bytecode range length")
	}
	return &Decoder{data: data, version: bytecodeVersion}, nil
}

// Version returns the bytecode version the decoder was built with.
func (d *Decoder) Version() uint8 {
	return d.version
}

// Reset rewinds the decoder to the start of the range.
func (d *Decoder) Reset() {
	d.pos = 0
	d.err = nil
}

// Next decodes the next instruction. It returns io.EOF when the range is
// exhausted; decode errors are sticky.
func (d *Decoder) Next() (Instruction, error) {
	if d.err != nil {
		return Instruction{}, d.err
	}
	if d.pos >= len(d.data) {
		return Instruction{}, io.EOF
	}
	in, err := d.decodeOne()
	if err != nil {
		d.err = err
		return Instruction{}, err
	}
	return in, nil
}

// DecodeAll decodes a whole bytecode range eagerly.
func DecodeAll(data []byte, bytecodeVersion uint8) ([]Instruction, error) {
	d, err := NewDecoder(data, bytecodeVersion)
	if err != nil {
		return nil, err
	}
	var out []Instruction
	for {
		in, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, in)
	}
}

func (d *Decoder) table() map[uint8]Op {
	if d.version <= 14 {
		return opcodeTableV14
	}
	return opcodeTableV15
}

func (d *Decoder) readWord() (uint32, error) {
	if d.pos+4 > len(d.data) {
		return 0, utils.NewError(ErrTruncatedInstruction, int64(d.pos), "instruction word")
	}
	w := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return w, nil
}

func (d *Decoder) decodeOne() (Instruction, error) {
	offset := uint32(d.pos)
	word, err := d.readWord()
	if err != nil {
		return Instruction{}, err
	}

	in := Instruction{
		Offset:    offset,
		Word:      word,
		RawOpcode: uint8(word >> 24),
		Type1:     DataType(word >> 16 & 0xF),
		Type2:     DataType(word >> 20 & 0xF),
		Val16:     uint16(word),
	}
	in.Op = d.table()[in.RawOpcode]
	if in.Op == OpInvalid {
		// Unknown opcode: report and realign on the next word boundary.
		in.Body = EmptyBody{}
		return in, nil
	}

	if in.Op.IsBranch() {
		// The low 23 bits are the offset, not type nibbles; sign-extend
		// from bit 22 to a signed word count.
		in.Body = BranchBody{Words: signExtend23(word & 0x7FFFFF)}
		return in, nil
	}

	if in.Op == OpCmp {
		if d.version <= 14 {
			in.CmpKind = cmpKindV14[in.RawOpcode]
		} else {
			in.CmpKind = ComparisonKind(word >> 8 & 0xFF)
		}
		in.Body = EmptyBody{}
		return in, nil
	}

	switch in.Op {
	case OpCall:
		// BC <= 14 call instructions have no operand word.
		if d.version <= 14 {
			in.Body = EmptyBody{}
			return in, nil
		}
		operand, err := d.readWord()
		if err != nil {
			return Instruction{}, err
		}
		in.Body = CallBody{FunctionID: operand, ArgCount: in.Val16}
		return in, nil

	case OpPop:
		operand, err := d.readWord()
		if err != nil {
			return Instruction{}, err
		}
		in.Body = PopBody{Ref: VariableRef{Raw: operand}, Instance: int16(in.Val16)}
		return in, nil

	case OpPush, OpPushLoc, OpPushGlb, OpPushBltn:
		body, err := d.decodePush(in.Type1, in.Val16)
		if err != nil {
			return Instruction{}, err
		}
		in.Body = body
		return in, nil

	case OpPushI:
		if in.Type1 == TypeInt32 {
			operand, err := d.readWord()
			if err != nil {
				return Instruction{}, err
			}
			in.Body = PushBody{Type: TypeInt32, Int32: int32(operand)}
			return in, nil
		}
		in.Body = PushBody{Type: TypeInt16, Int16: int16(in.Val16)}
		return in, nil

	case OpDup:
		in.Body = DupBody{Size: uint8(in.Val16), SwapFlag: uint8(in.Val16 >> 8)}
		return in, nil

	case OpBrk:
		body := BreakBody{Signal: BreakSignal(int16(in.Val16))}
		if in.Type1 == TypeInt32 {
			operand, err := d.readWord()
			if err != nil {
				return Instruction{}, err
			}
			body.HasExtra = true
			body.Extra = int32(operand)
		}
		in.Body = body
		return in, nil

	default:
		in.Body = EmptyBody{}
		return in, nil
	}
}

// decodePush consumes the operand words of the Push family according to
// the primary type. Type nibbles without a defined wide operand fall
// back to the inline Int16 form.
func (d *Decoder) decodePush(t DataType, val16 uint16) (PushBody, error) {
	switch t {
	case TypeDouble:
		lo, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		hi, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		bits := uint64(lo) | uint64(hi)<<32
		return PushBody{Type: t, Double: math.Float64frombits(bits)}, nil
	case TypeInt64:
		lo, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		hi, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		return PushBody{Type: t, Int64: int64(uint64(lo) | uint64(hi)<<32)}, nil
	case TypeFloat:
		w, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		return PushBody{Type: t, Float: math.Float32frombits(w)}, nil
	case TypeInt32:
		w, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		return PushBody{Type: t, Int32: int32(w)}, nil
	case TypeBool:
		w, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		return PushBody{Type: t, Bool: w != 0}, nil
	case TypeString:
		w, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		return PushBody{Type: t, String: w}, nil
	case TypeVariable:
		w, err := d.readWord()
		if err != nil {
			return PushBody{}, err
		}
		return PushBody{Type: t, Ref: VariableRef{Raw: w}, Instance: int16(val16)}, nil
	default:
		return PushBody{Type: TypeInt16, Int16: int16(val16)}, nil
	}
}

// signExtend23 sign-extends a 23-bit branch offset from bit 22.
func signExtend23(v uint32) int32 {
	if v&0x400000 != 0 {
		v |= ^uint32(0x7FFFFF)
	}
	return int32(v)
}
