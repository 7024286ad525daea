package gmdata

import (
	"github.com/scigolib/gmdata/internal/utils"
)

// FuncChunk holds function call-site chains and, for BC >= 15, per-entry
// local variable declarations. An empty chunk means the game was compiled
// to native code and carries no linkable function data.
type FuncChunk struct {
	Native    bool
	Functions []FunctionEntry

	// Locals is present only for BC >= 15.
	Locals []CodeLocals
}

// FunctionEntry is one GML function with the head of its call-site chain.
type FunctionEntry struct {
	Name        StringRef
	Occurrences uint32

	// FirstAddress is the raw stored value. Its meaning shifts at BC 17:
	// up to BC 16 it addresses the call instruction word, from BC 17 it
	// addresses the call operand word. Use CallInstructionAddress for the
	// version-corrected value.
	FirstAddress int32
}

// CallInstructionAddress returns the absolute offset of the first call
// instruction, correcting for the BC >= 17 operand-word addressing.
func (e FunctionEntry) CallInstructionAddress(bytecodeVersion uint8) int32 {
	if bytecodeVersion >= 17 {
		return e.FirstAddress - 4
	}
	return e.FirstAddress
}

// CodeLocals declares the local variables of a single code entry.
type CodeLocals struct {
	Name StringRef
	Vars []LocalVar
}

// LocalVar is one declared local.
type LocalVar struct {
	Index uint32
	Name  StringRef
}

func (p *parser) parseFunc(ch *Chunk) (*FuncChunk, error) {
	if ch.Size == 0 {
		return &FuncChunk{Native: true}, nil
	}
	if err := p.checkBytecodeVersion(ch); err != nil {
		return nil, err
	}
	body := &FuncChunk{}
	if p.f.BytecodeVersion <= 14 {
		// Flat 12-byte entries with no count prefix; read to body end.
		count := ch.Size / 12
		body.Functions = make([]FunctionEntry, 0, count)
		for i := uint32(0); i < count; i++ {
			fn, err := p.readFunctionEntry()
			if err != nil {
				return nil, err
			}
			body.Functions = append(body.Functions, fn)
		}
		return body, nil
	}

	funcCount, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateEntryCount(uint64(funcCount), 12, uint64(p.cur.Remaining()), "FUNC entries"); err != nil {
		return nil, utils.NewError(utils.ErrTruncated, p.cur.Pos(), "FUNC entry count")
	}
	body.Functions = make([]FunctionEntry, 0, funcCount)
	for i := uint32(0); i < funcCount; i++ {
		fn, err := p.readFunctionEntry()
		if err != nil {
			return nil, err
		}
		body.Functions = append(body.Functions, fn)
	}

	localsCount, err := p.cur.ReadU32()
	if err != nil {
		return nil, err
	}
	body.Locals = make([]CodeLocals, 0, localsCount)
	for i := uint32(0); i < localsCount; i++ {
		locals, err := p.readCodeLocals()
		if err != nil {
			return nil, err
		}
		body.Locals = append(body.Locals, locals)
	}
	return body, nil
}

func (p *parser) readFunctionEntry() (FunctionEntry, error) {
	var fn FunctionEntry
	var err error
	if fn.Name, err = p.readStringRef(); err != nil {
		return fn, err
	}
	if fn.Occurrences, err = p.cur.ReadU32(); err != nil {
		return fn, err
	}
	if fn.FirstAddress, err = p.cur.ReadI32(); err != nil {
		return fn, err
	}
	return fn, nil
}

func (p *parser) readCodeLocals() (CodeLocals, error) {
	var locals CodeLocals
	varCount, err := p.cur.ReadU32()
	if err != nil {
		return locals, err
	}
	if locals.Name, err = p.readStringRef(); err != nil {
		return locals, err
	}
	if err := utils.ValidateEntryCount(uint64(varCount), 8, uint64(p.cur.Remaining()), "FUNC code locals"); err != nil {
		return locals, utils.NewError(utils.ErrTruncated, p.cur.Pos(), "FUNC locals count")
	}
	locals.Vars = make([]LocalVar, 0, varCount)
	for i := uint32(0); i < varCount; i++ {
		var v LocalVar
		if v.Index, err = p.cur.ReadU32(); err != nil {
			return locals, err
		}
		if v.Name, err = p.readStringRef(); err != nil {
			return locals, err
		}
		locals.Vars = append(locals.Vars, v)
	}
	return locals, nil
}
