package insts

// InstructionSize is the size in bytes of every instruction this package
// decodes. Only the 32-bit encoding space is supported.
const InstructionSize = 4

// Instruction represents a decoded RISC-V instruction.
//
// The zero value has OpInvalid and no operands. Operand values are not stored;
// they are resolved from the raw word on demand.
type Instruction struct {
	word     uint32
	op       Op
	operands [3]OperandSpec
}

// Op returns the opcode.
func (i *Instruction) Op() Op {
	return i.op
}

// Word returns the raw encoded instruction.
func (i *Instruction) Word() uint32 {
	return i.word
}

// OperandSpecs returns the operand specs in display order.
func (i *Instruction) OperandSpecs() [3]OperandSpec {
	return i.operands
}

// Len returns the encoded length in bytes.
func (i *Instruction) Len() int {
	return InstructionSize
}

// Operand resolves the n-th operand. It returns false when the operand is
// absent, either because its spec is SpecNothing or because an earlier spec
// already ended the list.
func (i *Instruction) Operand(n int) (Operand, bool) {
	if n < 0 || n >= len(i.operands) {
		return Operand{}, false
	}
	for k := 0; k <= n; k++ {
		if i.operands[k] == SpecNothing {
			return Operand{}, false
		}
	}
	return Resolve(i.word, i.operands[n])
}

// Operands resolves the visible operands, stopping at the first SpecNothing.
func (i *Instruction) Operands() []Operand {
	ops := make([]Operand, 0, len(i.operands))
	for _, spec := range i.operands {
		op, ok := Resolve(i.word, spec)
		if !ok {
			break
		}
		ops = append(ops, op)
	}
	return ops
}

// WellDefined reports whether the instruction is free of reserved encoding
// bits that the dispatcher does not look at. The decoder accepts such words
// so that they can still be displayed.
func (i *Instruction) WellDefined() bool {
	w := i.word
	switch i.op {
	case OpInvalid:
		return false
	case OpECALL, OpEBREAK:
		return Extract(w, FieldRd) == 0 && Extract(w, FieldRs1) == 0 && funct3(w) == 0
	case OpFENCE:
		fm := w >> 28
		return Extract(w, FieldRd) == 0 && Extract(w, FieldRs1) == 0 &&
			(fm == 0b0000 || fm == 0b1000)
	case OpSLLI:
		// The RV64 form is only produced once funct6 has been checked.
		return i.operands[2] == SpecShamt6 || funct7(w) == 0
	}
	return i.op.Valid()
}

// String formats the instruction with the default Formatter.
func (i *Instruction) String() string {
	return Formatter{}.Format(i)
}
