package insts

import (
	"fmt"
	"strings"
)

// RegNames holds the ABI register names, indexed by register number.
var RegNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Register numbers used by pseudo-instruction rules.
const (
	regZero = 0
	regRA   = 1
)

// Formatter renders instructions as assembly text.
//
// By default the nop, mv, self-compare beq and zero-register sll rewrites
// are applied. Aliases adds the assembler's wider set (j, jal, ret, fence
// and slli nop).
type Formatter struct {
	// NoPseudo disables all pseudo-instruction rewriting.
	NoPseudo bool

	// Aliases enables the extra rewrites on top of the default ones.
	Aliases bool
}

// Format renders inst. Formatting an instruction with OpInvalid is a
// programming error and panics.
func (f Formatter) Format(inst *Instruction) string {
	if !inst.op.Valid() {
		panic(fmt.Sprintf("insts: attempt to format invalid opcode (word %#08x)", inst.word))
	}

	ops := inst.Operands()

	if !f.NoPseudo {
		if text, ok := pseudo(inst.op, ops); ok {
			return text
		}
		if f.Aliases {
			if text, ok := alias(inst.op, ops); ok {
				return text
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(inst.op.String())
	for i, op := range ops {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatOperand(inst.op, op))
	}

	return sb.String()
}

// pseudo matches the operand shapes that have a conventional alias.
func pseudo(op Op, ops []Operand) (string, bool) {
	switch op {
	case OpADDI:
		if ops[2].Kind == KindImm && ops[2].Imm == 0 {
			if ops[0] == ops[1] {
				return "nop", true
			}
			return "mv " + formatReg(ops[0].Reg) + ", " + formatReg(ops[1].Reg), true
		}
	case OpBEQ:
		if ops[0].Reg == ops[1].Reg {
			return "beq " + formatJOffset(ops[2].Imm), true
		}
	case OpSLL:
		// The shift amount of SLL is a register; zero means x0.
		if ops[0] == ops[1] && ops[2].Reg == regZero {
			return "nop", true
		}
	}

	return "", false
}

// alias matches the additional shapes enabled by Formatter.Aliases.
func alias(op Op, ops []Operand) (string, bool) {
	switch op {
	case OpSLLI:
		if ops[0] == ops[1] && ops[2].Shift == 0 {
			return "nop", true
		}
	case OpJAL:
		switch ops[0].Reg {
		case regZero:
			return "j " + formatJOffset(ops[1].Imm), true
		case regRA:
			return "jal " + formatJOffset(ops[1].Imm), true
		}
	case OpJALR:
		if ops[0].Reg == regZero && ops[1].Reg == regRA && ops[2].Imm == 0 {
			return "ret", true
		}
	case OpFENCE:
		all := FenceI | FenceO | FenceR | FenceW
		if ops[0].Fence == all && ops[1].Fence == all {
			return "fence", true
		}
	}

	return "", false
}

// FormatOperand renders a single operand of an instruction with opcode op.
func FormatOperand(op Op, o Operand) string {
	switch o.Kind {
	case KindReg:
		return formatReg(o.Reg)
	case KindImm:
		return formatSignedHex(int64(o.Imm))
	case KindBaseOffset:
		if o.Offset == 0 {
			return "(" + formatReg(o.Reg) + ")"
		}
		return formatSignedHex(int64(o.Offset)) + "(" + formatReg(o.Reg) + ")"
	case KindShift:
		return fmt.Sprintf("%#x", o.Shift)
	case KindLongImm:
		// LUI and AUIPC show the 20-bit immediate before it is shifted
		// into place.
		if op == OpLUI || op == OpAUIPC {
			return fmt.Sprintf("%#x", o.LongImm>>12)
		}
		return fmt.Sprintf("%#x", o.LongImm)
	case KindJOffset:
		return formatJOffset(o.Imm)
	case KindFence:
		return formatFenceSet(o.Fence)
	}

	return "?"
}

func formatReg(reg uint8) string {
	return RegNames[reg&0x1F]
}

func formatSignedHex(v int64) string {
	if v < 0 {
		return fmt.Sprintf("-%#x", uint64(-v))
	}
	return fmt.Sprintf("%#x", uint64(v))
}

func formatJOffset(offset int32) string {
	if offset < 0 {
		return fmt.Sprintf("$-%#x", uint64(-int64(offset)))
	}
	return fmt.Sprintf("$+%#x", uint64(offset))
}

func formatFenceSet(set uint8) string {
	if set == 0 {
		return "0"
	}

	var sb strings.Builder
	for _, b := range []struct {
		bit  uint8
		name byte
	}{{FenceI, 'i'}, {FenceO, 'o'}, {FenceR, 'r'}, {FenceW, 'w'}} {
		if set&b.bit != 0 {
			sb.WriteByte(b.name)
		}
	}
	return sb.String()
}
