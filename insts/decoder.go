package insts

import (
	"errors"
	"fmt"
	"io"
)

// Major opcodes, bits [6:0].
const (
	opcLoad    = 0b000_0011
	opcMiscMem = 0b000_1111
	opcOpImm   = 0b001_0011
	opcAUIPC   = 0b001_0111
	opcOpImm32 = 0b001_1011
	opcStore   = 0b010_0011
	opcOp      = 0b011_0011
	opcLUI     = 0b011_0111
	opcOp32    = 0b011_1011
	opcBranch  = 0b110_0011
	opcJALR    = 0b110_0111
	opcJAL     = 0b110_1111
	opcSystem  = 0b111_0011
)

// Operand layouts shared by several groups.
var (
	layoutU      = [3]OperandSpec{SpecRd, SpecImm20U, SpecNothing}
	layoutJ      = [3]OperandSpec{SpecRd, SpecImm20J, SpecNothing}
	layoutI      = [3]OperandSpec{SpecRd, SpecRs1, SpecImm12I}
	layoutB      = [3]OperandSpec{SpecRs1, SpecRs2, SpecImm12B}
	layoutLoad   = [3]OperandSpec{SpecRd, SpecBaseOffsetRs1I, SpecNothing}
	layoutStore  = [3]OperandSpec{SpecRs2, SpecBaseOffsetRs1S, SpecNothing}
	layoutShift  = [3]OperandSpec{SpecRd, SpecRs1, SpecShamt}
	layoutShift6 = [3]OperandSpec{SpecRd, SpecRs1, SpecShamt6}
	layoutR      = [3]OperandSpec{SpecRd, SpecRs1, SpecRs2}
	layoutFence  = [3]OperandSpec{SpecFencePred, SpecFenceSucc, SpecNothing}
	layoutNone   = [3]OperandSpec{}
)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithXLEN selects the base integer width. 64 enables the RV64I additions;
// any other value selects RV32I.
func WithXLEN(xlen int) DecoderOption {
	return func(d *Decoder) {
		d.rv64 = xlen == 64
	}
}

// Decoder decodes RISC-V machine code into instructions. A Decoder holds only
// its configuration and is safe for concurrent use.
type Decoder struct {
	rv64 bool
}

// NewDecoder creates a new RISC-V instruction decoder. The default is RV32I.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// XLEN returns the configured base integer width.
func (d *Decoder) XLEN() int {
	if d.rv64 {
		return 64
	}
	return 32
}

// Decode reads one instruction from r.
//
// The first code unit decides the instruction length. Only the 32-bit space
// is implemented; compressed and 48-bit+ encodings yield
// ErrUnsupportedEncoding. End of input yields ErrStreamExhausted.
func (d *Decoder) Decode(r CodeUnitReader) (*Instruction, error) {
	word0, err := nextUnit(r)
	if err != nil {
		return nil, err
	}

	// RISC-V instructions are always little-endian; the low bits of the
	// first unit give the length.
	switch {
	case word0&0b11 != 0b11:
		return nil, fmt.Errorf("%w: 16-bit instruction %#04x", ErrUnsupportedEncoding, word0)
	case word0&0b1_1100 == 0b1_1100:
		return nil, fmt.Errorf("%w: 48-bit or longer instruction %#04x", ErrUnsupportedEncoding, word0)
	}

	word1, err := nextUnit(r)
	if err != nil {
		return nil, err
	}

	return d.Decode32(uint32(word1)<<16 | uint32(word0))
}

// EncodedLength returns the length in bytes of the instruction whose first
// code unit is unit, following the standard RISC-V length encoding. It
// returns 0 for the reserved 192-bit and longer space.
func EncodedLength(unit uint16) int {
	switch {
	case unit&0b11 != 0b11:
		return 2
	case unit&0b1_1100 != 0b1_1100:
		return 4
	case unit&0b11_1111 == 0b01_1111:
		return 6
	case unit&0b111_1111 == 0b011_1111:
		return 8
	case unit&0b111_1111 == 0b111_1111:
		nnn := int(unit>>12) & 0b111
		if nnn == 0b111 {
			return 0
		}
		return 10 + 2*nnn
	}
	return 0
}

func nextUnit(r CodeUnitReader) (uint16, error) {
	unit, err := r.NextUnit()
	if err == nil {
		return unit, nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, ErrStreamExhausted) {
		return 0, ErrStreamExhausted
	}
	return 0, fmt.Errorf("failed to read code unit: %w", err)
}

// Decode32 decodes a 32-bit instruction word.
func (d *Decoder) Decode32(word uint32) (*Instruction, error) {
	inst := &Instruction{word: word}

	var err error
	switch opcodeBits(word) {
	case opcLUI:
		inst.op, inst.operands = OpLUI, layoutU
	case opcAUIPC:
		inst.op, inst.operands = OpAUIPC, layoutU
	case opcJAL:
		inst.op, inst.operands = OpJAL, layoutJ
	case opcJALR:
		inst.op, inst.operands = OpJALR, layoutI
	case opcBranch:
		err = d.decodeBranch(word, inst)
	case opcLoad:
		err = d.decodeLoad(word, inst)
	case opcStore:
		err = d.decodeStore(word, inst)
	case opcOpImm:
		err = d.decodeOpImm(word, inst)
	case opcOp:
		err = d.decodeOp(word, inst)
	case opcOpImm32:
		err = d.decodeOpImm32(word, inst)
	case opcOp32:
		err = d.decodeOp32(word, inst)
	case opcMiscMem:
		err = d.decodeMiscMem(word, inst)
	case opcSystem:
		err = d.decodeSystem(word, inst)
	default:
		err = invalid(word)
	}

	if err != nil {
		return nil, err
	}

	return inst, nil
}

func invalid(word uint32) error {
	return fmt.Errorf("%w: %#08x", ErrInvalidOpcode, word)
}

// decodeBranch decodes the Bxx group, selected by funct3.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | 1100011
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) error {
	inst.operands = layoutB

	switch funct3(word) {
	case 0b000:
		inst.op = OpBEQ
	case 0b001:
		inst.op = OpBNE
	case 0b100:
		inst.op = OpBLT
	case 0b101:
		inst.op = OpBGE
	case 0b110:
		inst.op = OpBLTU
	case 0b111:
		inst.op = OpBGEU
	default:
		return invalid(word)
	}
	return nil
}

// decodeLoad decodes the Lx group, selected by funct3.
// Format: imm[11:0] | rs1 | funct3 | rd | 0000011
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) error {
	inst.operands = layoutLoad

	switch funct3(word) {
	case 0b000:
		inst.op = OpLB
	case 0b001:
		inst.op = OpLH
	case 0b010:
		inst.op = OpLW
	case 0b100:
		inst.op = OpLBU
	case 0b101:
		inst.op = OpLHU
	case 0b011:
		if !d.rv64 {
			return invalid(word)
		}
		inst.op = OpLD
	case 0b110:
		if !d.rv64 {
			return invalid(word)
		}
		inst.op = OpLWU
	default:
		return invalid(word)
	}
	return nil
}

// decodeStore decodes the Sx group, selected by funct3.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | 0100011
func (d *Decoder) decodeStore(word uint32, inst *Instruction) error {
	inst.operands = layoutStore

	switch funct3(word) {
	case 0b000:
		inst.op = OpSB
	case 0b001:
		inst.op = OpSH
	case 0b010:
		inst.op = OpSW
	case 0b011:
		if !d.rv64 {
			return invalid(word)
		}
		inst.op = OpSD
	default:
		return invalid(word)
	}
	return nil
}

// decodeOpImm decodes the ALU immediate group. Shifts switch the third
// operand to a shift amount; RV64 widens it to six bits.
// Format: imm[11:0] | rs1 | funct3 | rd | 0010011
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) error {
	inst.operands = layoutI

	switch funct3(word) {
	case 0b000:
		inst.op = OpADDI
	case 0b010:
		inst.op = OpSLTI
	case 0b011:
		inst.op = OpSLTIU
	case 0b100:
		inst.op = OpXORI
	case 0b110:
		inst.op = OpORI
	case 0b111:
		inst.op = OpANDI
	case 0b001, 0b101:
		return d.decodeShiftImm(word, inst)
	}
	return nil
}

func (d *Decoder) decodeShiftImm(word uint32, inst *Instruction) error {
	if d.rv64 {
		inst.operands = layoutShift6
		switch {
		case funct3(word) == 0b001 && funct6(word) == 0b00_0000:
			inst.op = OpSLLI
		case funct3(word) == 0b101 && funct6(word) == 0b00_0000:
			inst.op = OpSRLI
		case funct3(word) == 0b101 && funct6(word) == 0b01_0000:
			inst.op = OpSRAI
		default:
			return invalid(word)
		}
		return nil
	}

	inst.operands = layoutShift
	if funct3(word) == 0b001 {
		inst.op = OpSLLI
		return nil
	}

	switch funct7(word) {
	case 0b000_0000:
		inst.op = OpSRLI
	case 0b010_0000:
		inst.op = OpSRAI
	default:
		return invalid(word)
	}
	return nil
}

// decodeOp decodes the ALU register group, selected by funct3 and funct7.
// Format: funct7 | rs2 | rs1 | funct3 | rd | 0110011
func (d *Decoder) decodeOp(word uint32, inst *Instruction) error {
	inst.operands = layoutR

	f7 := funct7(word)
	switch funct3(word) {
	case 0b000:
		switch f7 {
		case 0b000_0000:
			inst.op = OpADD
		case 0b010_0000:
			inst.op = OpSUB
		default:
			return invalid(word)
		}
	case 0b101:
		switch f7 {
		case 0b000_0000:
			inst.op = OpSRL
		case 0b010_0000:
			inst.op = OpSRA
		default:
			return invalid(word)
		}
	case 0b001:
		inst.op = OpSLL
	case 0b010:
		inst.op = OpSLT
	case 0b011:
		inst.op = OpSLTU
	case 0b100:
		inst.op = OpXOR
	case 0b110:
		inst.op = OpOR
	case 0b111:
		inst.op = OpAND
	}

	// The remaining rows have a single encoding, with funct7 zero.
	if f7 != 0 && funct3(word) != 0b000 && funct3(word) != 0b101 {
		return invalid(word)
	}
	return nil
}

// decodeOpImm32 decodes the RV64 word-width ALU immediate group.
func (d *Decoder) decodeOpImm32(word uint32, inst *Instruction) error {
	if !d.rv64 {
		return invalid(word)
	}

	switch funct3(word) {
	case 0b000:
		inst.op, inst.operands = OpADDIW, layoutI
		return nil
	case 0b001:
		if funct7(word) == 0b000_0000 {
			inst.op, inst.operands = OpSLLIW, layoutShift
			return nil
		}
	case 0b101:
		switch funct7(word) {
		case 0b000_0000:
			inst.op, inst.operands = OpSRLIW, layoutShift
			return nil
		case 0b010_0000:
			inst.op, inst.operands = OpSRAIW, layoutShift
			return nil
		}
	}
	return invalid(word)
}

// decodeOp32 decodes the RV64 word-width ALU register group.
func (d *Decoder) decodeOp32(word uint32, inst *Instruction) error {
	if !d.rv64 {
		return invalid(word)
	}

	inst.operands = layoutR
	switch [2]uint32{funct3(word), funct7(word)} {
	case [2]uint32{0b000, 0b000_0000}:
		inst.op = OpADDW
	case [2]uint32{0b000, 0b010_0000}:
		inst.op = OpSUBW
	case [2]uint32{0b001, 0b000_0000}:
		inst.op = OpSLLW
	case [2]uint32{0b101, 0b000_0000}:
		inst.op = OpSRLW
	case [2]uint32{0b101, 0b010_0000}:
		inst.op = OpSRAW
	default:
		return invalid(word)
	}
	return nil
}

// decodeMiscMem decodes the FENCE group. Only the base FENCE (funct3 000)
// is implemented.
// Format: fm | pred | succ | rs1 | funct3 | rd | 0001111
func (d *Decoder) decodeMiscMem(word uint32, inst *Instruction) error {
	if funct3(word) != 0b000 {
		return fmt.Errorf("%w: fence group funct3 %#03b in %#08x",
			ErrUnsupportedEncoding, funct3(word), word)
	}

	inst.op, inst.operands = OpFENCE, layoutFence
	return nil
}

// decodeSystem decodes ECALL and EBREAK, selected by bits [31:20].
func (d *Decoder) decodeSystem(word uint32, inst *Instruction) error {
	inst.operands = layoutNone

	switch word >> 20 {
	case 0x000:
		inst.op = OpECALL
	case 0x001:
		inst.op = OpEBREAK
	default:
		return invalid(word)
	}
	return nil
}
