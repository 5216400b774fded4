package insts

// Op represents a RISC-V opcode.
type Op uint16

// RISC-V opcodes. OpInvalid is the zero value and is never produced by a
// successful decode.
const (
	OpInvalid Op = iota

	// RV32I base instruction set
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpECALL
	OpEBREAK

	// RV64I additions
	OpLWU
	OpLD
	OpSD
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW

	opCount
)

var mnemonics = [opCount]string{
	OpInvalid: "invalid",
	OpLUI:     "lui",
	OpAUIPC:   "auipc",
	OpJAL:     "jal",
	OpJALR:    "jalr",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLT:     "blt",
	OpBGE:     "bge",
	OpBLTU:    "bltu",
	OpBGEU:    "bgeu",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLW:      "lw",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSW:      "sw",
	OpADDI:    "addi",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpXORI:    "xori",
	OpORI:     "ori",
	OpANDI:    "andi",
	OpSLLI:    "slli",
	OpSRLI:    "srli",
	OpSRAI:    "srai",
	OpADD:     "add",
	OpSUB:     "sub",
	OpSLL:     "sll",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpXOR:     "xor",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpOR:      "or",
	OpAND:     "and",
	OpFENCE:   "fence",
	OpECALL:   "ecall",
	OpEBREAK:  "ebreak",
	OpLWU:     "lwu",
	OpLD:      "ld",
	OpSD:      "sd",
	OpADDIW:   "addiw",
	OpSLLIW:   "slliw",
	OpSRLIW:   "srliw",
	OpSRAIW:   "sraiw",
	OpADDW:    "addw",
	OpSUBW:    "subw",
	OpSLLW:    "sllw",
	OpSRLW:    "srlw",
	OpSRAW:    "sraw",
}

// String returns the lower-case assembler mnemonic of the opcode.
func (op Op) String() string {
	if op >= opCount {
		return "invalid"
	}
	return mnemonics[op]
}

// Valid reports whether op names a real instruction.
func (op Op) Valid() bool {
	return op != OpInvalid && op < opCount
}
