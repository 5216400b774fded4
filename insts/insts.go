// Package insts provides RISC-V instruction definitions, decoding and
// formatting.
//
// This package implements decoding of RISC-V machine code into structured
// instruction representations. It supports:
//   - RV32I base integer instructions (LUI, AUIPC, JAL, JALR, branches,
//     loads, stores, ALU immediate and register forms, FENCE, ECALL, EBREAK)
//   - RV64I word-width additions (LWU, LD, SD, *W arithmetic) when the
//     decoder is configured with WithXLEN(64)
//
// An Instruction keeps only the raw word, the opcode and three operand specs.
// Operand values are resolved from the word each time they are asked for.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(insts.NewByteReader([]byte{0x13, 0x06, 0xc6, 0xfb}))
//	if err != nil {
//		return err
//	}
//	fmt.Println(inst) // addi a2, a2, -0x44
package insts
