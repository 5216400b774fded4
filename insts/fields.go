package insts

// Field names a raw bit group within an instruction word.
type Field uint8

// Instruction fields.
const (
	FieldRs1       Field = iota // bits [19:15]
	FieldRs2                    // bits [24:20]
	FieldRd                     // bits [11:7]
	FieldShamt                  // bits [24:20], shift amount in the rs2 slot
	FieldShamt6                 // bits [25:20], RV64 shift amount
	FieldImm12I                 // I-type 12-bit immediate
	FieldImm12S                 // S-type 12-bit immediate
	FieldImm12B                 // B-type 13-bit branch offset
	FieldImm20U                 // U-type 20-bit immediate, left in place
	FieldImm20J                 // J-type 21-bit jump offset
	FieldFencePred              // bits [27:24]
	FieldFenceSucc              // bits [23:20]
)

// Secondary dispatch keys.
func opcodeBits(word uint32) uint32 { return word & 0x7F }
func funct3(word uint32) uint32     { return (word >> 12) & 0x7 }
func funct7(word uint32) uint32     { return (word >> 25) & 0x7F }
func funct6(word uint32) uint32     { return (word >> 26) & 0x3F }

// Extract returns field f of word. Signed fields come back sign-extended to
// 32 bits, as the two's-complement bit pattern of the signed value.
func Extract(word uint32, f Field) uint32 {
	switch f {
	case FieldRs1:
		return (word >> 15) & 0x1F
	case FieldRs2, FieldShamt:
		return (word >> 20) & 0x1F
	case FieldRd:
		return (word >> 7) & 0x1F
	case FieldShamt6:
		return (word >> 20) & 0x3F
	case FieldImm12I:
		return uint32(int32(word) >> 20)
	case FieldImm12S:
		// imm[11:5] = word[31:25], imm[4:0] = word[11:7]
		hi := uint32(int32(word&0xFE000000) >> 20)
		lo := (word >> 7) & 0x1F
		return hi | lo
	case FieldImm12B:
		// imm[12|10:5] = word[31|30:25], imm[4:1|11] = word[11:8|7]
		sign := uint32(int32(word&0x80000000) >> 19)
		return sign |
			(word>>20)&0x7E0 |
			(word<<4)&0x800 |
			(word>>7)&0x1E
	case FieldImm20U:
		return word & 0xFFFFF000
	case FieldImm20J:
		// imm[20|10:1|11|19:12] = word[31|30:21|20|19:12]
		sign := uint32(int32(word&0x80000000) >> 11)
		return sign |
			(word>>20)&0x7FE |
			(word>>9)&0x800 |
			word&0xFF000
	case FieldFencePred:
		return (word >> 24) & 0xF
	case FieldFenceSucc:
		return (word >> 20) & 0xF
	}

	return 0
}
