package insts

// OperandSpec describes how one field combination of the word is presented
// as an operand. SpecNothing ends the visible operand list.
type OperandSpec uint8

// Operand specs.
const (
	SpecNothing OperandSpec = iota
	SpecRs1
	SpecRs2
	SpecRd
	SpecBaseOffsetRs1I // rs1 + I-type immediate
	SpecBaseOffsetRs1S // rs1 + S-type immediate
	SpecShamt
	SpecShamt6
	SpecImm12I
	SpecImm12S
	SpecImm12B
	SpecImm20U
	SpecImm20J
	SpecFencePred
	SpecFenceSucc
)

// OperandKind tags the variant held by an Operand.
type OperandKind uint8

// Operand kinds.
const (
	KindReg        OperandKind = iota + 1 // Reg
	KindImm                               // Imm
	KindBaseOffset                        // Reg + Offset
	KindShift                             // Shift
	KindLongImm                           // LongImm
	KindJOffset                           // Imm, PC-relative
	KindFence                             // Fence
)

// Fence set bits, as encoded in the pred and succ fields.
const (
	FenceW uint8 = 1 << iota
	FenceR
	FenceO
	FenceI
)

// Operand is a resolved operand value. Only the fields belonging to Kind are
// meaningful.
type Operand struct {
	Kind    OperandKind
	Reg     uint8  // register index, 0..31
	Imm     int32  // KindImm and KindJOffset
	Offset  int16  // KindBaseOffset
	Shift   uint8  // KindShift
	LongImm uint32 // KindLongImm
	Fence   uint8  // KindFence, set of FenceI/FenceO/FenceR/FenceW
}

// RegOperand returns a register operand.
func RegOperand(reg uint8) Operand {
	return Operand{Kind: KindReg, Reg: reg & 0x1F}
}

// ImmOperand returns an immediate operand.
func ImmOperand(imm int32) Operand {
	return Operand{Kind: KindImm, Imm: imm}
}

// BaseOffsetOperand returns a base register plus offset operand.
func BaseOffsetOperand(reg uint8, offset int16) Operand {
	return Operand{Kind: KindBaseOffset, Reg: reg & 0x1F, Offset: offset}
}

// ShiftOperand returns a shift amount operand.
func ShiftOperand(amount uint8) Operand {
	return Operand{Kind: KindShift, Shift: amount}
}

// LongImmOperand returns an unsigned 32-bit immediate operand.
func LongImmOperand(imm uint32) Operand {
	return Operand{Kind: KindLongImm, LongImm: imm}
}

// JOffsetOperand returns a PC-relative displacement operand.
func JOffsetOperand(offset int32) Operand {
	return Operand{Kind: KindJOffset, Imm: offset}
}

// FenceOperand returns a fence ordering set operand.
func FenceOperand(set uint8) Operand {
	return Operand{Kind: KindFence, Fence: set & 0xF}
}

// Resolve applies spec to word. It returns false only for SpecNothing.
func Resolve(word uint32, spec OperandSpec) (Operand, bool) {
	switch spec {
	case SpecRs1:
		return RegOperand(uint8(Extract(word, FieldRs1))), true
	case SpecRs2:
		return RegOperand(uint8(Extract(word, FieldRs2))), true
	case SpecRd:
		return RegOperand(uint8(Extract(word, FieldRd))), true
	case SpecBaseOffsetRs1I:
		return BaseOffsetOperand(
			uint8(Extract(word, FieldRs1)),
			int16(Extract(word, FieldImm12I)),
		), true
	case SpecBaseOffsetRs1S:
		return BaseOffsetOperand(
			uint8(Extract(word, FieldRs1)),
			int16(Extract(word, FieldImm12S)),
		), true
	case SpecShamt:
		return ShiftOperand(uint8(Extract(word, FieldShamt))), true
	case SpecShamt6:
		return ShiftOperand(uint8(Extract(word, FieldShamt6))), true
	case SpecImm12I:
		return ImmOperand(int32(Extract(word, FieldImm12I))), true
	case SpecImm12S:
		return ImmOperand(int32(Extract(word, FieldImm12S))), true
	case SpecImm12B:
		return JOffsetOperand(int32(Extract(word, FieldImm12B))), true
	case SpecImm20U:
		return LongImmOperand(Extract(word, FieldImm20U)), true
	case SpecImm20J:
		return JOffsetOperand(int32(Extract(word, FieldImm20J))), true
	case SpecFencePred:
		return FenceOperand(uint8(Extract(word, FieldFencePred))), true
	case SpecFenceSucc:
		return FenceOperand(uint8(Extract(word, FieldFenceSucc))), true
	}

	return Operand{}, false
}
