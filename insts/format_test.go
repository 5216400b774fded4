package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdis/insts"
)

func display(data ...byte) string {
	inst, err := insts.NewDecoder().Decode(insts.NewByteReader(data))
	Expect(err).NotTo(HaveOccurred())
	return inst.String()
}

func displayWord(word uint32) string {
	inst, err := insts.NewDecoder().Decode32(word)
	Expect(err).NotTo(HaveOccurred())
	return inst.String()
}

var _ = Describe("Formatter", func() {
	Describe("Arithmetic", func() {
		It("should format negative immediates as signed hex", func() {
			Expect(display(0x13, 0x06, 0xc6, 0xfb)).To(Equal("addi a2, a2, -0x44"))
			Expect(display(0x13, 0x01, 0x01, 0xed)).To(Equal("addi sp, sp, -0x130"))
		})

		It("should format the AUIPC immediate unshifted", func() {
			Expect(display(0x97, 0x31, 0x88, 0x02)).To(Equal("auipc gp, 0x2883"))
		})

		It("should format register operands by ABI name", func() {
			Expect(display(0x33, 0x65, 0xb5, 0x00)).To(Equal("or a0, a0, a1"))
		})

		It("should format shift amounts as hex", func() {
			Expect(display(0x13, 0x56, 0xc5, 0x00)).To(Equal("srli a2, a0, 0xc"))
			Expect(display(0x13, 0x97, 0x27, 0x00)).To(Equal("slli a4, a5, 0x2"))
		})

		It("should format a zero immediate without a sign", func() {
			Expect(displayWord(encI(0b001_0011, 10, 0b111, 11, 0))).To(Equal("andi a0, a1, 0x0"))
		})
	})

	Describe("Branches", func() {
		It("should format forward offsets relative to the PC", func() {
			Expect(display(0x63, 0x1a, 0xf7, 0x00)).To(Equal("bne a4, a5, $+0x14"))
			Expect(display(0x63, 0x08, 0xf7, 0x00)).To(Equal("beq a4, a5, $+0x10"))
		})

		It("should format backward offsets relative to the PC", func() {
			Expect(display(0xe3, 0x96, 0x07, 0xfe)).To(Equal("bne a5, zero, $-0x14"))
		})

		It("should format the most negative branch offset", func() {
			Expect(displayWord(encB(0b100, 1, 2, -0x1000))).To(Equal("blt ra, sp, $-0x1000"))
		})
	})

	Describe("Jumps", func() {
		It("should format jal with a link register other than ra", func() {
			Expect(displayWord(0x0080056f)).To(Equal("jal a0, $+0x8"))
		})

		It("should format jalr generically", func() {
			Expect(displayWord(0x000780e7)).To(Equal("jalr ra, a5, 0x0"))
		})
	})

	Describe("Moves and memory", func() {
		It("should format LUI with the unshifted immediate", func() {
			Expect(display(0xb7, 0x05, 0x00, 0xc0)).To(Equal("lui a1, 0xc0000"))
			Expect(display(0xb7, 0xc7, 0x29, 0x00)).To(Equal("lui a5, 0x29c"))
		})

		It("should format base+offset operands", func() {
			Expect(display(0x23, 0x20, 0xa1, 0x18)).To(Equal("sw a0, 0x180(sp)"))
			Expect(display(0x03, 0x26, 0x01, 0x18)).To(Equal("lw a2, 0x180(sp)"))
		})

		It("should omit a zero offset", func() {
			Expect(displayWord(encI(0b000_0011, 10, 0b100, 11, 0))).To(Equal("lbu a0, (a1)"))
		})

		It("should sign negative offsets", func() {
			Expect(displayWord(encS(0b001, 8, 1, -12))).To(Equal("sh ra, -0xc(s0)"))
		})
	})

	Describe("System and fences", func() {
		It("should format operand-less instructions without a trailing space", func() {
			Expect(displayWord(0x00000073)).To(Equal("ecall"))
			Expect(displayWord(0x00100073)).To(Equal("ebreak"))
		})

		It("should format fence ordering sets", func() {
			Expect(displayWord(0x0310000f)).To(Equal("fence rw, w"))
			Expect(displayWord(0x0c00000f)).To(Equal("fence io, 0"))
		})
	})

	Describe("Pseudo-instructions", func() {
		It("should format addi zero, zero, 0 as nop", func() {
			Expect(display(0x13, 0x00, 0x00, 0x00)).To(Equal("nop"))
		})

		It("should prefer nop over mv when rd equals rs", func() {
			Expect(displayWord(encI(0b001_0011, 10, 0b000, 10, 0))).To(Equal("nop"))
		})

		It("should format addi rd, rs, 0 as mv", func() {
			Expect(display(0x13, 0x85, 0x07, 0x00)).To(Equal("mv a0, a5"))
		})

		It("should drop the registers of a self-compare beq", func() {
			Expect(displayWord(encB(0b000, 5, 5, 0x20))).To(Equal("beq $+0x20"))
			Expect(displayWord(encB(0b000, 5, 5, -0x20))).To(Equal("beq $-0x20"))
		})

		It("should only rewrite beq, not other self-compare branches", func() {
			Expect(displayWord(encB(0b001, 5, 5, 0x20))).To(Equal("bne t0, t0, $+0x20"))
		})

		It("should format a register shift by zero into itself as nop", func() {
			Expect(displayWord(encR(0b011_0011, 10, 0b001, 10, 0, 0))).To(Equal("nop"))
			Expect(displayWord(encR(0b011_0011, 10, 0b001, 11, 0, 0))).To(Equal("sll a0, a1, zero"))
		})

		It("should leave other aliases to the generic form by default", func() {
			Expect(displayWord(encR(0b001_0011, 10, 0b001, 10, 0, 0))).To(Equal("slli a0, a0, 0x0"))
			Expect(displayWord(0xffdff06f)).To(Equal("jal zero, $-0x4"))
			Expect(displayWord(0x001000ef)).To(Equal("jal ra, $+0x800"))
			Expect(displayWord(0x00008067)).To(Equal("jalr zero, ra, 0x0"))
			Expect(displayWord(0x0ff0000f)).To(Equal("fence iorw, iorw"))
		})

		It("should leave rewriting off when asked", func() {
			inst, err := insts.NewDecoder().Decode32(0x00000013)
			Expect(err).NotTo(HaveOccurred())

			f := insts.Formatter{NoPseudo: true}
			Expect(f.Format(inst)).To(Equal("addi zero, zero, 0x0"))
		})
	})

	Describe("Extra aliases", func() {
		f := insts.Formatter{Aliases: true}

		DescribeTable("rewrites",
			func(word uint32, expected string) {
				inst, err := insts.NewDecoder().Decode32(word)
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Format(inst)).To(Equal(expected))
			},
			Entry("slli by zero into itself", encR(0b001_0011, 10, 0b001, 10, 0, 0), "nop"),
			Entry("jump without link", uint32(0xffdff06f), "j $-0x4"),
			Entry("jump linking ra", uint32(0x001000ef), "jal $+0x800"),
			Entry("return", uint32(0x00008067), "ret"),
			Entry("full fence", uint32(0x0ff0000f), "fence"),
			Entry("default rewrites still apply", uint32(0x00000013), "nop"),
			Entry("jal with another link register", uint32(0x0080056f), "jal a0, $+0x8"),
			Entry("jalr with an offset", uint32(0x00408067), "jalr zero, ra, 0x4"),
			Entry("partial fence", uint32(0x0310000f), "fence rw, w"),
		)

		It("should be overridden by NoPseudo", func() {
			inst, err := insts.NewDecoder().Decode32(0x00008067)
			Expect(err).NotTo(HaveOccurred())

			nf := insts.Formatter{NoPseudo: true, Aliases: true}
			Expect(nf.Format(inst)).To(Equal("jalr zero, ra, 0x0"))
		})
	})

	Describe("Operand text", func() {
		DescribeTable("FormatOperand",
			func(op insts.Op, o insts.Operand, expected string) {
				Expect(insts.FormatOperand(op, o)).To(Equal(expected))
			},
			Entry("register", insts.OpADD, insts.RegOperand(31), "t6"),
			Entry("positive immediate", insts.OpADDI, insts.ImmOperand(0x7ff), "0x7ff"),
			Entry("most negative immediate", insts.OpADDI, insts.ImmOperand(-0x80000000), "-0x80000000"),
			Entry("long immediate for lui", insts.OpLUI, insts.LongImmOperand(0xfffff000), "0xfffff"),
			Entry("long immediate elsewhere", insts.OpADDI, insts.LongImmOperand(0x1000), "0x1000"),
			Entry("zero offset", insts.OpLW, insts.BaseOffsetOperand(2, 0), "(sp)"),
			Entry("negative offset", insts.OpLW, insts.BaseOffsetOperand(8, -0x800), "-0x800(s0)"),
			Entry("zero jump", insts.OpJAL, insts.JOffsetOperand(0), "$+0x0"),
			Entry("fence set", insts.OpFENCE, insts.FenceOperand(insts.FenceI|insts.FenceW), "iw"),
		)
	})

	Describe("Purity", func() {
		It("should format the same instruction identically every time", func() {
			inst, err := insts.NewDecoder().Decode32(0xfe0796e3)
			Expect(err).NotTo(HaveOccurred())

			first := inst.String()
			for i := 0; i < 10; i++ {
				Expect(inst.String()).To(Equal(first))
			}
			Expect(inst.Word()).To(Equal(uint32(0xfe0796e3)))
		})
	})

	It("should panic when asked to format an invalid opcode", func() {
		var inst insts.Instruction
		Expect(func() { _ = inst.String() }).To(Panic())
	})
})
