package loader_test

import (
	"bytes"
	"debug/elf"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdis/internal/elftest"
	"github.com/sarchlab/rvdis/loader"
)

var _ = Describe("ELF Loader", func() {
	var tempDir string

	// addi a0, zero, 42; ret
	code := []byte{
		0x13, 0x05, 0xa0, 0x02,
		0x67, 0x80, 0x00, 0x00,
	}

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	write := func(name string, f elftest.File) string {
		path := filepath.Join(tempDir, name)
		Expect(f.Write(path)).To(Succeed())
		return path
	}

	Describe("Load", func() {
		Context("with a valid RV64 ELF binary", func() {
			var elfPath string

			BeforeEach(func() {
				f := elftest.RISCV64(0x10000, code)
				f.Entry = 0x10004
				elfPath = write("test.elf", f)
			})

			It("should extract the entry point and width", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint64(0x10004)))
				Expect(prog.XLEN).To(Equal(64))
			})

			It("should load the segment contents", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.Segments).To(HaveLen(1))
				Expect(prog.Segments[0].VirtAddr).To(Equal(uint64(0x10000)))
				Expect(prog.Segments[0].Data).To(Equal(code))
				Expect(prog.Segments[0].Executable()).To(BeTrue())
				Expect(prog.Segments[0].Flags & loader.SegmentFlagRead).NotTo(BeZero())
			})
		})

		Context("with a valid RV32 ELF binary", func() {
			It("should report a 32-bit width", func() {
				elfPath := write("rv32.elf", elftest.RISCV32(0x80000000, code))

				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.XLEN).To(Equal(32))
				Expect(prog.EntryPoint).To(Equal(uint64(0x80000000)))
				Expect(prog.Segments[0].Data).To(Equal(code))
			})
		})

		Context("with an invalid file", func() {
			It("should return error for non-existent file", func() {
				_, err := loader.Load("/nonexistent/path/to/file.elf")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to open"))
			})

			It("should return error for non-ELF file", func() {
				notElfPath := filepath.Join(tempDir, "not-elf.bin")
				Expect(os.WriteFile(notElfPath, []byte("not an elf file"), 0644)).To(Succeed())

				_, err := loader.Load(notElfPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("ELF"))
			})

			It("should return error for empty file", func() {
				emptyPath := filepath.Join(tempDir, "empty.elf")
				Expect(os.WriteFile(emptyPath, []byte{}, 0644)).To(Succeed())

				_, err := loader.Load(emptyPath)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a non-RISC-V ELF", func() {
			It("should reject x86-64", func() {
				f := elftest.RISCV64(0x400000, code)
				f.Machine = elftest.MachineX86_64
				_, err := loader.Load(write("x86.elf", f))
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not a RISC-V"))
			})

			It("should reject ARM64", func() {
				f := elftest.RISCV64(0x400000, code)
				f.Machine = elftest.MachineARM64
				_, err := loader.Load(write("arm64.elf", f))
				Expect(err).To(MatchError(ContainSubstring("EM_AARCH64")))
			})
		})
	})

	Describe("LoadFile", func() {
		It("should accept an already opened ELF file", func() {
			f, err := elf.NewFile(bytes.NewReader(elftest.RISCV64(0x10000, code).Bytes()))
			Expect(err).NotTo(HaveOccurred())

			prog, err := loader.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(1))
		})
	})

	Describe("Multi-segment ELFs", func() {
		var prog *loader.Program

		BeforeEach(func() {
			data := []byte{0x01, 0x02, 0x03, 0x04}
			f := elftest.File{
				Class:   elftest.Class64,
				Machine: elftest.MachineRISCV,
				Entry:   0x10000,
				Segments: []elftest.Segment{
					{Flags: elftest.FlagR | elftest.FlagX, Vaddr: 0x10000, Data: code},
					{Flags: elftest.FlagR | elftest.FlagW, Vaddr: 0x20000, Data: data, MemSize: 1024},
					{Type: elftest.TypeNote, Flags: elftest.FlagR, Vaddr: 0x30000, Data: []byte{0xAA}},
				},
			}

			var err error
			prog, err = loader.Load(write("multi.elf", f))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should load only PT_LOAD segments", func() {
			Expect(prog.Segments).To(HaveLen(2))
		})

		It("should keep BSS sizes", func() {
			Expect(prog.Segments[1].Data).To(HaveLen(4))
			Expect(prog.Segments[1].MemSize).To(Equal(uint64(1024)))
			Expect(prog.Segments[1].Flags & loader.SegmentFlagWrite).NotTo(BeZero())
		})

		It("should select executable segments", func() {
			exec := prog.ExecutableSegments()
			Expect(exec).To(HaveLen(1))
			Expect(exec[0].VirtAddr).To(Equal(uint64(0x10000)))
		})
	})

	Describe("ELFs with no loadable segments", func() {
		It("should return an empty segment list", func() {
			f := elftest.File{Class: elftest.Class64, Machine: elftest.MachineRISCV, Entry: 0x400000}

			prog, err := loader.Load(write("no-load.elf", f))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(BeEmpty())
			Expect(prog.ExecutableSegments()).To(BeEmpty())
			Expect(prog.EntryPoint).To(Equal(uint64(0x400000)))
		})
	})
})
