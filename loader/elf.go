// Package loader provides ELF binary loading for RISC-V executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Executable reports whether the segment holds code.
func (s *Segment) Executable() bool {
	return s.Flags&SegmentFlagExecute != 0
}

// Program represents a loaded RISC-V ELF program.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	EntryPoint uint64
	// XLEN is the base integer width, 32 or 64, taken from the ELF class.
	XLEN int
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// ExecutableSegments returns the segments that hold code, in file order.
func (p *Program) ExecutableSegments() []Segment {
	var segs []Segment
	for _, seg := range p.Segments {
		if seg.Executable() {
			segs = append(segs, seg)
		}
	}
	return segs
}

// Load parses a RISC-V ELF binary and returns its loadable segments.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadFile(f)
}

// LoadFile extracts the loadable segments of an already opened ELF file.
func LoadFile(f *elf.File) (*Program, error) {
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{EntryPoint: f.Entry}
	switch f.Class {
	case elf.ELFCLASS32:
		prog.XLEN = 32
	case elf.ELFCLASS64:
		prog.XLEN = 64
	default:
		return nil, fmt.Errorf("unsupported ELF class %v", f.Class)
	}

	// Only PT_LOAD segments carry code and data. This also skips the
	// zero-sized .riscv.attributes segment.
	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})
	}

	return prog, nil
}
