// Package elftest writes minimal ELF executables for tests.
package elftest

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ELF constants used by the builder.
const (
	Class32 = 1
	Class64 = 2

	MachineX86_64 = 62
	MachineARM64  = 183
	MachineRISCV  = 243

	TypeLoad = 1
	TypeNote = 4

	FlagX = 0x1
	FlagW = 0x2
	FlagR = 0x4
)

// Segment describes one program header and its file contents.
type Segment struct {
	Type    uint32 // defaults to TypeLoad
	Flags   uint32
	Vaddr   uint64
	Data    []byte
	MemSize uint64 // defaults to len(Data)
}

// File describes an executable to write.
type File struct {
	Class    byte
	Machine  uint16
	Entry    uint64
	Segments []Segment
}

// RISCV64 returns a single-segment RV64 executable holding code at addr.
func RISCV64(addr uint64, code []byte) File {
	return File{
		Class:   Class64,
		Machine: MachineRISCV,
		Entry:   addr,
		Segments: []Segment{
			{Flags: FlagR | FlagX, Vaddr: addr, Data: code},
		},
	}
}

// RISCV32 returns a single-segment RV32 executable holding code at addr.
func RISCV32(addr uint64, code []byte) File {
	f := RISCV64(addr, code)
	f.Class = Class32
	return f
}

// Bytes encodes f as a little-endian ELF image. Program headers directly
// follow the ELF header and segment data follows the program headers.
func (f File) Bytes() []byte {
	ehsize, phentsize, shentsize := 64, 56, 64
	if f.Class == Class32 {
		ehsize, phentsize, shentsize = 52, 32, 40
	}

	le := binary.LittleEndian
	hdr := make([]byte, ehsize)
	copy(hdr[0:4], []byte{0x7f, 'E', 'L', 'F'})
	hdr[4] = f.Class
	hdr[5] = 1 // little endian
	hdr[6] = 1 // version
	le.PutUint16(hdr[16:18], 2) // executable
	le.PutUint16(hdr[18:20], f.Machine)
	le.PutUint32(hdr[20:24], 1)

	phoff := uint64(ehsize)
	if f.Class == Class32 {
		le.PutUint32(hdr[24:28], uint32(f.Entry))
		le.PutUint32(hdr[28:32], uint32(phoff))
		le.PutUint16(hdr[40:42], uint16(ehsize))
		le.PutUint16(hdr[42:44], uint16(phentsize))
		le.PutUint16(hdr[44:46], uint16(len(f.Segments)))
		le.PutUint16(hdr[46:48], uint16(shentsize))
	} else {
		le.PutUint64(hdr[24:32], f.Entry)
		le.PutUint64(hdr[32:40], phoff)
		le.PutUint16(hdr[52:54], uint16(ehsize))
		le.PutUint16(hdr[54:56], uint16(phentsize))
		le.PutUint16(hdr[56:58], uint16(len(f.Segments)))
		le.PutUint16(hdr[58:60], uint16(shentsize))
	}

	offset := phoff + uint64(phentsize*len(f.Segments))
	phdrs := make([]byte, 0, phentsize*len(f.Segments))
	var body []byte
	for _, seg := range f.Segments {
		typ := seg.Type
		if typ == 0 {
			typ = TypeLoad
		}
		memsz := seg.MemSize
		if memsz == 0 {
			memsz = uint64(len(seg.Data))
		}
		filesz := uint64(len(seg.Data))

		ph := make([]byte, phentsize)
		if f.Class == Class32 {
			le.PutUint32(ph[0:4], typ)
			le.PutUint32(ph[4:8], uint32(offset))
			le.PutUint32(ph[8:12], uint32(seg.Vaddr))
			le.PutUint32(ph[12:16], uint32(seg.Vaddr))
			le.PutUint32(ph[16:20], uint32(filesz))
			le.PutUint32(ph[20:24], uint32(memsz))
			le.PutUint32(ph[24:28], seg.Flags)
			le.PutUint32(ph[28:32], 0x1000)
		} else {
			le.PutUint32(ph[0:4], typ)
			le.PutUint32(ph[4:8], seg.Flags)
			le.PutUint64(ph[8:16], offset)
			le.PutUint64(ph[16:24], seg.Vaddr)
			le.PutUint64(ph[24:32], seg.Vaddr)
			le.PutUint64(ph[32:40], filesz)
			le.PutUint64(ph[40:48], memsz)
			le.PutUint64(ph[48:56], 0x1000)
		}

		phdrs = append(phdrs, ph...)
		body = append(body, seg.Data...)
		offset += filesz
	}

	out := append(hdr, phdrs...)
	return append(out, body...)
}

// Write writes f to path.
func (f File) Write(path string) error {
	if err := os.WriteFile(path, f.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write ELF fixture: %w", err)
	}
	return nil
}
