// Package disasm disassembles RISC-V code buffers and ELF programs.
//
// A Disassembler walks a buffer with the insts decoder. Words that cannot be
// decoded are emitted as data directives and decoding resumes at the next
// instruction boundary, so a listing always covers every input byte.
package disasm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/rvdis/insts"
	"github.com/sarchlab/rvdis/loader"
)

// cancelCheckInterval is how many lines are produced between context checks.
const cancelCheckInterval = 1024

// Line is one entry of a listing: a decoded instruction, or raw bytes that
// could not be decoded.
type Line struct {
	Addr uint64
	Raw  []byte
	Inst *insts.Instruction // nil when the bytes were not decoded
	Err  error              // why the bytes were not decoded
}

// Listing is the disassembly of one contiguous region.
type Listing struct {
	Addr  uint64
	Lines []Line
}

// Undecoded returns how many lines of the listing are raw data.
func (l *Listing) Undecoded() int {
	n := 0
	for _, line := range l.Lines {
		if line.Inst == nil {
			n++
		}
	}
	return n
}

// Disassembler turns code into listings.
type Disassembler struct {
	cfg       *Config
	log       logrus.FieldLogger
	formatter insts.Formatter
}

// New creates a Disassembler. A nil cfg selects DefaultConfig and a nil log
// selects the logrus standard logger. A worker count below one is raised to
// one.
func New(cfg *Config, log logrus.FieldLogger) *Disassembler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	cfg = cfg.Clone()
	if cfg.Workers < 1 {
		log.WithField("workers", cfg.Workers).Debug("worker count raised to 1")
		cfg.Workers = 1
	}

	return &Disassembler{
		cfg: cfg,
		log: log,
		formatter: insts.Formatter{
			NoPseudo: cfg.NoPseudo,
			Aliases:  cfg.Aliases,
		},
	}
}

func (d *Disassembler) decoderFor(xlen int) *insts.Decoder {
	if d.cfg.XLEN != 0 {
		xlen = d.cfg.XLEN
	}
	return insts.NewDecoder(insts.WithXLEN(xlen))
}

// Disassemble decodes code, which is loaded at addr.
func (d *Disassembler) Disassemble(ctx context.Context, addr uint64, code []byte) (*Listing, error) {
	return d.disassemble(ctx, d.decoderFor(32), addr, code)
}

func (d *Disassembler) disassemble(
	ctx context.Context,
	decoder *insts.Decoder,
	addr uint64,
	code []byte,
) (*Listing, error) {
	listing := &Listing{Addr: addr}
	r := insts.NewByteReader(code)

	for r.Remaining() > 0 {
		if len(listing.Lines)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		off := r.Offset()
		inst, err := decoder.Decode(r)

		switch {
		case err == nil:
			listing.Lines = append(listing.Lines, Line{
				Addr: addr + uint64(off),
				Raw:  code[off:r.Offset()],
				Inst: inst,
			})

		case errors.Is(err, insts.ErrStreamExhausted):
			// A truncated tail: emit what is left as data.
			listing.Lines = append(listing.Lines, tailLines(addr, code, off, err)...)
			r.Seek(len(code))

		case errors.Is(err, insts.ErrInvalidOpcode), errors.Is(err, insts.ErrUnsupportedEncoding):
			size := skipSize(code[off:])
			d.log.WithFields(logrus.Fields{
				"addr": fmt.Sprintf("%#x", addr+uint64(off)),
				"size": size,
			}).WithError(err).Debug("undecodable instruction")

			listing.Lines = append(listing.Lines, Line{
				Addr: addr + uint64(off),
				Raw:  code[off : off+size],
				Err:  err,
			})
			r.Seek(off + size)

		default:
			return nil, err
		}
	}

	return listing, nil
}

// skipSize returns how many bytes to step over after an undecodable
// instruction starting at code[0]. code holds at least two bytes.
func skipSize(code []byte) int {
	size := insts.EncodedLength(uint16(code[1])<<8 | uint16(code[0]))
	if size == 0 || size > len(code) {
		size = 2
	}
	return size
}

func tailLines(addr uint64, code []byte, off int, err error) []Line {
	var lines []Line
	for off < len(code) {
		n := 2
		if len(code)-off < 2 {
			n = 1
		}
		lines = append(lines, Line{Addr: addr + uint64(off), Raw: code[off : off+n], Err: err})
		off += n
	}
	return lines
}

// DisassembleProgram disassembles every executable segment of prog. Segments
// are processed in parallel, bounded by the configured worker count. The
// listings are ordered by address.
func (d *Disassembler) DisassembleProgram(ctx context.Context, prog *loader.Program) ([]*Listing, error) {
	decoder := d.decoderFor(prog.XLEN)
	segs := prog.ExecutableSegments()
	listings := make([]*Listing, len(segs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for i, seg := range segs {
		g.Go(func() error {
			log := d.log.WithField("segment", fmt.Sprintf("%#x", seg.VirtAddr))
			log.WithField("bytes", len(seg.Data)).Debug("disassembling segment")

			listing, err := d.disassemble(ctx, decoder, seg.VirtAddr, seg.Data)
			if err != nil {
				return fmt.Errorf("segment %#x: %w", seg.VirtAddr, err)
			}

			log.WithFields(logrus.Fields{
				"lines":     len(listing.Lines),
				"undecoded": listing.Undecoded(),
			}).Info("segment disassembled")

			listings[i] = listing
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(listings, func(a, b int) bool {
		return listings[a].Addr < listings[b].Addr
	})

	return listings, nil
}

// FormatLine renders one listing line according to the configuration.
func (d *Disassembler) FormatLine(line Line) string {
	var sb strings.Builder

	if d.cfg.ShowAddress {
		fmt.Fprintf(&sb, "%8x:\t", line.Addr)
	}
	if d.cfg.ShowRaw {
		fmt.Fprintf(&sb, "%-8s\t", rawHex(line.Raw))
	}

	if line.Inst != nil {
		sb.WriteString(d.formatter.Format(line.Inst))
	} else {
		sb.WriteString(dataDirective(line.Raw))
	}

	return sb.String()
}

// WriteListing writes listing to w, one line per instruction.
func (d *Disassembler) WriteListing(w io.Writer, listing *Listing) error {
	if _, err := fmt.Fprintf(w, "\n%016x <segment>:\n", listing.Addr); err != nil {
		return err
	}
	for _, line := range listing.Lines {
		if _, err := fmt.Fprintln(w, d.FormatLine(line)); err != nil {
			return err
		}
	}
	return nil
}

// rawHex prints raw bytes as a little-endian value, the way the encoding is
// usually written.
func rawHex(raw []byte) string {
	var sb strings.Builder
	for i := len(raw) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%02x", raw[i])
	}
	return sb.String()
}

func dataDirective(raw []byte) string {
	switch len(raw) {
	case 1:
		return fmt.Sprintf(".byte 0x%02x", raw[0])
	case 2:
		return ".half 0x" + rawHex(raw)
	case 4:
		return ".word 0x" + rawHex(raw)
	}

	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("0x%02x", b)
	}
	return ".byte " + strings.Join(parts, ", ")
}
