package main

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/sarchlab/rvdis/insts"
)

var (
	decodeXLENFlag = &cli.IntFlag{
		Name:  "xlen",
		Usage: "base integer width, 32 or 64",
		Value: 32,
	}
	noPseudoFlag = &cli.BoolFlag{
		Name:  "no-pseudo",
		Usage: "print base instructions instead of pseudo-instructions",
	}
	aliasesFlag = &cli.BoolFlag{
		Name:  "aliases",
		Usage: "also print j, jal, ret and fence aliases",
	}
	dumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "also dump the decoded instruction and its operands",
	}
)

// dumper shows the raw fields of a decoded instruction rather than its text.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "Decode hexadecimal instruction words",
	ArgsUsage: "<word> [word...]",
	Action:    decode,
	Flags: []cli.Flag{
		decodeXLENFlag,
		noPseudoFlag,
		aliasesFlag,
		dumpFlag,
	},
}

func decode(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one instruction word is required")
	}

	log, err := newLogger(c)
	if err != nil {
		return err
	}

	xlen := c.Int(decodeXLENFlag.Name)
	if xlen != 32 && xlen != 64 {
		return fmt.Errorf("xlen must be 32 or 64, got %d", xlen)
	}

	decoder := insts.NewDecoder(insts.WithXLEN(xlen))
	formatter := insts.Formatter{
		NoPseudo: c.Bool(noPseudoFlag.Name),
		Aliases:  c.Bool(aliasesFlag.Name),
	}
	w := c.App.Writer

	for _, arg := range c.Args().Slice() {
		word, err := parseWord(arg)
		if err != nil {
			return err
		}

		var buf [insts.InstructionSize]byte
		binary.LittleEndian.PutUint32(buf[:], word)

		inst, err := decoder.Decode(insts.NewByteReader(buf[:]))
		if err != nil {
			log.WithError(err).WithField("word", arg).Warn("undecodable instruction")
			fmt.Fprintf(w, "%08x\t.word 0x%08x\n", word, word)
			continue
		}

		if !inst.WellDefined() {
			log.WithField("word", arg).Warn("instruction has reserved bits set")
		}

		fmt.Fprintf(w, "%08x\t%s\n", word, formatter.Format(inst))

		if c.Bool(dumpFlag.Name) {
			dumper.Fdump(w, inst, inst.Operands())
		}
	}

	return nil
}

// parseWord parses a 32-bit instruction word written in hex, with or
// without a 0x prefix.
func parseWord(s string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	trimmed = strings.ReplaceAll(trimmed, "_", "")

	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid instruction word %q: %w", s, err)
	}
	return uint32(v), nil
}
