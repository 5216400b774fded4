package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/sarchlab/rvdis/disasm"
	"github.com/sarchlab/rvdis/loader"
)

var (
	configFlag = &cli.PathFlag{
		Name:  "config",
		Usage: "path to a disassembler configuration JSON file",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "number of segments disassembled in parallel",
	}
	elfXLENFlag = &cli.IntFlag{
		Name:  "xlen",
		Usage: "override the width recorded in the ELF header (32 or 64)",
	}
	noAddressFlag = &cli.BoolFlag{
		Name:  "no-address",
		Usage: "omit addresses from the listing",
	}
	noRawFlag = &cli.BoolFlag{
		Name:  "no-raw",
		Usage: "omit raw encodings from the listing",
	}
)

var elfCommand = &cli.Command{
	Name:      "elf",
	Usage:     "Disassemble the executable segments of a RISC-V ELF file",
	ArgsUsage: "<program.elf>",
	Action:    disassembleELF,
	Flags: []cli.Flag{
		configFlag,
		workersFlag,
		elfXLENFlag,
		noPseudoFlag,
		aliasesFlag,
		noAddressFlag,
		noRawFlag,
	},
}

func disassembleELF(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one ELF file, got %d arguments", c.NArg())
	}
	path := c.Args().First()

	log, err := newLogger(c)
	if err != nil {
		return err
	}

	cfg, err := elfConfig(c)
	if err != nil {
		return err
	}

	prog, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", path, err)
	}

	log.WithFields(logrus.Fields{
		"path":     path,
		"entry":    fmt.Sprintf("%#x", prog.EntryPoint),
		"xlen":     prog.XLEN,
		"segments": len(prog.Segments),
	}).Info("loaded program")

	d := disasm.New(cfg, log)
	listings, err := d.DisassembleProgram(c.Context, prog)
	if err != nil {
		return err
	}

	for _, listing := range listings {
		if err := d.WriteListing(c.App.Writer, listing); err != nil {
			return fmt.Errorf("failed to write listing: %w", err)
		}
	}

	return nil
}

// elfConfig merges the config file, if any, with the command-line flags.
func elfConfig(c *cli.Context) (*disasm.Config, error) {
	cfg := disasm.DefaultConfig()
	if c.IsSet(configFlag.Name) {
		var err error
		cfg, err = disasm.LoadConfig(c.Path(configFlag.Name))
		if err != nil {
			return nil, err
		}
	}

	if c.IsSet(workersFlag.Name) {
		cfg.Workers = c.Int(workersFlag.Name)
	}
	if c.IsSet(elfXLENFlag.Name) {
		cfg.XLEN = c.Int(elfXLENFlag.Name)
	}
	if c.Bool(noPseudoFlag.Name) {
		cfg.NoPseudo = true
	}
	if c.Bool(aliasesFlag.Name) {
		cfg.Aliases = true
	}
	if c.Bool(noAddressFlag.Name) {
		cfg.ShowAddress = false
	}
	if c.Bool(noRawFlag.Name) {
		cfg.ShowRaw = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid disassembler config: %w", err)
	}
	return cfg, nil
}
