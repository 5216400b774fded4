// Package main provides the rvdis command-line disassembler.
// rvdis decodes RV32I and RV64I instructions from hex words or ELF files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "logging level (trace, debug, info, warn, error)",
		Value: "warn",
	}
	pprofCPUFlag = &cli.BoolFlag{
		Name:  "pprof-cpu",
		Usage: "write a CPU profile to the profile directory",
	}
	pprofDirFlag = &cli.PathFlag{
		Name:  "pprof-dir",
		Usage: "directory the CPU profile is written to",
		Value: ".",
	}
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			<-c
			cancel()
			fmt.Fprintln(os.Stderr, "\r\nExiting...")
		}
	}()

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			_, _ = fmt.Fprintln(os.Stderr, "command interrupted")
			os.Exit(130)
		}
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	var prof interface{ Stop() }

	app := cli.NewApp()
	app.Name = "rvdis"
	app.Usage = "RISC-V RV32I/RV64I disassembler"
	app.Description = "Decode raw instruction words or the executable segments of a RISC-V ELF file"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		logLevelFlag,
		pprofCPUFlag,
		pprofDirFlag,
	}
	app.Commands = []*cli.Command{
		decodeCommand,
		elfCommand,
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool(pprofCPUFlag.Name) {
			prof = profile.Start(
				profile.NoShutdownHook,
				profile.Quiet,
				profile.ProfilePath(c.Path(pprofDirFlag.Name)),
				profile.CPUProfile,
			)
		}
		return nil
	}
	app.After = func(c *cli.Context) error {
		if prof != nil {
			prof.Stop()
		}
		return nil
	}

	return app
}

// newLogger builds the logger for a command from the global flags.
func newLogger(c *cli.Context) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.String(logLevelFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(c.App.ErrWriter)
	log.SetLevel(level)
	return log, nil
}
