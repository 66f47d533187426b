package main

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/ext/tlflag"

	"github.com/slowlang/armasm/assembler"
	"github.com/slowlang/armasm/assembler/ast"
	"github.com/slowlang/armasm/assembler/format"
	"github.com/slowlang/armasm/assembler/parse"
)

func main() {
	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "print parsed instructions as a tree",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "armasm",
		Description: "armasm assembles a small arm64 subset into machine code",
		Before:      before,
		Action:      asmAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("format", "bits", "output format: bits, hex or raw"),
			cli.NewFlag("output,o", "", "write raw machine code to the file instead of stdout"),
			cli.NewFlag("jobs,j", 1, "number of encoding workers"),
			cli.NewFlag("log", "stderr", "log output file (or stderr)"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			dumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	w, err := tlflag.OpenWriter(c.String("log"))
	if err != nil {
		return errors.Wrap(err, "open log file")
	}

	tlog.DefaultLogger = tlog.New(w)

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func asmAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	out := c.String("output")
	f := c.String("format")

	switch f {
	case "bits", "hex":
	case "raw":
		if out == "" && term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write raw machine code to a terminal, use --output")
		}
	default:
		return errors.New("unknown format: %q", f)
	}

	name, err := inputName(c)
	if err != nil {
		return err
	}

	a := assembler.New()
	a.Workers = c.Int("jobs")

	var obj []byte

	if name == "-" {
		var text []byte

		text, err = readStdin()
		if err == nil {
			obj, err = a.Assemble(ctx, name, text)
		}
	} else {
		obj, err = a.AssembleFile(ctx, name)
	}
	if err != nil {
		return errors.Wrap(err, "assemble %v", name)
	}

	if out != "" {
		err = os.WriteFile(out, obj, 0o644)
		if err != nil {
			return errors.Wrap(err, "write output")
		}

		tlog.Printw("wrote machine code", "size", len(obj), "file", out)

		return nil
	}

	var b []byte

	switch f {
	case "bits":
		b = format.Bits(nil, obj)
	case "hex":
		b = format.Hex(nil, obj)
	case "raw":
		b = obj
	}

	_, err = os.Stdout.Write(b)
	if err != nil {
		return errors.Wrap(err, "write stdout")
	}

	return nil
}

func dumpAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	name, err := inputName(c)
	if err != nil {
		return err
	}

	var prog ast.Program

	if name == "-" {
		var text []byte

		text, err = readStdin()
		if err == nil {
			prog, err = parse.Parse(ctx, text)
		}
	} else {
		prog, err = parse.ParseFile(ctx, name)
	}
	if err != nil {
		return errors.Wrap(err, "parse %v", name)
	}

	b, err := format.Tree(ctx, nil, prog)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	_, err = os.Stdout.Write(b)
	if err != nil {
		return errors.Wrap(err, "write stdout")
	}

	return nil
}

// inputName returns the single optional file argument, or "-" for stdin.
func inputName(c *cli.Command) (string, error) {
	switch len(c.Args) {
	case 0:
		return "-", nil
	case 1:
		return c.Args[0], nil
	default:
		return "", errors.New("at most one input file expected, got %d", len(c.Args))
	}
}

func readStdin() ([]byte, error) {
	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.Wrap(err, "read stdin")
	}

	tlog.Printw("read stdin", "size", len(text))

	return text, nil
}
