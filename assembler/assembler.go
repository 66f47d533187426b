package assembler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/armasm/assembler/ast"
	"github.com/slowlang/armasm/assembler/parse"
)

type (
	Assembler struct {
		// Workers > 1 encodes instructions concurrently.
		// Output is the same as with a single worker.
		Workers int
	}
)

func New() *Assembler {
	return &Assembler{Workers: 1}
}

func AssembleFile(ctx context.Context, name string) (obj []byte, err error) {
	return New().AssembleFile(ctx, name)
}

func Assemble(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	return New().Assemble(ctx, name, text)
}

func (a *Assembler) AssembleFile(ctx context.Context, name string) (obj []byte, err error) {
	prog, err := parse.ParseFile(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "parse file")
	}

	return a.emitProg(ctx, name, prog)
}

func (a *Assembler) Assemble(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	prog, err := parse.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	return a.emitProg(ctx, name, prog)
}

func (a *Assembler) emitProg(ctx context.Context, name string, prog ast.Program) (obj []byte, err error) {
	tlog.SpanFromContext(ctx).Printw("parsed", "name", name, "instrs", len(prog))

	obj, err = a.Emit(ctx, prog)
	if err != nil {
		return nil, errors.Wrap(err, "emit")
	}

	return obj, nil
}
