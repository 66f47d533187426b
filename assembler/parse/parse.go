package parse

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/armasm/assembler/ast"
)

type (
	State struct {
		b []byte

		Grammar Parser
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x any, i int, err error)
	}

	SyntaxError struct {
		Line int
		Col  int
		Err  error
	}

	PartialReadError struct {
		End int
	}
)

func ParseFile(ctx context.Context, name string) (ast.Program, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return Parse(ctx, data)
}

func Parse(ctx context.Context, text []byte) (ast.Program, error) {
	return New(text).Parse(ctx)
}

func New(text []byte) *State {
	return &State{
		b:       text,
		Grammar: Program{},
	}
}

func (s *State) Parse(ctx context.Context) (prog ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "size", len(s.b))
	defer tr.Finish("err", &err)

	x, i, err := s.Grammar.Parse(ctx, s.b, 0)
	if err != nil {
		return nil, s.syntaxError(i, err)
	}

	i = SpaceAll.Skip(s.b, i)

	if i != len(s.b) {
		return nil, s.syntaxError(i, PartialReadError{End: i})
	}

	prog, ok := x.(ast.Program)
	if !ok {
		return nil, errors.New("grammar returned %T, not a program", x)
	}

	return prog, nil
}

func (s *State) syntaxError(pos int, err error) SyntaxError {
	line, col := Position(s.b, pos)

	return SyntaxError{
		Line: line,
		Col:  col,
		Err:  err,
	}
}

// Position converts byte offset into 1-based line and column.
func Position(b []byte, pos int) (line, col int) {
	if pos > len(b) {
		pos = len(b)
	}

	line = 1 + bytes.Count(b[:pos], []byte{'\n'})
	col = 1 + pos - (bytes.LastIndexByte(b[:pos], '\n') + 1)

	return line, col
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %v", e.Line, e.Col, e.Err)
}

func (e SyntaxError) Unwrap() error { return e.Err }

func (e PartialReadError) Error() string {
	return "partial read"
}
