package parse

import (
	"bytes"
	"context"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/armasm/assembler/ast"
)

type (
	// Program is a sequence of lines, each holding at most one statement
	// and an optional comment.
	Program struct{}

	// Statement is one instruction or directive.
	Statement struct {
		Line int
	}

	// Labels is a run of "name:" label definitions.
	Labels struct {
		Line int
	}

	Reg struct{}

	// Addr is an immediate or a label reference.
	Addr struct{}

	Cond struct{}
)

var conds = map[string]struct{}{
	"eq": {}, "ne": {},
	"hs": {}, "cs": {}, "lo": {}, "cc": {},
	"mi": {}, "pl": {}, "vs": {}, "vc": {},
	"hi": {}, "ls": {}, "ge": {}, "lt": {},
	"gt": {}, "le": {}, "al": {}, "nv": {},
}

var (
	comma = Spaced(Const(","), SpaceTab)
	reg   = Spaced(Reg{}, SpaceTab)
	imm   = Spaced(Imm{}, SpaceTab)
	addr  = Spaced(Addr{}, SpaceTab)

	labelDef = AllOf{Ident{}, Spaced(Const(":"), SpaceTab)}

	regs3   = AllOf{reg, comma, reg, comma, reg}
	regs2   = AllOf{reg, comma, reg}
	regs1   = AllOf{reg}
	regImm  = AllOf{reg, comma, imm}
	regAddr = AllOf{reg, comma, addr}
	addr1   = AllOf{addr}
	branch  = AllOf{Optional{Spaced(Cond{}, SpaceTab)}, addr}

	mem = AllOf{reg, comma, Context{
		Pre:  Spaced(Const("["), SpaceTab),
		Of:   regImm,
		Post: Spaced(Const("]"), SpaceTab),
	}}
)

func (p Program) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	tr := tlog.SpanFromContext(ctx)

	prog := ast.Program{}
	line := 1 + bytes.Count(b[:st], []byte{'\n'})

	i = st

	for i < len(b) {
		i = SpaceTab.Skip(b, i)
		i = skipComment(b, i)

		if i < len(b) && b[i] == '\n' {
			i++
			line++

			continue
		}

		if i == len(b) {
			break
		}

		if x, j, err := (Labels{Line: line}).Parse(ctx, b, i); err == nil {
			tr.V("parse_line").Printw("labels", "line", line, "labels", x)

			prog = append(prog, x.(ast.Instr))

			i = SpaceTab.Skip(b, j)
			i = skipComment(b, i)

			if i == len(b) || b[i] == '\n' {
				continue
			}
		}

		x, j, err := Statement{Line: line}.Parse(ctx, b, i)
		if err != nil {
			return prog, j, err
		}

		tr.V("parse_line").Printw("statement", "line", line, "instr", x)

		prog = append(prog, x.(ast.Instr))

		i = SpaceTab.Skip(b, j)
		i = skipComment(b, i)

		if i < len(b) && b[i] != '\n' {
			return prog, i, errors.New("end of line expected")
		}
	}

	return prog, i, nil
}

func (p Statement) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	m, i, err := Mnemonic{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	mn := m.(string)

	var ops Parser

	switch {
	case mn == "add", mn == "sub", mn == "mul", mn == "smulh", mn == "umulh", mn == "sdiv", mn == "udiv":
		ops = regs3
	case mn == "cmp":
		ops = regs2
	case mn == "br", mn == "blr":
		ops = regs1
	case mn == "ldur", mn == "stur":
		ops = mem
	case mn == "ldr":
		ops = regAddr
	case mn == "b":
		ops = branch
	case strings.HasPrefix(mn, "b."):
		if !isCond(mn[2:]) {
			return nil, st, errors.New("unknown condition: %q", mn[2:])
		}

		ops = addr1
	case mn == ".8byte":
		ops = addr1
	default:
		return nil, st, errors.New("unknown mnemonic: %q", mn)
	}

	y, i, err := ops.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "%v operands", mn)
	}

	a := y.([]any)
	base := ast.Base{Pos: st, End: i, Line: p.Line}

	r := func(j int) ast.Reg { return a[j].(ast.Reg) }

	switch mn {
	case "add":
		x = ast.Add{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "sub":
		x = ast.Sub{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "mul":
		x = ast.Mul{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "smulh":
		x = ast.Smulh{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "umulh":
		x = ast.Umulh{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "sdiv":
		x = ast.Sdiv{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "udiv":
		x = ast.Udiv{Base: base, Out: [1]ast.Reg{r(0)}, In: [2]ast.Reg{r(2), r(4)}}
	case "cmp":
		x = ast.Cmp{Base: base, In: [2]ast.Reg{r(0), r(2)}}
	case "br":
		x = ast.Br{Base: base, In: [1]ast.Reg{r(0)}}
	case "blr":
		x = ast.Blr{Base: base, In: [1]ast.Reg{r(0)}}
	case "ldur":
		m := a[2].([]any)
		x = ast.Ldur{Base: base, Out: [1]ast.Reg{r(0)}, In: [1]ast.Reg{m[0].(ast.Reg)}, Imm: m[2].(ast.Imm)}
	case "stur":
		m := a[2].([]any)
		x = ast.Stur{Base: base, In: [2]ast.Reg{r(0), m[0].(ast.Reg)}, Imm: m[2].(ast.Imm)}
	case "ldr":
		im, l := address(a[2])
		x = ast.LdrPC{Base: base, Out: [1]ast.Reg{r(0)}, Imm: im, Label: l}
	case "b":
		im, l := address(a[1])

		if c, ok := a[0].(ast.Cond); ok {
			x = ast.BCond{Base: base, Cond: c, Imm: im, Label: l}
		} else {
			x = ast.B{Base: base, Imm: im, Label: l}
		}
	case ".8byte":
		im, l := address(a[0])
		x = ast.Dir8Byte{Base: base, Imm: im, Label: l}
	default: // b.cond
		im, l := address(a[0])
		x = ast.BCond{Base: base, Cond: ast.Cond(mn[2:]), Imm: im, Label: l, Dot: true}
	}

	return x, i, nil
}

func (p Labels) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	var names []string

	i = st

	for {
		y, j, err := labelDef.Parse(ctx, b, SpaceTab.Skip(b, i))
		if err != nil {
			break
		}

		names = append(names, y.([]any)[0].(string))
		i = j
	}

	if len(names) == 0 {
		return nil, st, errors.New("label expected")
	}

	return ast.Labels{Base: ast.Base{Pos: st, End: i, Line: p.Line}, Names: names}, i, nil
}

// Addr gives ast.Imm for an immediate or string for a label reference.
func (p Addr) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = Imm{}.Parse(ctx, b, st)
	if err == nil || i != st {
		return x, i, err
	}

	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, errors.New("immediate or label expected")
	}

	return x, i, nil
}

func address(x any) (ast.Imm, string) {
	if l, ok := x.(string); ok {
		return "", l
	}

	return x.(ast.Imm), ""
}

// Reg accepts any identifier. Register names are checked by the encoder.
func (p Reg) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, errors.New("register expected")
	}

	return ast.Reg(x.(string)), i, nil
}

func (p Cond) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil || !isCond(x.(string)) {
		return nil, st, errors.New("condition expected")
	}

	return ast.Cond(x.(string)), i, nil
}

func isCond(s string) bool {
	_, ok := conds[s]
	return ok
}

func skipComment(b []byte, st int) int {
	switch {
	case st < len(b) && b[st] == ';':
	case st+1 < len(b) && b[st] == '/' && b[st+1] == '/':
	default:
		return st
	}

	i := st

	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}
