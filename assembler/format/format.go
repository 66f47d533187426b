package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/armasm/assembler/ast"
)

type kv struct {
	k string
	v any
}

// Bits renders each byte as 8 binary digits, most significant first,
// separated by a single space and followed by a newline.
func Bits(b, code []byte) []byte {
	for i, c := range code {
		if i != 0 {
			b = append(b, ' ')
		}

		b = hfmt.Appendf(b, "%08b", c)
	}

	return append(b, '\n')
}

// Hex renders code as upper case hex, one group per 4 bytes.
func Hex(b, code []byte) []byte {
	for i := 0; i < len(code); i += 4 {
		if i != 0 {
			b = append(b, ' ')
		}

		end := i + 4
		if end > len(code) {
			end = len(code)
		}

		b = hfmt.Appendf(b, "%X", code[i:end])
	}

	return append(b, '\n')
}

// Tree dumps prog as an indented tree, one node per instruction.
// Label definitions are listed before the instruction on their line.
func Tree(ctx context.Context, b []byte, prog ast.Program) (_ []byte, err error) {
	st := len(b)

	b = app(b, 0, "program\n")

	for i, x := range prog {
		if l, ok := x.(ast.Labels); ok {
			b = labels(b, 1, l, bare(prog, i))
			continue
		}

		b, err = formatInstr(b, x, 1)
		if err != nil {
			return nil, errors.Wrap(err, "instr %d", i)
		}
	}

	tlog.SpanFromContext(ctx).V("format_tree").Printw("tree", "instrs", len(prog), "size", len(b)-st)

	return b, nil
}

func labels(b []byte, d int, l ast.Labels, bare bool) []byte {
	b = app(b, d, "labels:")

	for _, n := range l.Names {
		b = append(b, ' ')
		b = append(b, n...)
	}

	b = append(b, '\n')

	if bare {
		b = app(b, d+1, "(no instruction on this line)\n")
	}

	return b
}

// bare reports whether the labels at prog[i] have no instruction on their line.
func bare(prog ast.Program, i int) bool {
	line := prog[i].Position().Line

	if line == 0 || i+1 == len(prog) || prog[i+1] == nil {
		return true
	}

	if _, ok := prog[i+1].(ast.Labels); ok {
		return true
	}

	return prog[i+1].Position().Line != line
}

func formatInstr(b []byte, x ast.Instr, d int) ([]byte, error) {
	switch x := x.(type) {
	case ast.Add:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Sub:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Mul:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Smulh:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Umulh:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Sdiv:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Udiv:
		return node(b, d, x.Mnemonic(), kv{"rd", x.Out[0]}, kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Cmp:
		return node(b, d, x.Mnemonic(), kv{"rn", x.In[0]}, kv{"rm", x.In[1]}), nil
	case ast.Br:
		return node(b, d, x.Mnemonic(), kv{"rn", x.In[0]}), nil
	case ast.Blr:
		return node(b, d, x.Mnemonic(), kv{"rn", x.In[0]}), nil
	case ast.Ldur:
		return node(b, d, x.Mnemonic(), kv{"rt", x.Out[0]}, kv{"rn", x.In[0]}, kv{"imm", x.Imm}), nil
	case ast.Stur:
		return node(b, d, x.Mnemonic(), kv{"rt", x.In[0]}, kv{"rn", x.In[1]}, kv{"imm", x.Imm}), nil
	case ast.LdrPC:
		return node(b, d, "ldr (pc-relative)", kv{"rt", x.Out[0]}, kv{"addr", ast.Addr(x.Imm, x.Label)}), nil
	case ast.B:
		return node(b, d, x.Mnemonic(), kv{"addr", ast.Addr(x.Imm, x.Label)}), nil
	case ast.BCond:
		return node(b, d, x.Mnemonic(), kv{"cond", x.Cond}, kv{"addr", ast.Addr(x.Imm, x.Label)}), nil
	case ast.Dir8Byte:
		return node(b, d, x.Mnemonic(), kv{"addr", ast.Addr(x.Imm, x.Label)}), nil
	default:
		return nil, errors.New("unsupported instr: %T", x)
	}
}

// node writes name at depth d and its fields one level deeper, with aligned '='.
func node(b []byte, d int, name string, fields ...kv) []byte {
	b = app(b, d, "%s\n", name)

	w := 0
	for _, f := range fields {
		if len(f.k) > w {
			w = len(f.k)
		}
	}

	for _, f := range fields {
		b = app(b, d+1, "%s", f.k)

		for i := len(f.k); i < w; i++ {
			b = append(b, ' ')
		}

		b = hfmt.Appendf(b, " = %v\n", f.v)
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	for i := 0; i < d; i++ {
		b = append(b, "  "...)
	}

	b = hfmt.Appendf(b, f, args...)

	return b
}
