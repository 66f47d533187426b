package arm64

import (
	"tlog.app/go/errors"

	"github.com/slowlang/armasm/assembler/ast"
)

type (
	// Word is an encoded instruction or directive value.
	Word struct {
		Bits uint64
		Size int // bytes, 0 for nodes taking no space
	}
)

const (
	InstrSize = 4
	DataSize  = 8
)

var ErrUnsupportedInstruction = errors.New("unsupported instruction")

// Encode encodes a single instruction node.
// It's pure: equal nodes always give equal words.
// Label definitions give an empty Word.
func Encode(x ast.Instr) (w Word, err error) {
	switch x := x.(type) {
	case ast.Add:
		return encode(ADD, x.Out[0], x.In[0], x.In[1])
	case ast.Sub:
		return encode(SUB, x.Out[0], x.In[0], x.In[1])
	case ast.Mul:
		return encode(MUL, x.Out[0], x.In[0], x.In[1])
	case ast.Smulh:
		return encode(SMULH, x.Out[0], x.In[0], x.In[1])
	case ast.Umulh:
		return encode(UMULH, x.Out[0], x.In[0], x.In[1])
	case ast.Sdiv:
		return encode(SDIV, x.Out[0], x.In[0], x.In[1])
	case ast.Udiv:
		return encode(UDIV, x.Out[0], x.In[0], x.In[1])
	case ast.Cmp:
		return encode(CMP, x.In[0], x.In[1])
	case ast.Br:
		return encode(BR, x.In[0])
	case ast.Blr:
		return encode(BLR, x.In[0])
	case ast.Labels:
		return Word{}, nil
	case ast.Dir8Byte:
		if x.Label != "" {
			return Word{}, errors.Wrap(ErrInvalidOperand, "label %q: labels are not resolved", x.Label)
		}

		v, err := ImmediateOf(string(x.Imm))
		if err != nil {
			return Word{}, errors.Wrap(err, "imm")
		}

		return Word{Bits: uint64(v), Size: DataSize}, nil
	case ast.Ldur, ast.Stur, ast.LdrPC, ast.B, ast.BCond:
		// Immediate-field and branch-target forms are parsed but never encoded.
		return Word{}, errors.Wrap(ErrUnsupportedInstruction, "%v", x.Mnemonic())
	default:
		return Word{}, errors.Wrap(ErrUnsupportedInstruction, "%T", x)
	}
}

func encode(op Op, ops ...ast.Reg) (Word, error) {
	s := make([]string, len(ops))

	for i, r := range ops {
		s[i] = string(r)
	}

	w, err := Table[op].Encode(s...)
	if err != nil {
		return Word{}, err
	}

	return Word{Bits: uint64(w), Size: InstrSize}, nil
}
