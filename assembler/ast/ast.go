package ast

import (
	"fmt"
	"strings"
)

type (
	// Instr is one of the instruction nodes declared in this package.
	// The set is closed: nodes are only ever created here or by the parser.
	Instr interface {
		Mnemonic() string
		Position() Base
		String() string

		instr()
	}

	Program []Instr

	Base struct {
		Pos  int
		End  int
		Line int // 1-based, 0 if unknown
	}

	Reg  string
	Imm  string
	Cond string

	Add struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Sub struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Mul struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Smulh struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Umulh struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Sdiv struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Udiv struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [2]Reg
	}

	Cmp struct {
		Base `tlog:",embed"`

		In [2]Reg
	}

	Br struct {
		Base `tlog:",embed"`

		In [1]Reg
	}

	Blr struct {
		Base `tlog:",embed"`

		In [1]Reg
	}

	// Ldur is ldur rt, [rn, imm].
	Ldur struct {
		Base `tlog:",embed"`

		Out [1]Reg
		In  [1]Reg
		Imm Imm
	}

	// Stur is stur rt, [rn, imm]. In[0] is rt, In[1] is rn.
	Stur struct {
		Base `tlog:",embed"`

		In  [2]Reg
		Imm Imm
	}

	// LdrPC is the pc-relative load ldr rt, addr.
	LdrPC struct {
		Base `tlog:",embed"`

		Out   [1]Reg
		Imm   Imm
		Label string
	}

	// B is b addr. Addr operands are either Imm or a Label reference.
	B struct {
		Base `tlog:",embed"`

		Imm   Imm
		Label string
	}

	// BCond is b.cond addr, or b cond addr if Dot is false.
	BCond struct {
		Base `tlog:",embed"`

		Cond  Cond
		Imm   Imm
		Label string
		Dot   bool
	}

	Dir8Byte struct {
		Base `tlog:",embed"`

		Imm   Imm
		Label string
	}

	// Labels holds the label definitions that start a line.
	// It occupies no space in the output.
	Labels struct {
		Base `tlog:",embed"`

		Names []string
	}
)

func (Add) instr()      {}
func (Sub) instr()      {}
func (Mul) instr()      {}
func (Smulh) instr()    {}
func (Umulh) instr()    {}
func (Sdiv) instr()     {}
func (Udiv) instr()     {}
func (Cmp) instr()      {}
func (Br) instr()       {}
func (Blr) instr()      {}
func (Ldur) instr()     {}
func (Stur) instr()     {}
func (LdrPC) instr()    {}
func (B) instr()        {}
func (BCond) instr()    {}
func (Dir8Byte) instr() {}
func (Labels) instr()   {}

func (Add) Mnemonic() string      { return "add" }
func (Sub) Mnemonic() string      { return "sub" }
func (Mul) Mnemonic() string      { return "mul" }
func (Smulh) Mnemonic() string    { return "smulh" }
func (Umulh) Mnemonic() string    { return "umulh" }
func (Sdiv) Mnemonic() string     { return "sdiv" }
func (Udiv) Mnemonic() string     { return "udiv" }
func (Cmp) Mnemonic() string      { return "cmp" }
func (Br) Mnemonic() string       { return "br" }
func (Blr) Mnemonic() string      { return "blr" }
func (Ldur) Mnemonic() string     { return "ldur" }
func (Stur) Mnemonic() string     { return "stur" }
func (LdrPC) Mnemonic() string    { return "ldr" }
func (B) Mnemonic() string        { return "b" }
func (BCond) Mnemonic() string    { return "b.cond" }
func (Dir8Byte) Mnemonic() string { return ".8byte" }
func (Labels) Mnemonic() string   { return "labels" }

func (x Add) String() string   { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }
func (x Sub) String() string   { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }
func (x Mul) String() string   { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }
func (x Smulh) String() string { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }
func (x Umulh) String() string { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }
func (x Sdiv) String() string  { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }
func (x Udiv) String() string  { return rrr(x.Mnemonic(), x.Out[0], x.In[0], x.In[1]) }

func (x Cmp) String() string { return fmt.Sprintf("cmp %s, %s", x.In[0], x.In[1]) }
func (x Br) String() string  { return fmt.Sprintf("br %s", x.In[0]) }
func (x Blr) String() string { return fmt.Sprintf("blr %s", x.In[0]) }

func (x Ldur) String() string {
	return fmt.Sprintf("ldur %s, [%s, %s]", x.Out[0], x.In[0], x.Imm)
}

func (x Stur) String() string {
	return fmt.Sprintf("stur %s, [%s, %s]", x.In[0], x.In[1], x.Imm)
}

func (x LdrPC) String() string { return fmt.Sprintf("ldr %s, %s", x.Out[0], Addr(x.Imm, x.Label)) }
func (x B) String() string     { return fmt.Sprintf("b %s", Addr(x.Imm, x.Label)) }

func (x BCond) String() string {
	if x.Dot {
		return fmt.Sprintf("b.%s %s", x.Cond, Addr(x.Imm, x.Label))
	}

	return fmt.Sprintf("b %s %s", x.Cond, Addr(x.Imm, x.Label))
}

func (x Dir8Byte) String() string { return fmt.Sprintf(".8byte %s", Addr(x.Imm, x.Label)) }

func (x Labels) String() string { return strings.Join(x.Names, ": ") + ":" }

// Addr is the source text of an address operand.
func Addr(imm Imm, label string) string {
	if label != "" {
		return label
	}

	return string(imm)
}

func (b Base) Position() Base { return b }

func rrr(op string, d, n, m Reg) string {
	return fmt.Sprintf("%s %s, %s, %s", op, d, n, m)
}
