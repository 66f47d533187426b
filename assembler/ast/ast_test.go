package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	for _, tc := range []struct {
		x Instr
		s string
	}{
		{Udiv{Out: [1]Reg{"x0"}, In: [2]Reg{"x1", "sp"}}, "udiv x0, x1, sp"},
		{Cmp{In: [2]Reg{"x1", "x3"}}, "cmp x1, x3"},
		{Br{In: [1]Reg{"x30"}}, "br x30"},
		{Ldur{Out: [1]Reg{"x1"}, In: [1]Reg{"x2"}, Imm: "-8"}, "ldur x1, [x2, -8]"},
		{Stur{In: [2]Reg{"x1", "x2"}, Imm: "8"}, "stur x1, [x2, 8]"},
		{LdrPC{Out: [1]Reg{"x5"}, Imm: "0x10"}, "ldr x5, 0x10"},
		{BCond{Cond: "eq", Imm: "8", Dot: true}, "b.eq 8"},
		{BCond{Cond: "eq", Imm: "8"}, "b eq 8"},
		{Dir8Byte{Imm: "1"}, ".8byte 1"},
		{Dir8Byte{Label: "data"}, ".8byte data"},
		{B{Label: "loop"}, "b loop"},
		{BCond{Cond: "ne", Label: "done", Dot: true}, "b.ne done"},
		{LdrPC{Out: [1]Reg{"x1"}, Label: "k"}, "ldr x1, k"},
		{Labels{Names: []string{"start"}}, "start:"},
		{Labels{Names: []string{"a", "b"}}, "a: b:"},
	} {
		assert.Equal(t, tc.s, tc.x.String())
	}
}

func TestPosition(t *testing.T) {
	var x Instr = B{Base: Base{Pos: 3, End: 6, Line: 2}, Imm: "4"}

	assert.Equal(t, Base{Pos: 3, End: 6, Line: 2}, x.Position())
	assert.Equal(t, "b", x.Mnemonic())
}
