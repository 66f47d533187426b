package assembler

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/armasm/assembler/arm64"
	"github.com/slowlang/armasm/assembler/ast"
	"github.com/slowlang/armasm/assembler/obj"
)

const golden = `
add x0, x1, x2
sub x0, x1, x2
mul x0, x1, x3
smulh x2, x4, x5
umulh x0, x1, x2
sdiv x0, x1, x2
udiv x0, x1, x2
cmp x1, x3
br x0
blr x0
.8byte 0x1122334455667788
`

const goldenHex = "2060228B 206022CB 207C039B 827C459B 207CC29B 200CC29A 2008C29A 3F6023EB 00001FD6 00003FD6 8877665544332211"

func unhex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	require.NoError(t, err)

	return b
}

func add(d, n, m string) ast.Add {
	return ast.Add{Out: [1]ast.Reg{ast.Reg(d)}, In: [2]ast.Reg{ast.Reg(n), ast.Reg(m)}}
}

func TestAssembleGolden(t *testing.T) {
	ctx := context.Background()

	code, err := Assemble(ctx, "golden", []byte(golden))
	require.NoError(t, err)

	assert.Equal(t, unhex(t, goldenHex), code)
}

func TestAssembleFile(t *testing.T) {
	ctx := context.Background()

	name := filepath.Join(t.TempDir(), "prog.s")
	err := os.WriteFile(name, []byte("add x0, x1, x2 // sum\n"), 0o644)
	require.NoError(t, err)

	code, err := AssembleFile(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, unhex(t, "2060228B"), code)

	_, err = AssembleFile(ctx, filepath.Join(t.TempDir(), "missing.s"))
	assert.Error(t, err)
}

func TestEmitEmpty(t *testing.T) {
	code, err := Emit(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestEmitOffsets(t *testing.T) {
	prog := ast.Program{
		add("x0", "x1", "x2"),
		ast.Dir8Byte{Imm: "0x1122334455667788"},
		ast.Cmp{In: [2]ast.Reg{"x3", "x4"}},
		ast.Dir8Byte{Imm: "-1"},
		ast.Br{In: [1]ast.Reg{"x30"}},
	}

	code, err := Emit(context.Background(), prog)
	require.NoError(t, err)

	off := 0

	for i, x := range prog {
		w, err := arm64.Encode(x)
		require.NoError(t, err)

		exp, err := obj.Append(nil, w)
		require.NoError(t, err)

		require.LessOrEqual(t, off+len(exp), len(code), "instr %d", i)
		assert.Equal(t, exp, code[off:off+len(exp)], "instr %d at offset %d", i, off)

		off += len(exp)
	}

	assert.Equal(t, 4+8+4+8+4, off)
	assert.Len(t, code, off)
}

func TestEmitAllOrNothing(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		prog ast.Program
		err  error
		at   string
	}{
		{"unsupported", ast.Program{
			add("x0", "x1", "x2"),
			ast.Ldur{Out: [1]ast.Reg{"x1"}, In: [1]ast.Reg{"x2"}, Imm: "8"},
			add("x0", "x1", "x2"),
		}, arm64.ErrUnsupportedInstruction, "instr 1"},
		{"bad_register", ast.Program{
			add("x0", "x1", "x2"),
			add("x0", "x1", "x2"),
			add("x0", "x31", "x2"),
		}, arm64.ErrInvalidOperand, "instr 2"},
		{"bad_immediate", ast.Program{
			ast.Dir8Byte{Imm: "0xqq"},
		}, arm64.ErrInvalidOperand, "instr 0"},
		{"nil_instr", ast.Program{
			add("x0", "x1", "x2"),
			nil,
		}, arm64.ErrUnsupportedInstruction, "instr 1"},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			code, err := Emit(ctx, tc.prog)
			assert.ErrorIs(t, err, tc.err)
			assert.Contains(t, err.Error(), tc.at)
			assert.Nil(t, code)
		})
	}
}

func TestEmitErrorHasLine(t *testing.T) {
	_, err := Assemble(context.Background(), "", []byte("add x0, x1, x2\n\nb 8\n"))
	assert.ErrorIs(t, err, arm64.ErrUnsupportedInstruction)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "b 8")
}

func TestEmitParallel(t *testing.T) {
	ctx := context.Background()

	var prog ast.Program

	for i := 0; i < 1000; i++ {
		r := "x" + strconv.Itoa(i%31)

		switch i % 4 {
		case 0:
			prog = append(prog, add(r, "x1", "xzr"))
		case 1:
			prog = append(prog, ast.Dir8Byte{Imm: ast.Imm(strconv.Itoa(i))})
		case 2:
			prog = append(prog, ast.Cmp{In: [2]ast.Reg{ast.Reg(r), "sp"}})
		case 3:
			prog = append(prog, ast.Blr{In: [1]ast.Reg{ast.Reg(r)}})
		}
	}

	seq, err := Emit(ctx, prog)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 64} {
		a := &Assembler{Workers: workers}

		par, err := a.Emit(ctx, prog)
		require.NoError(t, err, "workers %d", workers)
		assert.Equal(t, seq, par, "workers %d", workers)
	}
}

func TestEmitParallelFirstError(t *testing.T) {
	ctx := context.Background()

	prog := make(ast.Program, 500)
	for i := range prog {
		prog[i] = add("x0", "x1", "x2")
	}

	prog[400] = ast.B{Imm: "4"}
	prog[7] = add("x0", "x1", "x99")

	a := &Assembler{Workers: 8}

	for i := 0; i < 20; i++ {
		code, err := a.Emit(ctx, prog)
		require.ErrorIs(t, err, arm64.ErrInvalidOperand)
		assert.Contains(t, err.Error(), "instr 7")
		assert.Nil(t, code)
	}
}

func TestEmitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := Emit(ctx, ast.Program{add("x0", "x1", "x2")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, code)

	code, err = Emit(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestEmitLabels(t *testing.T) {
	ctx := context.Background()

	code, err := Assemble(ctx, "", []byte("start:\nloop: add x0, x1, x2\na: b:\n.8byte 0x1122334455667788\nend:"))
	require.NoError(t, err)
	assert.Equal(t, unhex(t, "2060228B 8877665544332211"), code)

	for _, workers := range []int{1, 4} {
		a := &Assembler{Workers: workers}

		code, err = a.Emit(ctx, ast.Program{
			ast.Labels{Names: []string{"start"}},
			add("x0", "x1", "x2"),
			ast.Labels{Names: []string{"mid"}},
			ast.Labels{Names: []string{"end"}},
		})
		require.NoError(t, err, "workers %d", workers)
		assert.Equal(t, unhex(t, "2060228B"), code, "workers %d", workers)
	}
}

func TestEmitLabelOperands(t *testing.T) {
	ctx := context.Background()

	_, err := Assemble(ctx, "", []byte("loop: add x0, x1, x2\nb loop\n"))
	assert.ErrorIs(t, err, arm64.ErrUnsupportedInstruction)
	assert.Contains(t, err.Error(), "line 2")

	code, err := Assemble(ctx, "", []byte(".8byte data\n"))
	assert.ErrorIs(t, err, arm64.ErrInvalidOperand)
	assert.Nil(t, code)
}

func TestEmitParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prog := make(ast.Program, 100)
	for i := range prog {
		prog[i] = add("x0", "x1", "x2")
	}

	a := &Assembler{Workers: 4}

	code, err := a.Emit(ctx, prog)
	if err == nil {
		// workers may still finish before noticing cancellation
		assert.Len(t, code, 4*len(prog))
		return
	}

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, code)
}
