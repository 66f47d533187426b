package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/armasm/assembler/ast"
)

type (
	// Imm is an immediate literal: optional '#', optional '-',
	// then decimal digits, or 0x-prefixed hex digits if there is no sign.
	// The '#' is dropped from the result, the rest is kept as written.
	Imm struct{}
)

func (p Imm) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = st

	if i < len(b) && b[i] == '#' {
		i++
	}

	vst := i

	neg := i < len(b) && b[i] == '-'
	if neg {
		i++
	}

	digit := isDigit

	if !neg && i+1 < len(b) && b[i] == '0' && (b[i+1] == 'x' || b[i+1] == 'X') {
		i += 2 // skip base prefix
		digit = isHexDigit
	}

	dst := i

	for i < len(b) && digit(b[i]) {
		i++
	}

	if i == dst {
		return nil, st, errors.New("immediate expected")
	}

	if i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		return nil, i, errors.New("unexpected char %q in immediate", b[i])
	}

	return ast.Imm(b[vst:i]), i, nil
}
