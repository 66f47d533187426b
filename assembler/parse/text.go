package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"
)

type (
	Const []byte

	// Ident is a run of ASCII letters, digits and '_' starting with a letter or '_'.
	Ident struct{}

	// Mnemonic is like Ident but also allows dots, as in .8byte and b.eq.
	Mnemonic struct{}
)

func (p Const) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return string(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Ident) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if st == len(b) || !isLetter(b[st]) {
		return nil, st, errors.New("identifier expected")
	}

	i = st + 1

	for i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		i++
	}

	return string(b[st:i]), i, nil
}

func (p Mnemonic) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	if st == len(b) || !isLetter(b[st]) && b[st] != '.' {
		return nil, st, errors.New("mnemonic expected")
	}

	i = st + 1

	for i < len(b) && (isLetter(b[i]) || isDigit(b[i]) || b[i] == '.') {
		i++
	}

	return string(b[st:i]), i, nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
