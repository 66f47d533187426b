package arm64

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

type (
	// Reg is a register ordinal in [0, 31].
	Reg uint8

	// Imm is a parsed immediate literal.
	// Negative decimal literals are kept in two's complement.
	Imm uint64
)

const (
	ZR Reg = 31
	SP Reg = 31

	// MaxReg is the highest register reachable by xN mnemonic.
	MaxReg Reg = 30
)

var ErrInvalidOperand = errors.New("invalid operand")

func RegisterOf(s string) (Reg, error) {
	switch s {
	case "xzr":
		return ZR, nil
	case "sp":
		return SP, nil
	}

	if len(s) < 2 || s[0] != 'x' || !digits(s[1:], 10) {
		return 0, errors.Wrap(ErrInvalidOperand, "register %q", s)
	}

	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil || n > uint64(MaxReg) {
		return 0, errors.Wrap(ErrInvalidOperand, "register %q: out of range", s)
	}

	return Reg(n), nil
}

func ImmediateOf(s string) (Imm, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		h := s[2:]
		if !digits(h, 16) {
			return 0, errors.Wrap(ErrInvalidOperand, "immediate %q", s)
		}

		v, err := strconv.ParseUint(h, 16, 64)
		if err != nil {
			return 0, errors.Wrap(ErrInvalidOperand, "immediate %q: out of range", s)
		}

		return Imm(v), nil
	}

	if neg := strings.HasPrefix(s, "-"); neg {
		if !digits(s[1:], 10) {
			return 0, errors.Wrap(ErrInvalidOperand, "immediate %q", s)
		}

		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.Wrap(ErrInvalidOperand, "immediate %q: out of range", s)
		}

		return Imm(v), nil
	}

	if !digits(s, 10) {
		return 0, errors.Wrap(ErrInvalidOperand, "immediate %q", s)
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidOperand, "immediate %q: out of range", s)
	}

	return Imm(v), nil
}

func (r Reg) String() string {
	if r == ZR {
		return "xzr"
	}

	return "x" + strconv.Itoa(int(r))
}

// digits reports whether s is a non-empty run of base digits.
func digits(s string, base int) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= '0' && c <= '9':
		case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		default:
			return false
		}
	}

	return true
}
