package arm64

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOf(t *testing.T) {
	for i := 0; i <= 30; i++ {
		r, err := RegisterOf("x" + strconv.Itoa(i))
		require.NoError(t, err)
		assert.Equal(t, Reg(i), r)
	}

	zr, err := RegisterOf("xzr")
	require.NoError(t, err)

	sp, err := RegisterOf("sp")
	require.NoError(t, err)

	assert.Equal(t, Reg(31), zr)
	assert.Equal(t, zr, sp)
}

func TestRegisterOfInvalid(t *testing.T) {
	for _, s := range []string{
		"", "x", "x31", "x32", "x100", "x-1", "x+1", "x1a",
		"X0", "w0", "xzr1", "SP", "r0", " x0", "x0 ",
	} {
		_, err := RegisterOf(s)
		assert.ErrorIs(t, err, ErrInvalidOperand, "register %q", s)
	}
}

func TestImmediateOf(t *testing.T) {
	for _, tc := range []struct {
		s string
		v Imm
	}{
		{"0", 0},
		{"42", 42},
		{"0x10", 16},
		{"0X1f", 31},
		{"0xFF", 255},
		{"0x1122334455667788", 0x1122334455667788},
		{"0xffffffffffffffff", 0xffffffffffffffff},
		{"18446744073709551615", 0xffffffffffffffff},
		{"-1", 0xffffffffffffffff},
		{"-8", 0xfffffffffffffff8},
		{"007", 7},
	} {
		v, err := ImmediateOf(tc.s)
		if assert.NoError(t, err, "immediate %q", tc.s) {
			assert.Equal(t, tc.v, v, "immediate %q", tc.s)
		}
	}
}

func TestImmediateOfInvalid(t *testing.T) {
	for _, s := range []string{
		"", "-", "+1", "0x", "0xg", "abc", "1.5", "1_000", "#8",
		"18446744073709551616", "0x10000000000000000", "-0x1", "-9223372036854775809",
	} {
		_, err := ImmediateOf(s)
		assert.ErrorIs(t, err, ErrInvalidOperand, "immediate %q", s)
	}
}

func TestRegString(t *testing.T) {
	assert.Equal(t, "x0", Reg(0).String())
	assert.Equal(t, "x30", Reg(30).String())
	assert.Equal(t, "xzr", ZR.String())
}
