package arm64

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	Op int

	// Field says where a register field takes its value from:
	// operand slot Slot, or Fixed if Slot is negative.
	Field struct {
		Slot  int8
		Fixed Reg
	}

	// Row is one opcode table entry.
	// Word layout: opcode(31-21) | rm(20-16) | flags(15-10) | rn(9-5) | rd(4-0).
	Row struct {
		Opcode uint32
		Flags  uint32

		Rd Field
		Rn Field
		Rm Field
	}
)

const (
	_ Op = iota

	ADD
	SUB
	MUL
	SMULH
	UMULH
	SDIV
	UDIV
	CMP
	BR
	BLR

	numOps
)

const (
	opcodeBits = 11
	flagsBits  = 6
	regBits    = 5

	rdShift     = 0
	rnShift     = 5
	flagsShift  = 10
	rmShift     = 16
	opcodeShift = 21
)

var Table = [numOps]Row{
	ADD:   {Opcode: 0b10001011001, Flags: 0b011000, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	SUB:   {Opcode: 0b11001011001, Flags: 0b011000, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	MUL:   {Opcode: 0b10011011000, Flags: 0b011111, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	SMULH: {Opcode: 0b10011011010, Flags: 0b011111, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	UMULH: {Opcode: 0b10011011110, Flags: 0b011111, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	SDIV:  {Opcode: 0b10011010110, Flags: 0b000011, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	UDIV:  {Opcode: 0b10011010110, Flags: 0b000010, Rd: Operand(0), Rn: Operand(1), Rm: Operand(2)},
	CMP:   {Opcode: 0b11101011001, Flags: 0b011000, Rd: Fixed(ZR), Rn: Operand(0), Rm: Operand(1)},
	BR:    {Opcode: 0b11010110000, Flags: 0b000000, Rd: Fixed(0), Rn: Operand(0), Rm: Fixed(31)},
	BLR:   {Opcode: 0b11010110001, Flags: 0b000000, Rd: Fixed(0), Rn: Operand(0), Rm: Fixed(31)},
}

var opNames = [numOps]string{
	ADD:   "ADD",
	SUB:   "SUB",
	MUL:   "MUL",
	SMULH: "SMULH",
	UMULH: "UMULH",
	SDIV:  "SDIV",
	UDIV:  "UDIV",
	CMP:   "CMP",
	BR:    "BR",
	BLR:   "BLR",
}

func Operand(i int) Field { return Field{Slot: int8(i)} }

func Fixed(r Reg) Field { return Field{Slot: -1, Fixed: r} }

// Pack composes a 32-bit word. Each argument is masked to its field width.
func Pack(opcode uint32, rm Reg, flags uint32, rn, rd Reg) uint32 {
	const (
		opMask  = 1<<opcodeBits - 1
		flMask  = 1<<flagsBits - 1
		regMask = 1<<regBits - 1
	)

	return (opcode&opMask)<<opcodeShift |
		(uint32(rm)&regMask)<<rmShift |
		(flags&flMask)<<flagsShift |
		(uint32(rn)&regMask)<<rnShift |
		(uint32(rd)&regMask)<<rdShift
}

// Encode resolves register fields from ops and packs the word.
func (r Row) Encode(ops ...string) (w uint32, err error) {
	rd, err := r.Rd.resolve(ops)
	if err != nil {
		return 0, errors.Wrap(err, "rd")
	}

	rn, err := r.Rn.resolve(ops)
	if err != nil {
		return 0, errors.Wrap(err, "rn")
	}

	rm, err := r.Rm.resolve(ops)
	if err != nil {
		return 0, errors.Wrap(err, "rm")
	}

	return Pack(r.Opcode, rm, r.Flags, rn, rd), nil
}

func (f Field) IsFixed() bool { return f.Slot < 0 }

func (f Field) resolve(ops []string) (Reg, error) {
	if f.IsFixed() {
		return f.Fixed, nil
	}

	if int(f.Slot) >= len(ops) {
		return 0, errors.Wrap(ErrInvalidOperand, "operand %d missing", f.Slot)
	}

	return RegisterOf(ops[f.Slot])
}

func (op Op) String() string {
	if op <= 0 || op >= numOps {
		return fmt.Sprintf("Op(%d)", int(op))
	}

	return opNames[op]
}
