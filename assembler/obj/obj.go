package obj

import (
	"encoding/binary"

	"tlog.app/go/errors"

	"github.com/slowlang/armasm/assembler/arm64"
)

var ErrBadWordSize = errors.New("bad word size")

// Width returns number of bytes w occupies in the output.
func Width(w arm64.Word) (int, error) {
	switch w.Size {
	case arm64.InstrSize, arm64.DataSize:
		return w.Size, nil
	default:
		return 0, errors.Wrap(ErrBadWordSize, "%d", w.Size)
	}
}

// Append appends w to b in little-endian order.
// 8-byte values are written as two 4-byte halves, low half first,
// which is the same as a little-endian 64-bit write.
// Nothing is appended on error.
func Append(b []byte, w arm64.Word) ([]byte, error) {
	switch w.Size {
	case arm64.InstrSize:
		return binary.LittleEndian.AppendUint32(b, uint32(w.Bits)), nil
	case arm64.DataSize:
		b = binary.LittleEndian.AppendUint32(b, uint32(w.Bits))
		b = binary.LittleEndian.AppendUint32(b, uint32(w.Bits>>32))

		return b, nil
	default:
		return b, errors.Wrap(ErrBadWordSize, "%d", w.Size)
	}
}

// Size is a total output size of words.
func Size(ws []arm64.Word) (n int, err error) {
	for i, w := range ws {
		s, err := Width(w)
		if err != nil {
			return 0, errors.Wrap(err, "word %d", i)
		}

		n += s
	}

	return n, nil
}
