// Package shortvec implements the compact-u16 length prefix used in the
// Solana wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedLen is the largest number of bytes a length can occupy.
const MaxEncodedLen = 3

var (
	ErrTooLarge     = errors.New("shortvec: length exceeds u16")
	ErrNonCanonical = errors.New("shortvec: non-canonical encoding")
)

// EncodeLen writes n as a compact-u16 and returns the number of bytes written.
func EncodeLen(w io.ByteWriter, n int) (int, error) {
	if n < 0 || n > math.MaxUint16 {
		return 0, errors.Wrapf(ErrTooLarge, "len %d", n)
	}

	written := 0
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		if n == 0 {
			return written, nil
		}
	}
}

// DecodeLen reads a compact-u16 from r. Encodings with redundant trailing
// zero bytes, more than MaxEncodedLen bytes, or a value above u16 are
// rejected.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < MaxEncodedLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}

		if i > 0 && b == 0 {
			return 0, ErrNonCanonical
		}

		val |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrTooLarge
			}
			return val, nil
		}
	}

	return 0, ErrNonCanonical
}
