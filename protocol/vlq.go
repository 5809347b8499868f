package protocol

import "errors"

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
)

// vlqMaxLen is the longest encoding of a 32-bit value
const vlqMaxLen = 5

// EncodeVLQInt writes v in Klipper's VLQ format: 7-bit groups, most
// significant first, high bit set on every group but the last. Bit 6 of the
// first group carries the sign.
func EncodeVLQInt(output OutputBuffer, v int32) {
	var buf [vlqMaxLen]byte
	n := 0
	for shift := 28; shift > 0; shift -= 7 {
		// Values in [-limit, 3*limit) fit the groups below shift
		limit := int32(1) << (shift - 2)
		if v < -limit || v >= 3*limit {
			buf[n] = byte(v>>shift)&0x7F | 0x80
			n++
		}
	}
	buf[n] = byte(v) & 0x7F
	output.Output(buf[:n+1])
}

// EncodeVLQUint writes v as its two's complement signed encoding
func EncodeVLQUint(output OutputBuffer, v uint32) {
	EncodeVLQInt(output, int32(v))
}

// DecodeVLQInt reads one value and advances *data past it.
func DecodeVLQInt(data *[]byte) (int32, error) {
	in := *data
	var v uint32
	for i := 0; ; i++ {
		if i == len(in) {
			return 0, ErrBufferTooSmall
		}
		if i == vlqMaxLen {
			return 0, ErrInvalidVLQ
		}

		c := uint32(in[i])
		switch {
		case i > 0:
			v = v<<7 | c&0x7F
		case c&0x60 == 0x60:
			v = c&0x7F | ^uint32(0x1F)
		default:
			v = c & 0x7F
		}

		if c&0x80 == 0 {
			*data = in[i+1:]
			return int32(v), nil
		}
	}
}

// DecodeVLQUint reads one value as unsigned
func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}

// EncodeVLQString writes s with a VLQ length prefix
func EncodeVLQString(output OutputBuffer, s string) {
	EncodeVLQUint(output, uint32(len(s)))
	output.Output([]byte(s))
}

// DecodeVLQString reads a length-prefixed string
func DecodeVLQString(data *[]byte) (string, error) {
	n, err := DecodeVLQUint(data)
	if err != nil {
		return "", err
	}
	rest := *data
	if uint32(len(rest)) < n {
		return "", ErrBufferTooSmall
	}
	*data = rest[n:]
	return string(rest[:n]), nil
}
