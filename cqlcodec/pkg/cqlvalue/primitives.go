package cqlvalue

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// Wire primitives. All multi-byte integers are big-endian. Every Decode* function checks the cell length first and
// returns a *FormatError when it does not match, nothing is padded or truncated.

const (
	lengthOfBoolean   = 1
	lengthOfTinyint   = 1
	lengthOfSmallint  = 2
	lengthOfInt       = 4
	lengthOfFloat     = 4
	lengthOfDate      = 4
	lengthOfBigint    = 8
	lengthOfDouble    = 8
	lengthOfTimestamp = 8
	lengthOfUuid      = 16

	// scale (4 bytes) plus at least one byte of unscaled value
	minLengthOfDecimal = 5
	minLengthOfVarint  = 1

	// DateEpochOffset is added to the signed day count to obtain the unsigned wire value, 1970-01-01 is 2^31.
	DateEpochOffset = int64(1) << 31
)

var ErrInvalidEncoding = errors.New("invalid character encoding")

var bigOne = big.NewInt(1)

func checkLength(code primitive.DataTypeCode, cell []byte, expected int) error {
	if len(cell) != expected {
		return &FormatError{Type: code, Expected: expected, Actual: len(cell)}
	}
	return nil
}

func checkMinLength(code primitive.DataTypeCode, cell []byte, expected int) error {
	if len(cell) < expected {
		return &FormatError{Type: code, Expected: expected, Actual: len(cell), AtLeast: true}
	}
	return nil
}

// EncodeBoolean always emits 0x00 or 0x01.
func EncodeBoolean(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeBoolean treats any non-zero byte as true.
func DecodeBoolean(cell []byte) (bool, error) {
	if err := checkLength(primitive.DataTypeCodeBoolean, cell, lengthOfBoolean); err != nil {
		return false, err
	}
	return cell[0] != 0, nil
}

func EncodeTinyint(v int8) []byte {
	return []byte{byte(v)}
}

func DecodeTinyint(cell []byte) (int8, error) {
	if err := checkLength(primitive.DataTypeCodeTinyint, cell, lengthOfTinyint); err != nil {
		return 0, err
	}
	return int8(cell[0]), nil
}

func EncodeSmallint(v int16) []byte {
	return binary.BigEndian.AppendUint16(make([]byte, 0, lengthOfSmallint), uint16(v))
}

func DecodeSmallint(cell []byte) (int16, error) {
	if err := checkLength(primitive.DataTypeCodeSmallint, cell, lengthOfSmallint); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(cell)), nil
}

func EncodeInt(v int32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, lengthOfInt), uint32(v))
}

func DecodeInt(cell []byte) (int32, error) {
	if err := checkLength(primitive.DataTypeCodeInt, cell, lengthOfInt); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(cell)), nil
}

func EncodeBigint(v int64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, lengthOfBigint), uint64(v))
}

func DecodeBigint(cell []byte) (int64, error) {
	return decodeInt64(primitive.DataTypeCodeBigint, cell)
}

// encodeCounter is deliberately unexported: the only way to produce a counter cell is Increment.
func encodeCounter(delta int64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, lengthOfBigint), uint64(delta))
}

func DecodeCounter(cell []byte) (int64, error) {
	return decodeInt64(primitive.DataTypeCodeCounter, cell)
}

func EncodeTimestamp(millis int64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, lengthOfTimestamp), uint64(millis))
}

func DecodeTimestamp(cell []byte) (int64, error) {
	return decodeInt64(primitive.DataTypeCodeTimestamp, cell)
}

func decodeInt64(code primitive.DataTypeCode, cell []byte) (int64, error) {
	if err := checkLength(code, cell, lengthOfBigint); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(cell)), nil
}

// EncodeFloat writes the IEEE-754 binary32 bits unchanged, so every float32 (including NaN payloads) round trips.
func EncodeFloat(v float32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, lengthOfFloat), math.Float32bits(v))
}

func DecodeFloat(cell []byte) (float32, error) {
	if err := checkLength(primitive.DataTypeCodeFloat, cell, lengthOfFloat); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(cell)), nil
}

func EncodeDouble(v float64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, lengthOfDouble), math.Float64bits(v))
}

func DecodeDouble(cell []byte) (float64, error) {
	if err := checkLength(primitive.DataTypeCodeDouble, cell, lengthOfDouble); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(cell)), nil
}

// EncodeVarint returns the minimal big-endian two's complement form of n: a leading 0x00 or 0xFF is only present
// when it is needed to carry the sign.
func EncodeVarint(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	default:
		// add 2^bits where bits is one byte wider than the magnitude
		width := uint(n.BitLen()/8+1) * 8
		b := new(big.Int).Add(n, new(big.Int).Lsh(bigOne, width)).Bytes()
		if len(b) >= 2 && b[0] == 0xff && b[1]&0x80 != 0 {
			b = b[1:]
		}
		return b
	}
}

// DecodeVarint accepts any non-empty two's complement buffer, including ones with redundant sign bytes, and is not
// limited to 64 bits.
func DecodeVarint(cell []byte) (*big.Int, error) {
	if err := checkMinLength(primitive.DataTypeCodeVarint, cell, minLengthOfVarint); err != nil {
		return nil, err
	}
	return decodeTwosComplement(cell), nil
}

func decodeTwosComplement(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(bigOne, uint(len(b))*8))
	}
	return n
}

// EncodeDecimal writes the 4 byte signed scale followed by the varint encoding of the unscaled value.
func EncodeDecimal(unscaled *big.Int, scale int32) []byte {
	digits := EncodeVarint(unscaled)
	buf := make([]byte, 0, lengthOfInt+len(digits))
	buf = binary.BigEndian.AppendUint32(buf, uint32(scale))
	return append(buf, digits...)
}

// DecodeDecimal returns the unscaled value and the scale exactly as they were written, no normalization happens.
func DecodeDecimal(cell []byte) (*big.Int, int32, error) {
	if err := checkMinLength(primitive.DataTypeCodeDecimal, cell, minLengthOfDecimal); err != nil {
		return nil, 0, err
	}
	scale := int32(binary.BigEndian.Uint32(cell[:lengthOfInt]))
	return decodeTwosComplement(cell[lengthOfInt:]), scale, nil
}

// EncodeDate writes the raw unsigned day value (days since epoch plus 2^31).
func EncodeDate(raw uint32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, lengthOfDate), raw)
}

func DecodeDate(cell []byte) (uint32, error) {
	if err := checkLength(primitive.DataTypeCodeDate, cell, lengthOfDate); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(cell), nil
}

// DateRawToDays converts the unsigned wire value into a signed number of days since 1970-01-01.
func DateRawToDays(raw uint32) int64 {
	return int64(raw) - DateEpochOffset
}

// DaysToDateRaw is the inverse of DateRawToDays. It fails when days cannot be expressed on the wire at all.
func DaysToDateRaw(days int64) (uint32, error) {
	raw := days + DateEpochOffset
	if raw < 0 || raw > math.MaxUint32 {
		return 0, &OverflowError{Type: primitive.DataTypeCodeDate, Native: "date wire value", Value: fmt.Sprint(days)}
	}
	return uint32(raw), nil
}

func EncodeUuid(v [16]byte) []byte {
	out := make([]byte, lengthOfUuid)
	copy(out, v[:])
	return out
}

func DecodeUuid(cell []byte) ([16]byte, error) {
	var out [16]byte
	if err := checkLength(primitive.DataTypeCodeUuid, cell, lengthOfUuid); err != nil {
		return out, err
	}
	copy(out[:], cell)
	return out, nil
}

func DecodeAscii(cell []byte) (string, error) {
	for i, b := range cell {
		if b > 0x7f {
			return "", fmt.Errorf("ascii cell has byte 0x%02x at offset %d: %w", b, i, ErrInvalidEncoding)
		}
	}
	return string(cell), nil
}

func DecodeVarchar(cell []byte) (string, error) {
	if !utf8.Valid(cell) {
		return "", fmt.Errorf("varchar cell is not valid utf-8: %w", ErrInvalidEncoding)
	}
	return string(cell), nil
}
