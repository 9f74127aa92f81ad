package cqlvalue

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/google/uuid"
	"gopkg.in/inf.v0"
)

// Serializable lists the native types that Serialize accepts. Counter is intentionally absent, see Increment.
type Serializable interface {
	bool | int8 | int16 | int32 | int64 | float32 | float64 | string | []byte |
		*big.Int | *inf.Dec | time.Time | uuid.UUID | LocalDate
}

// Marshaler is implemented by application types that know how to encode themselves for a column type. Returning a
// nil slice produces a null cell.
type Marshaler interface {
	MarshalCql(dt datatype.DataType) ([]byte, error)
}

// Serialize encodes v as a parameter cell for a column of type dt. Nil *big.Int, *inf.Dec and []byte values become
// null cells. Pairs of native type and column type that have no lossless mapping return a *TypeMismatchError.
func Serialize[T Serializable](dt datatype.DataType, v T) (*primitive.Value, error) {
	if dt == nil {
		return nil, fmt.Errorf("cannot serialize %T without a data type", v)
	}
	code := dt.Code()
	if code == primitive.DataTypeCodeCounter {
		return nil, ErrCounterInsert
	}
	var contents []byte
	var err error
	if m, ok := any(v).(Marshaler); ok {
		contents, err = m.MarshalCql(dt)
	} else {
		contents, err = encodeNative(code, any(v))
	}
	if err != nil {
		return nil, err
	}
	return newCell(contents), nil
}

// SerializeMarshaler encodes an application type through its MarshalCql method.
func SerializeMarshaler(dt datatype.DataType, m Marshaler) (*primitive.Value, error) {
	if m == nil {
		return nil, errors.New("cannot serialize a nil marshaler")
	}
	if dt == nil {
		return nil, fmt.Errorf("cannot serialize %T without a data type", m)
	}
	if dt.Code() == primitive.DataTypeCodeCounter {
		return nil, ErrCounterInsert
	}
	contents, err := m.MarshalCql(dt)
	if err != nil {
		return nil, err
	}
	return newCell(contents), nil
}

func Null() *primitive.Value {
	return &primitive.Value{Type: primitive.ValueTypeNull}
}

// Unset leaves a bound parameter untouched on the server, protocol v4+ only.
func Unset() *primitive.Value {
	return &primitive.Value{Type: primitive.ValueTypeUnset}
}

func newCell(contents []byte) *primitive.Value {
	if contents == nil {
		return Null()
	}
	return &primitive.Value{Type: primitive.ValueTypeRegular, Contents: contents}
}

// FrameCell returns value with its length prefix, as it appears in a query's parameter list.
func FrameCell(value *primitive.Value, version primitive.ProtocolVersion) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteCell(value, buf, version); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mismatch(code primitive.DataTypeCode, v interface{}) error {
	return &TypeMismatchError{Actual: code, Native: fmt.Sprintf("%T", v)}
}

func encodeNative(code primitive.DataTypeCode, v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case bool:
		if code == primitive.DataTypeCodeBoolean {
			return EncodeBoolean(val), nil
		}
	case int8:
		return encodeInteger(code, int64(val), v)
	case int16:
		if code != primitive.DataTypeCodeTinyint {
			return encodeInteger(code, int64(val), v)
		}
	case int32:
		if code != primitive.DataTypeCodeTinyint && code != primitive.DataTypeCodeSmallint {
			return encodeInteger(code, int64(val), v)
		}
	case int64:
		switch code {
		case primitive.DataTypeCodeBigint, primitive.DataTypeCodeVarint:
			return encodeInteger(code, val, v)
		case primitive.DataTypeCodeTimestamp:
			return EncodeTimestamp(val), nil
		}
	case float32:
		switch code {
		case primitive.DataTypeCodeFloat:
			return EncodeFloat(val), nil
		case primitive.DataTypeCodeDouble:
			return EncodeDouble(float64(val)), nil
		}
	case float64:
		if code == primitive.DataTypeCodeDouble {
			return EncodeDouble(val), nil
		}
	case string:
		return encodeString(code, val)
	case []byte:
		if code == primitive.DataTypeCodeBlob {
			if val == nil {
				return nil, nil
			}
			out := make([]byte, len(val))
			copy(out, val)
			return out, nil
		}
	case *big.Int:
		if val == nil {
			return nil, nil
		}
		return encodeBigInt(code, val)
	case *inf.Dec:
		if val == nil {
			return nil, nil
		}
		if code == primitive.DataTypeCodeDecimal {
			return EncodeDecimal(val.UnscaledBig(), int32(val.Scale())), nil
		}
	case time.Time:
		return encodeTime(code, val)
	case uuid.UUID:
		return encodeUuid(code, val)
	}
	return nil, mismatch(code, v)
}

// encodeInteger widens a fixed size integer into the requested integer column type, narrowing is never done
// implicitly here (use *big.Int for range-checked narrowing).
func encodeInteger(code primitive.DataTypeCode, n int64, v interface{}) ([]byte, error) {
	switch code {
	case primitive.DataTypeCodeTinyint:
		return EncodeTinyint(int8(n)), nil
	case primitive.DataTypeCodeSmallint:
		return EncodeSmallint(int16(n)), nil
	case primitive.DataTypeCodeInt:
		return EncodeInt(int32(n)), nil
	case primitive.DataTypeCodeBigint:
		return EncodeBigint(n), nil
	case primitive.DataTypeCodeVarint:
		return EncodeVarint(big.NewInt(n)), nil
	}
	return nil, mismatch(code, v)
}

func encodeBigInt(code primitive.DataTypeCode, n *big.Int) ([]byte, error) {
	if code == primitive.DataTypeCodeVarint {
		return EncodeVarint(n), nil
	}
	var lo, hi int64
	switch code {
	case primitive.DataTypeCodeTinyint:
		lo, hi = math.MinInt8, math.MaxInt8
	case primitive.DataTypeCodeSmallint:
		lo, hi = math.MinInt16, math.MaxInt16
	case primitive.DataTypeCodeInt:
		lo, hi = math.MinInt32, math.MaxInt32
	case primitive.DataTypeCodeBigint:
		lo, hi = math.MinInt64, math.MaxInt64
	default:
		return nil, mismatch(code, n)
	}
	if !n.IsInt64() || n.Int64() < lo || n.Int64() > hi {
		return nil, &OverflowError{Type: code, Native: typeName(code), Value: n.String()}
	}
	return encodeInteger(code, n.Int64(), n)
}

func encodeString(code primitive.DataTypeCode, s string) ([]byte, error) {
	switch code {
	case primitive.DataTypeCodeVarchar, primitive.DataTypeCodeText:
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("varchar value is not valid utf-8: %w", ErrInvalidEncoding)
		}
		return append([]byte{}, s...), nil
	case primitive.DataTypeCodeAscii:
		if _, err := DecodeAscii([]byte(s)); err != nil {
			return nil, err
		}
		return append([]byte{}, s...), nil
	}
	return nil, mismatch(code, s)
}

// encodeTime uses the calendar date of t in its own location for date columns, the same rule LocalDateOf follows.
func encodeTime(code primitive.DataTypeCode, t time.Time) ([]byte, error) {
	switch code {
	case primitive.DataTypeCodeTimestamp:
		return EncodeTimestamp(t.UnixMilli()), nil
	case primitive.DataTypeCodeDate:
		y, m, d := t.Date()
		raw, err := DaysToDateRaw(daysFromCivil(int64(y), int(m), d))
		if err != nil {
			return nil, err
		}
		return EncodeDate(raw), nil
	}
	return nil, mismatch(code, t)
}

func encodeUuid(code primitive.DataTypeCode, u uuid.UUID) ([]byte, error) {
	switch code {
	case primitive.DataTypeCodeUuid:
		return EncodeUuid(u), nil
	case primitive.DataTypeCodeTimeuuid:
		if u.Version() != 1 {
			return nil, fmt.Errorf("timeuuid requires a version 1 uuid, got version %d", u.Version())
		}
		return EncodeUuid(u), nil
	}
	return nil, mismatch(code, u)
}
