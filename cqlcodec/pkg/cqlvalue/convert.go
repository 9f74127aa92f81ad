package cqlvalue

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/google/uuid"
	"gopkg.in/inf.v0"
)

// Unmarshaler is implemented by application types that can be built from a decoded value.
type Unmarshaler interface {
	UnmarshalCql(v Value) error
}

// Convertible lists the native types Convert can produce.
type Convertible interface {
	Serializable | Counter
}

// Convert turns a decoded value into the native type T.
//
// A null value returns ErrUnexpectedNull (use ConvertNullable for nullable columns). A value whose variant cannot
// be represented by T returns a *TypeMismatchError; a varint too large for a fixed-size integer returns an
// *OverflowError; a date outside the LocalDate span returns a *RepresentabilityGapError.
func Convert[T Convertible](v Value) (T, error) {
	var out T
	err := convertInto(any(&out), v)
	return out, err
}

// ConvertNullable is Convert for nullable columns: nulls yield nil. Dates that the database holds but LocalDate
// cannot represent also yield nil without an error.
func ConvertNullable[T Convertible](v Value) (*T, error) {
	if IsNull(v) {
		return nil, nil
	}
	out, err := Convert[T](v)
	if err != nil {
		if errors.Is(err, ErrNotRepresentable) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// ConvertInto hands v to an application type.
func ConvertInto(v Value, dest Unmarshaler) error {
	if dest == nil {
		return errors.New("cannot convert into a nil destination")
	}
	return dest.UnmarshalCql(v)
}

func convertInto(dest interface{}, v Value) error {
	if u, ok := dest.(Unmarshaler); ok {
		return u.UnmarshalCql(v)
	}
	if IsNull(v) {
		return ErrUnexpectedNull
	}
	switch d := dest.(type) {
	case *bool:
		if val, ok := v.(BooleanValue); ok {
			*d = bool(val)
			return nil
		}
	case *int8:
		if val, ok := v.(TinyintValue); ok {
			*d = int8(val)
			return nil
		}
	case *int16:
		switch val := v.(type) {
		case TinyintValue:
			*d = int16(val)
			return nil
		case SmallintValue:
			*d = int16(val)
			return nil
		}
	case *int32:
		switch val := v.(type) {
		case TinyintValue:
			*d = int32(val)
			return nil
		case SmallintValue:
			*d = int32(val)
			return nil
		case IntValue:
			*d = int32(val)
			return nil
		}
	case *int64:
		return convertInt64(d, v)
	case *float32:
		if val, ok := v.(FloatValue); ok {
			*d = float32(val)
			return nil
		}
	case *float64:
		switch val := v.(type) {
		case FloatValue:
			*d = float64(val)
			return nil
		case DoubleValue:
			*d = float64(val)
			return nil
		}
	case *string:
		switch val := v.(type) {
		case AsciiValue:
			*d = string(val)
			return nil
		case VarcharValue:
			*d = string(val)
			return nil
		}
	case *[]byte:
		if val, ok := v.(BlobValue); ok {
			*d = append([]byte{}, val...)
			return nil
		}
	case **big.Int:
		return convertBigInt(d, v)
	case **inf.Dec:
		if val, ok := v.(DecimalValue); ok {
			*d = inf.NewDecBig(new(big.Int).Set(val.Unscaled), inf.Scale(val.Scale))
			return nil
		}
	case *time.Time:
		switch val := v.(type) {
		case TimestampValue:
			*d = time.UnixMilli(int64(val)).UTC()
			return nil
		case DateValue:
			y, m, day := civilFromDays(DateRawToDays(uint32(val)))
			*d = time.Date(int(y), time.Month(m), day, 0, 0, 0, 0, time.UTC)
			return nil
		}
	case *uuid.UUID:
		if val, ok := v.(UuidValue); ok {
			*d = val.UUID
			return nil
		}
	default:
		return fmt.Errorf("unsupported conversion target %T", dest)
	}
	return &TypeMismatchError{Expected: expectedCode(dest), Actual: v.DataTypeCode()}
}

// convertInt64 accepts every integer variant; counters read as int64 too, only writing them is restricted.
func convertInt64(d *int64, v Value) error {
	switch val := v.(type) {
	case TinyintValue:
		*d = int64(val)
	case SmallintValue:
		*d = int64(val)
	case IntValue:
		*d = int64(val)
	case BigintValue:
		*d = int64(val)
	case CounterValue:
		*d = int64(val)
	case TimestampValue:
		*d = int64(val)
	case VarintValue:
		if !val.Int.IsInt64() {
			return &OverflowError{Type: primitive.DataTypeCodeVarint, Native: "int64", Value: val.Int.String()}
		}
		*d = val.Int.Int64()
	default:
		return &TypeMismatchError{Expected: primitive.DataTypeCodeBigint, Actual: v.DataTypeCode()}
	}
	return nil
}

func convertBigInt(d **big.Int, v Value) error {
	switch val := v.(type) {
	case VarintValue:
		*d = new(big.Int).Set(val.Int)
	case TinyintValue:
		*d = big.NewInt(int64(val))
	case SmallintValue:
		*d = big.NewInt(int64(val))
	case IntValue:
		*d = big.NewInt(int64(val))
	case BigintValue:
		*d = big.NewInt(int64(val))
	default:
		return &TypeMismatchError{Expected: primitive.DataTypeCodeVarint, Actual: v.DataTypeCode()}
	}
	return nil
}

func expectedCode(dest interface{}) primitive.DataTypeCode {
	switch dest.(type) {
	case *bool:
		return primitive.DataTypeCodeBoolean
	case *int8:
		return primitive.DataTypeCodeTinyint
	case *int16:
		return primitive.DataTypeCodeSmallint
	case *int32:
		return primitive.DataTypeCodeInt
	case *float32:
		return primitive.DataTypeCodeFloat
	case *float64:
		return primitive.DataTypeCodeDouble
	case *string:
		return primitive.DataTypeCodeVarchar
	case *[]byte:
		return primitive.DataTypeCodeBlob
	case **inf.Dec:
		return primitive.DataTypeCodeDecimal
	case *time.Time:
		return primitive.DataTypeCodeTimestamp
	case *uuid.UUID:
		return primitive.DataTypeCodeUuid
	}
	return primitive.DataTypeCodeCustom
}
