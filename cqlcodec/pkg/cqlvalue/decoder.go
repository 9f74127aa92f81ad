package cqlvalue

import (
	"errors"
	"fmt"
	"io"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/google/uuid"
)

type decodeFunc func(cell []byte) (Value, error)

// decoders is built once at init and only read afterwards, DecodeCell needs no locking.
var decoders = map[primitive.DataTypeCode]decodeFunc{
	primitive.DataTypeCodeBoolean: func(cell []byte) (Value, error) {
		v, err := DecodeBoolean(cell)
		return BooleanValue(v), err
	},
	primitive.DataTypeCodeTinyint: func(cell []byte) (Value, error) {
		v, err := DecodeTinyint(cell)
		return TinyintValue(v), err
	},
	primitive.DataTypeCodeSmallint: func(cell []byte) (Value, error) {
		v, err := DecodeSmallint(cell)
		return SmallintValue(v), err
	},
	primitive.DataTypeCodeInt: func(cell []byte) (Value, error) {
		v, err := DecodeInt(cell)
		return IntValue(v), err
	},
	primitive.DataTypeCodeBigint: func(cell []byte) (Value, error) {
		v, err := DecodeBigint(cell)
		return BigintValue(v), err
	},
	primitive.DataTypeCodeCounter: func(cell []byte) (Value, error) {
		v, err := DecodeCounter(cell)
		return CounterValue(v), err
	},
	primitive.DataTypeCodeVarint: func(cell []byte) (Value, error) {
		v, err := DecodeVarint(cell)
		return VarintValue{Int: v}, err
	},
	primitive.DataTypeCodeDecimal: func(cell []byte) (Value, error) {
		unscaled, scale, err := DecodeDecimal(cell)
		return DecimalValue{Unscaled: unscaled, Scale: scale}, err
	},
	primitive.DataTypeCodeFloat: func(cell []byte) (Value, error) {
		v, err := DecodeFloat(cell)
		return FloatValue(v), err
	},
	primitive.DataTypeCodeDouble: func(cell []byte) (Value, error) {
		v, err := DecodeDouble(cell)
		return DoubleValue(v), err
	},
	primitive.DataTypeCodeDate: func(cell []byte) (Value, error) {
		v, err := DecodeDate(cell)
		return DateValue(v), err
	},
	primitive.DataTypeCodeTimestamp: func(cell []byte) (Value, error) {
		v, err := DecodeTimestamp(cell)
		return TimestampValue(v), err
	},
	primitive.DataTypeCodeAscii: func(cell []byte) (Value, error) {
		v, err := DecodeAscii(cell)
		return AsciiValue(v), err
	},
	primitive.DataTypeCodeVarchar: decodeVarchar,
	primitive.DataTypeCodeText:    decodeVarchar,
	primitive.DataTypeCodeBlob: func(cell []byte) (Value, error) {
		out := make([]byte, len(cell))
		copy(out, cell)
		return BlobValue(out), nil
	},
	primitive.DataTypeCodeUuid:     uuidDecoder(primitive.DataTypeCodeUuid),
	primitive.DataTypeCodeTimeuuid: uuidDecoder(primitive.DataTypeCodeTimeuuid),
}

func decodeVarchar(cell []byte) (Value, error) {
	v, err := DecodeVarchar(cell)
	return VarcharValue(v), err
}

func uuidDecoder(code primitive.DataTypeCode) decodeFunc {
	return func(cell []byte) (Value, error) {
		if len(cell) != lengthOfUuid {
			return nil, &FormatError{Type: code, Expected: lengthOfUuid, Actual: len(cell)}
		}
		v, err := DecodeUuid(cell)
		return UuidValue{Type: code, UUID: uuid.UUID(v)}, err
	}
}

func isSupported(code primitive.DataTypeCode) bool {
	_, ok := decoders[code]
	return ok
}

// DecodeCell decodes one cell of a result row. A nil cell is a null and decodes to NullValue for every type code,
// supported or not. The function keeps no state and never retains cell.
func DecodeCell(code primitive.DataTypeCode, cell []byte) (Value, error) {
	if cell == nil {
		return NullValue{Type: code}, nil
	}
	decode, ok := decoders[code]
	if !ok {
		return nil, &UnsupportedTypeError{Type: code}
	}
	v, err := decode(cell)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Decode is DecodeCell for a column type as found in result metadata.
func Decode(dt datatype.DataType, cell []byte) (Value, error) {
	if dt == nil {
		return nil, errors.New("cannot decode cell without a data type")
	}
	return DecodeCell(dt.Code(), cell)
}

// DecodeValue decodes a framed parameter value. Unset values carry no data and cannot be decoded.
func DecodeValue(code primitive.DataTypeCode, value *primitive.Value) (Value, error) {
	if value == nil {
		return nil, errors.New("cannot decode a nil value")
	}
	switch value.Type {
	case primitive.ValueTypeNull:
		return NullValue{Type: code}, nil
	case primitive.ValueTypeUnset:
		return nil, fmt.Errorf("cannot decode unset %v value", typeName(code))
	default:
		contents := value.Contents
		if contents == nil {
			contents = []byte{}
		}
		return DecodeCell(code, contents)
	}
}

// WriteCell writes value with its [value] length prefix: -1 for null, -2 for unset.
func WriteCell(value *primitive.Value, dest io.Writer, version primitive.ProtocolVersion) error {
	if value != nil && value.Type == primitive.ValueTypeUnset && version < primitive.ProtocolVersion4 {
		return ErrUnsetNotSupported
	}
	return primitive.WriteValue(value, dest, version)
}

// ReadCell reads one length prefixed value.
func ReadCell(source io.Reader, version primitive.ProtocolVersion) (*primitive.Value, error) {
	value, err := primitive.ReadValue(source, version)
	if err != nil {
		return nil, fmt.Errorf("could not read cell: %w", err)
	}
	return value, nil
}
