package cqlvalue

import (
	"errors"
	"fmt"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

var (
	// ErrUnexpectedNull is returned when a null cell is converted into a non-nullable native type.
	ErrUnexpectedNull = errors.New("unexpected null value")

	// ErrCounterInsert is returned when something other than an increment targets a counter column.
	ErrCounterInsert = errors.New("counter columns can only be updated with an increment, use Increment")

	// ErrNotRepresentable matches every RepresentabilityGapError.
	ErrNotRepresentable = errors.New("value not representable by native type")

	ErrUnsetNotSupported = errors.New("unset values require protocol version 4 or higher")
)

// FormatError means a cell's length is structurally invalid for its declared type.
type FormatError struct {
	Type     primitive.DataTypeCode
	Expected int
	Actual   int
	AtLeast  bool
}

func (recv *FormatError) Error() string {
	if recv.AtLeast {
		return fmt.Sprintf("invalid %v cell: expected at least %d bytes, got %d",
			typeName(recv.Type), recv.Expected, recv.Actual)
	}
	return fmt.Sprintf("invalid %v cell: expected %d bytes, got %d",
		typeName(recv.Type), recv.Expected, recv.Actual)
}

type UnsupportedTypeError struct {
	Type primitive.DataTypeCode
}

func (recv *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no codec registered for CQL type %v", typeName(recv.Type))
}

// TypeMismatchError is returned when a value of one CQL type is used where another one was expected.
// Native is set when the mismatch involves a native Go type rather than a second CQL type.
type TypeMismatchError struct {
	Expected primitive.DataTypeCode
	Actual   primitive.DataTypeCode
	Native   string
}

func (recv *TypeMismatchError) Error() string {
	if recv.Native != "" {
		return fmt.Sprintf("type mismatch: %v cannot be used with CQL type %v",
			recv.Native, typeName(recv.Actual))
	}
	return fmt.Sprintf("type mismatch: expected %v, got %v", typeName(recv.Expected), typeName(recv.Actual))
}

type OverflowError struct {
	Type   primitive.DataTypeCode
	Native string
	Value  string
}

func (recv *OverflowError) Error() string {
	return fmt.Sprintf("%v value %v overflows %v", typeName(recv.Type), recv.Value, recv.Native)
}

// RepresentabilityGapError reports a date that the database accepts but the native date type cannot hold.
type RepresentabilityGapError struct {
	Days   int64
	Native string
}

func (recv *RepresentabilityGapError) Error() string {
	return fmt.Sprintf("date %d days from epoch is outside the range of %v", recv.Days, recv.Native)
}

func (recv *RepresentabilityGapError) Is(target error) bool {
	return target == ErrNotRepresentable
}

func typeName(code primitive.DataTypeCode) string {
	if name, ok := typeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", uint16(code))
}

var typeNames = map[primitive.DataTypeCode]string{
	primitive.DataTypeCodeCustom:    "custom",
	primitive.DataTypeCodeAscii:     "ascii",
	primitive.DataTypeCodeBigint:    "bigint",
	primitive.DataTypeCodeBlob:      "blob",
	primitive.DataTypeCodeBoolean:   "boolean",
	primitive.DataTypeCodeCounter:   "counter",
	primitive.DataTypeCodeDecimal:   "decimal",
	primitive.DataTypeCodeDouble:    "double",
	primitive.DataTypeCodeFloat:     "float",
	primitive.DataTypeCodeInt:       "int",
	primitive.DataTypeCodeText:      "text",
	primitive.DataTypeCodeTimestamp: "timestamp",
	primitive.DataTypeCodeUuid:      "uuid",
	primitive.DataTypeCodeVarchar:   "varchar",
	primitive.DataTypeCodeVarint:    "varint",
	primitive.DataTypeCodeTimeuuid:  "timeuuid",
	primitive.DataTypeCodeInet:      "inet",
	primitive.DataTypeCodeDate:      "date",
	primitive.DataTypeCodeTime:      "time",
	primitive.DataTypeCodeSmallint:  "smallint",
	primitive.DataTypeCodeTinyint:   "tinyint",
	primitive.DataTypeCodeDuration:  "duration",
	primitive.DataTypeCodeList:      "list",
	primitive.DataTypeCodeMap:       "map",
	primitive.DataTypeCodeSet:       "set",
	primitive.DataTypeCodeUdt:       "udt",
	primitive.DataTypeCodeTuple:     "tuple",
}

// TypeName returns the CQL name of a type code ("varint", "date", ...).
func TypeName(code primitive.DataTypeCode) string {
	return typeName(code)
}

// ParseTypeName is the inverse of TypeName for the scalar types this package supports. "text" is accepted as an
// alias of varchar.
func ParseTypeName(name string) (primitive.DataTypeCode, error) {
	if name == "text" {
		return primitive.DataTypeCodeVarchar, nil
	}
	for code, n := range typeNames {
		if n == name && isSupported(code) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown or unsupported CQL type %q", name)
}
