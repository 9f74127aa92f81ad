package cqlvalue

import (
	"bytes"
	"encoding/hex"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/google/uuid"
	"gopkg.in/inf.v0"
)

// Value is a decoded cell. The set of implementations is closed: exactly one concrete type per supported CQL type
// plus NullValue. Values are only created by the decoder (or by tests) and are never mutated afterwards.
type Value interface {
	// DataTypeCode is the CQL type the value was decoded as.
	DataTypeCode() primitive.DataTypeCode
	// String formats the value as a CQL literal.
	String() string
	// Equal reports structural equality: same variant and same payload.
	Equal(other Value) bool

	isValue()
}

type NullValue struct {
	Type primitive.DataTypeCode
}

type BooleanValue bool

type TinyintValue int8

type SmallintValue int16

type IntValue int32

type BigintValue int64

type CounterValue int64

type VarintValue struct {
	Int *big.Int
}

// DecimalValue is Unscaled × 10^-Scale.
type DecimalValue struct {
	Unscaled *big.Int
	Scale    int32
}

type FloatValue float32

type DoubleValue float64

// DateValue holds the raw unsigned wire value, see DateRawToDays.
type DateValue uint32

// TimestampValue is the number of milliseconds since the Unix epoch.
type TimestampValue int64

type AsciiValue string

type VarcharValue string

type BlobValue []byte

// UuidValue is used for both uuid and timeuuid, Type tells them apart.
type UuidValue struct {
	Type primitive.DataTypeCode
	UUID uuid.UUID
}

func (NullValue) isValue() {}
func (BooleanValue) isValue() {}
func (TinyintValue) isValue() {}
func (SmallintValue) isValue() {}
func (IntValue) isValue() {}
func (BigintValue) isValue() {}
func (CounterValue) isValue() {}
func (VarintValue) isValue() {}
func (DecimalValue) isValue() {}
func (FloatValue) isValue() {}
func (DoubleValue) isValue() {}
func (DateValue) isValue() {}
func (TimestampValue) isValue() {}
func (AsciiValue) isValue() {}
func (VarcharValue) isValue() {}
func (BlobValue) isValue() {}
func (UuidValue) isValue() {}

func (recv NullValue) DataTypeCode() primitive.DataTypeCode { return recv.Type }
func (BooleanValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeBoolean }
func (TinyintValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeTinyint }
func (SmallintValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeSmallint }
func (IntValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeInt }
func (BigintValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeBigint }
func (CounterValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeCounter }
func (VarintValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeVarint }
func (DecimalValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeDecimal }
func (FloatValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeFloat }
func (DoubleValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeDouble }
func (DateValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeDate }
func (TimestampValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeTimestamp }
func (AsciiValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeAscii }
func (VarcharValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeVarchar }
func (BlobValue) DataTypeCode() primitive.DataTypeCode { return primitive.DataTypeCodeBlob }
func (recv UuidValue) DataTypeCode() primitive.DataTypeCode { return recv.Type }

func (NullValue) String() string { return "null" }

func (recv BooleanValue) String() string { return strconv.FormatBool(bool(recv)) }

func (recv TinyintValue) String() string { return strconv.FormatInt(int64(recv), 10) }

func (recv SmallintValue) String() string { return strconv.FormatInt(int64(recv), 10) }

func (recv IntValue) String() string { return strconv.FormatInt(int64(recv), 10) }

func (recv BigintValue) String() string { return strconv.FormatInt(int64(recv), 10) }

func (recv CounterValue) String() string { return strconv.FormatInt(int64(recv), 10) }

func (recv VarintValue) String() string { return recv.Int.String() }

func (recv DecimalValue) String() string {
	return inf.NewDecBig(recv.Unscaled, inf.Scale(recv.Scale)).String()
}

func (recv FloatValue) String() string {
	return strconv.FormatFloat(float64(recv), 'g', -1, 32)
}

func (recv DoubleValue) String() string {
	return strconv.FormatFloat(float64(recv), 'g', -1, 64)
}

// String prints dates outside of the LocalDate span too, the wire range is always printable.
func (recv DateValue) String() string {
	y, m, d := civilFromDays(DateRawToDays(uint32(recv)))
	return formatCivil(y, m, d)
}

func (recv TimestampValue) String() string {
	return time.UnixMilli(int64(recv)).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (recv AsciiValue) String() string { return quoteLiteral(string(recv)) }

func (recv VarcharValue) String() string { return quoteLiteral(string(recv)) }

func (recv BlobValue) String() string { return "0x" + hex.EncodeToString(recv) }

func (recv UuidValue) String() string { return recv.UUID.String() }

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (recv NullValue) Equal(other Value) bool {
	o, ok := other.(NullValue)
	return ok && o.Type == recv.Type
}

func (recv BooleanValue) Equal(other Value) bool {
	o, ok := other.(BooleanValue)
	return ok && o == recv
}

func (recv TinyintValue) Equal(other Value) bool {
	o, ok := other.(TinyintValue)
	return ok && o == recv
}

func (recv SmallintValue) Equal(other Value) bool {
	o, ok := other.(SmallintValue)
	return ok && o == recv
}

func (recv IntValue) Equal(other Value) bool {
	o, ok := other.(IntValue)
	return ok && o == recv
}

func (recv BigintValue) Equal(other Value) bool {
	o, ok := other.(BigintValue)
	return ok && o == recv
}

func (recv CounterValue) Equal(other Value) bool {
	o, ok := other.(CounterValue)
	return ok && o == recv
}

func (recv VarintValue) Equal(other Value) bool {
	o, ok := other.(VarintValue)
	return ok && o.Int.Cmp(recv.Int) == 0
}

// Equal compares unscaled value and scale separately: 1.0 and 1.00 are different decimals.
func (recv DecimalValue) Equal(other Value) bool {
	o, ok := other.(DecimalValue)
	return ok && o.Scale == recv.Scale && o.Unscaled.Cmp(recv.Unscaled) == 0
}

// Equal compares bit patterns so that NaN equals itself.
func (recv FloatValue) Equal(other Value) bool {
	o, ok := other.(FloatValue)
	return ok && math.Float32bits(float32(o)) == math.Float32bits(float32(recv))
}

func (recv DoubleValue) Equal(other Value) bool {
	o, ok := other.(DoubleValue)
	return ok && math.Float64bits(float64(o)) == math.Float64bits(float64(recv))
}

func (recv DateValue) Equal(other Value) bool {
	o, ok := other.(DateValue)
	return ok && o == recv
}

func (recv TimestampValue) Equal(other Value) bool {
	o, ok := other.(TimestampValue)
	return ok && o == recv
}

func (recv AsciiValue) Equal(other Value) bool {
	o, ok := other.(AsciiValue)
	return ok && o == recv
}

func (recv VarcharValue) Equal(other Value) bool {
	o, ok := other.(VarcharValue)
	return ok && o == recv
}

func (recv BlobValue) Equal(other Value) bool {
	o, ok := other.(BlobValue)
	return ok && bytes.Equal(o, recv)
}

func (recv UuidValue) Equal(other Value) bool {
	o, ok := other.(UuidValue)
	return ok && o.Type == recv.Type && o.UUID == recv.UUID
}

// IsNull reports whether v is a NullValue. A nil interface counts as null too.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}
