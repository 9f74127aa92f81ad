package cqlvalue

import (
	"encoding/hex"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"
)

func requireCell(t *testing.T, expectedHex string, value *primitive.Value, err error) {
	require.Nil(t, err)
	require.NotNil(t, value)
	require.Equal(t, primitive.ValueTypeRegular, value.Type)
	assert.Equal(t, expectedHex, hex.EncodeToString(value.Contents))
}

func requireMismatch(t *testing.T, err error, code primitive.DataTypeCode, native string) {
	var mismatchErr *TypeMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, code, mismatchErr.Actual)
	assert.Equal(t, native, mismatchErr.Native)
}

func TestSerialize_NativeMappings(t *testing.T) {
	v, err := Serialize(datatype.Boolean, true)
	requireCell(t, "01", v, err)

	v, err = Serialize(datatype.Tinyint, int8(-1))
	requireCell(t, "ff", v, err)

	// widening
	v, err = Serialize(datatype.Bigint, int8(-1))
	requireCell(t, "ffffffffffffffff", v, err)
	v, err = Serialize(datatype.Int, int16(256))
	requireCell(t, "00000100", v, err)
	v, err = Serialize(datatype.Varint, int32(-129))
	requireCell(t, "ff7f", v, err)
	v, err = Serialize(datatype.Varint, int64(math.MaxInt64))
	requireCell(t, "7fffffffffffffff", v, err)

	v, err = Serialize(datatype.Timestamp, int64(1000))
	requireCell(t, "00000000000003e8", v, err)

	v, err = Serialize(datatype.Float, float32(3.14))
	requireCell(t, "4048f5c3", v, err)
	v, err = Serialize(datatype.Double, float32(1.5))
	requireCell(t, "3ff8000000000000", v, err)
	v, err = Serialize(datatype.Double, 1.5)
	requireCell(t, "3ff8000000000000", v, err)

	v, err = Serialize(datatype.Varchar, "café")
	requireCell(t, "636166c3a9", v, err)
	v, err = Serialize(datatype.Ascii, "hi")
	requireCell(t, "6869", v, err)

	v, err = Serialize(datatype.Blob, []byte{0xca, 0xfe})
	requireCell(t, "cafe", v, err)
	v, err = Serialize(datatype.Blob, []byte{})
	requireCell(t, "", v, err)

	v, err = Serialize(datatype.Varint, big.NewInt(128))
	requireCell(t, "0080", v, err)
	v, err = Serialize(datatype.Smallint, big.NewInt(-32768))
	requireCell(t, "8000", v, err)

	v, err = Serialize(datatype.Decimal, inf.NewDec(42, 1))
	requireCell(t, "000000012a", v, err)

	v, err = Serialize(datatype.Timestamp, time.UnixMilli(-1))
	requireCell(t, "ffffffffffffffff", v, err)
	v, err = Serialize(datatype.Date, time.Date(1970, 1, 2, 23, 59, 0, 0, time.UTC))
	requireCell(t, "80000001", v, err)

	u := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")
	v, err = Serialize(datatype.Uuid, u)
	requireCell(t, "f47ac10b58cc4372a5670e02b2c3d479", v, err)

	d, err := NewLocalDate(2020, time.March, 7)
	require.Nil(t, err)
	v, err = Serialize(datatype.Date, d)
	requireCell(t, "80004798", v, err)
}

func TestSerialize_NilBecomesNull(t *testing.T) {
	v, err := Serialize(datatype.Varint, (*big.Int)(nil))
	require.Nil(t, err)
	assert.Equal(t, primitive.ValueTypeNull, v.Type)

	v, err = Serialize(datatype.Decimal, (*inf.Dec)(nil))
	require.Nil(t, err)
	assert.Equal(t, primitive.ValueTypeNull, v.Type)

	v, err = Serialize(datatype.Blob, []byte(nil))
	require.Nil(t, err)
	assert.Equal(t, primitive.ValueTypeNull, v.Type)
}

func TestSerialize_Mismatch(t *testing.T) {
	_, err := Serialize(datatype.Int, true)
	requireMismatch(t, err, primitive.DataTypeCodeInt, "bool")

	_, err = Serialize(datatype.Tinyint, int16(1))
	requireMismatch(t, err, primitive.DataTypeCodeTinyint, "int16")

	_, err = Serialize(datatype.Int, int64(1))
	requireMismatch(t, err, primitive.DataTypeCodeInt, "int64")

	_, err = Serialize(datatype.Float, 1.5)
	requireMismatch(t, err, primitive.DataTypeCodeFloat, "float64")

	_, err = Serialize(datatype.Blob, "cafe")
	requireMismatch(t, err, primitive.DataTypeCodeBlob, "string")

	_, err = Serialize(datatype.Varchar, []byte("cafe"))
	requireMismatch(t, err, primitive.DataTypeCodeVarchar, "[]uint8")

	_, err = Serialize(datatype.Double, inf.NewDec(1, 0))
	requireMismatch(t, err, primitive.DataTypeCodeDouble, "*inf.Dec")

	_, err = Serialize(datatype.Int, time.Now())
	requireMismatch(t, err, primitive.DataTypeCodeInt, "time.Time")

	_, err = Serialize(datatype.Varchar, uuid.New())
	requireMismatch(t, err, primitive.DataTypeCodeVarchar, "uuid.UUID")

	_, err = Serialize(datatype.Timestamp, MaxLocalDate)
	requireMismatch(t, err, primitive.DataTypeCodeTimestamp, "LocalDate")

	_, err = Serialize(datatype.Decimal, big.NewInt(1))
	requireMismatch(t, err, primitive.DataTypeCodeDecimal, "*big.Int")
}

func TestSerialize_Overflow(t *testing.T) {
	_, err := Serialize(datatype.Tinyint, big.NewInt(128))
	var overflow *OverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, primitive.DataTypeCodeTinyint, overflow.Type)
	assert.Equal(t, "128", overflow.Value)

	huge, ok := new(big.Int).SetString("9223372036854775808", 10)
	require.True(t, ok)
	_, err = Serialize(datatype.Bigint, huge)
	require.ErrorAs(t, err, &overflow)

	_, err = Serialize(datatype.Date, time.Date(-6000000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorAs(t, err, &overflow)
}

func TestSerialize_InvalidText(t *testing.T) {
	_, err := Serialize(datatype.Ascii, "café")
	require.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Serialize(datatype.Varchar, string([]byte{0xff}))
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestSerialize_TimeuuidRequiresVersion1(t *testing.T) {
	_, err := Serialize(datatype.Timeuuid, uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
	require.NotNil(t, err)

	v, err := Serialize(datatype.Timeuuid, uuid.MustParse("0b5f0e02-5e8d-11ee-8c99-0242ac120002"))
	requireCell(t, "0b5f0e025e8d11ee8c990242ac120002", v, err)
}

func TestSerialize_CounterColumnRejected(t *testing.T) {
	_, err := Serialize(datatype.Counter, int64(1))
	require.ErrorIs(t, err, ErrCounterInsert)

	_, err = Serialize(datatype.Counter, big.NewInt(1))
	require.ErrorIs(t, err, ErrCounterInsert)

	_, err = SerializeMarshaler(datatype.Counter, MinLocalDate)
	require.ErrorIs(t, err, ErrCounterInsert)
}

func TestSerialize_NilDataType(t *testing.T) {
	_, err := Serialize(nil, int32(1))
	require.NotNil(t, err)
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		delta   Counter
		encoded string
	}{
		{1, "0000000000000001"},
		{997, "00000000000003e5"},
		{-1, "ffffffffffffffff"},
		{math.MaxInt64, "7fffffffffffffff"},
	}
	for _, tt := range tests {
		v := Increment(tt.delta)
		requireCell(t, tt.encoded, v, nil)

		decoded, err := DecodeValue(primitive.DataTypeCodeCounter, v)
		require.Nil(t, err)
		assert.Equal(t, CounterValue(tt.delta), decoded)
	}
}

type celsius float64

func (recv celsius) MarshalCql(dt datatype.DataType) ([]byte, error) {
	if dt.Code() != primitive.DataTypeCodeDouble {
		return nil, &TypeMismatchError{Actual: dt.Code(), Native: "celsius"}
	}
	if math.IsNaN(float64(recv)) {
		return nil, nil
	}
	return EncodeDouble(float64(recv)), nil
}

func (recv *celsius) UnmarshalCql(v Value) error {
	d, ok := v.(DoubleValue)
	if !ok {
		return &TypeMismatchError{Expected: primitive.DataTypeCodeDouble, Actual: v.DataTypeCode()}
	}
	*recv = celsius(d)
	return nil
}

func TestSerializeMarshaler(t *testing.T) {
	v, err := SerializeMarshaler(datatype.Double, celsius(1.5))
	requireCell(t, "3ff8000000000000", v, err)

	v, err = SerializeMarshaler(datatype.Double, celsius(math.NaN()))
	require.Nil(t, err)
	assert.Equal(t, primitive.ValueTypeNull, v.Type)

	_, err = SerializeMarshaler(datatype.Int, celsius(1))
	requireMismatch(t, err, primitive.DataTypeCodeInt, "celsius")

	v, err = SerializeMarshaler(datatype.Double, nil)
	require.NotNil(t, err)
	assert.Nil(t, v)

	var c celsius
	require.Nil(t, ConvertInto(DoubleValue(21.5), &c))
	assert.Equal(t, celsius(21.5), c)
}

func TestFrameCell(t *testing.T) {
	v, err := Serialize(datatype.Int, int32(1))
	require.Nil(t, err)
	framed, err := FrameCell(v, primitive.ProtocolVersion4)
	require.Nil(t, err)
	assert.Equal(t, "0000000400000001", hex.EncodeToString(framed))

	framed, err = FrameCell(Null(), primitive.ProtocolVersion4)
	require.Nil(t, err)
	assert.Equal(t, "ffffffff", hex.EncodeToString(framed))

	_, err = FrameCell(Unset(), primitive.ProtocolVersion3)
	require.ErrorIs(t, err, ErrUnsetNotSupported)
}
