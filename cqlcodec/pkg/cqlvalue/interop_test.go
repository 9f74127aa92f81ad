package cqlvalue

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/datacodec"
	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"
)

// The cells produced here must be byte-identical to what the established drivers produce, and whatever they produce
// must decode to the same value.

func gocqlType(typ gocql.Type) gocql.TypeInfo {
	return gocql.NewNativeType(byte(primitive.ProtocolVersion4), typ, "")
}

func TestInterop_GocqlVarint(t *testing.T) {
	for _, literal := range []string{"0", "1", "127", "128", "-1", "-128", "-129", "-256",
		"123456789012345678901234567890", "-123456789012345678901234567890"} {
		n := mustBig(t, literal)
		expected, err := gocql.Marshal(gocqlType(gocql.TypeVarint), n)
		require.Nil(t, err)

		v, err := Serialize(datatype.Varint, n)
		require.Nil(t, err)
		assert.Equal(t, expected, v.Contents, literal)

		decoded, err := DecodeCell(primitive.DataTypeCodeVarint, expected)
		require.Nil(t, err)
		assert.Equal(t, literal, decoded.String())
	}
}

func TestInterop_GocqlDecimal(t *testing.T) {
	for _, literal := range []string{"4.2", "0", "997", "1.999999999999999999999999999999999999999",
		"-123456789012345678901234567890.1234567890"} {
		d, ok := new(inf.Dec).SetString(literal)
		require.True(t, ok)
		expected, err := gocql.Marshal(gocqlType(gocql.TypeDecimal), d)
		require.Nil(t, err)

		v, err := Serialize(datatype.Decimal, d)
		require.Nil(t, err)
		assert.Equal(t, expected, v.Contents, literal)

		var back inf.Dec
		require.Nil(t, gocql.Unmarshal(gocqlType(gocql.TypeDecimal), v.Contents, &back))
		assert.Equal(t, literal, back.String())
	}
}

func TestInterop_GocqlFixedWidth(t *testing.T) {
	expected, err := gocql.Marshal(gocqlType(gocql.TypeBoolean), true)
	require.Nil(t, err)
	v, err := Serialize(datatype.Boolean, true)
	require.Nil(t, err)
	assert.Equal(t, expected, v.Contents)

	expected, err = gocql.Marshal(gocqlType(gocql.TypeFloat), float32(math.MaxFloat32))
	require.Nil(t, err)
	v, err = Serialize(datatype.Float, float32(math.MaxFloat32))
	require.Nil(t, err)
	assert.Equal(t, expected, v.Contents)

	expected, err = gocql.Marshal(gocqlType(gocql.TypeBigInt), int64(math.MinInt64))
	require.Nil(t, err)
	v, err = Serialize(datatype.Bigint, int64(math.MinInt64))
	require.Nil(t, err)
	assert.Equal(t, expected, v.Contents)

	expected, err = gocql.Marshal(gocqlType(gocql.TypeCounter), int64(997))
	require.Nil(t, err)
	assert.Equal(t, expected, Increment(997).Contents)
}

// datacodec is not used as a varint encoding reference: it writes -129 as 0x81, which reads back as -127.
func TestInterop_Datacodec(t *testing.T) {
	tests := []struct {
		name  string
		dt    datatype.DataType
		value interface{}
		cell  func() (*primitive.Value, error)
	}{
		{"boolean", datatype.Boolean, false, func() (*primitive.Value, error) {
			return Serialize(datatype.Boolean, false)
		}},
		{"float", datatype.Float, float32(-math.MaxFloat32), func() (*primitive.Value, error) {
			return Serialize(datatype.Float, float32(-math.MaxFloat32))
		}},
		{"counter", datatype.Counter, int64(math.MaxInt64), func() (*primitive.Value, error) {
			return Increment(math.MaxInt64), nil
		}},
		{"decimal", datatype.Decimal, datacodec.CqlDecimal{Unscaled: big.NewInt(42), Scale: 1},
			func() (*primitive.Value, error) {
				return Serialize(datatype.Decimal, inf.NewDec(42, 1))
			}},
		{"timestamp", datatype.Timestamp, time.UnixMilli(1583539200123).UTC(), func() (*primitive.Value, error) {
			return Serialize(datatype.Timestamp, int64(1583539200123))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := datacodec.NewCodec(tt.dt)
			require.Nil(t, err)
			expected, err := codec.Encode(tt.value, primitive.ProtocolVersion4)
			require.Nil(t, err)

			v, err := tt.cell()
			require.Nil(t, err)
			assert.Equal(t, expected, v.Contents)
		})
	}
}

func TestInterop_DatacodecDecodesOurCells(t *testing.T) {
	v, err := Serialize(datatype.Decimal, inf.NewDec(-1999, 3))
	require.Nil(t, err)
	var decimal datacodec.CqlDecimal
	wasNull, err := datacodec.Decimal.Decode(v.Contents, &decimal, primitive.ProtocolVersion4)
	require.Nil(t, err)
	require.False(t, wasNull)
	assert.Equal(t, int32(3), decimal.Scale)
	assert.Equal(t, int64(-1999), decimal.Unscaled.Int64())

	v, err = Serialize(datatype.Varint, mustBig(t, "-123456789012345678901234567890"))
	require.Nil(t, err)
	var varint big.Int
	wasNull, err = datacodec.Varint.Decode(v.Contents, &varint, primitive.ProtocolVersion4)
	require.Nil(t, err)
	require.False(t, wasNull)
	assert.Equal(t, "-123456789012345678901234567890", varint.String())

	v, err = Serialize(datatype.Varint, big.NewInt(-129))
	require.Nil(t, err)
	assert.Equal(t, []byte{0xff, 0x7f}, v.Contents)
	wasNull, err = datacodec.Varint.Decode(v.Contents, &varint, primitive.ProtocolVersion4)
	require.Nil(t, err)
	require.False(t, wasNull)
	assert.Equal(t, int64(-129), varint.Int64())
}
