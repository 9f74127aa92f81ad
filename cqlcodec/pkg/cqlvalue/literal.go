package cqlvalue

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/google/uuid"
	"gopkg.in/inf.v0"
)

var dateLiteralPattern = regexp.MustCompile(`^([+-]?\d+)-(\d{1,2})-(\d{1,2})$`)

// parseDecimalLiteral accepts plain and exponent forms (1.5e3, 1E-2). The exponent only moves the scale, so 1.5e3
// keeps unscaled 15 with scale -2.
func parseDecimalLiteral(s string) (*inf.Dec, error) {
	mantissa, exponent := s, int64(0)
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa = s[:i]
		exp, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil {
			return nil, err
		}
		exponent = exp
	}
	d, ok := new(inf.Dec).SetString(mantissa)
	if !ok {
		return nil, fmt.Errorf("invalid decimal %q", mantissa)
	}
	scale := int64(d.Scale()) - exponent
	if scale < math.MinInt32 || scale > math.MaxInt32 {
		return nil, fmt.Errorf("decimal scale %d out of range", scale)
	}
	return d.SetScale(inf.Scale(scale)), nil
}

// ParseLiteral parses the textual form of a value of the given type, as it would be written in a CQL statement
// (without quotes), and serializes it. Counter literals produce an increment cell.
func ParseLiteral(code primitive.DataTypeCode, literal string) (*primitive.Value, error) {
	s := strings.TrimSpace(literal)
	if strings.EqualFold(s, "null") {
		return Null(), nil
	}
	dt, ok := primitiveDataTypes[code]
	if !ok {
		return nil, &UnsupportedTypeError{Type: code}
	}
	switch code {
	case primitive.DataTypeCodeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, b)
	case primitive.DataTypeCodeTinyint, primitive.DataTypeCodeSmallint, primitive.DataTypeCodeInt,
		primitive.DataTypeCodeBigint, primitive.DataTypeCodeVarint:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, literalErr(code, s, nil)
		}
		return Serialize(dt, n)
	case primitive.DataTypeCodeCounter:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Increment(Counter(n)), nil
	case primitive.DataTypeCodeDecimal:
		d, err := parseDecimalLiteral(s)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, d)
	case primitive.DataTypeCodeFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, float32(f))
	case primitive.DataTypeCodeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, f)
	case primitive.DataTypeCodeDate:
		raw, err := ParseDateLiteral(s)
		if err != nil {
			return nil, err
		}
		return newCell(EncodeDate(raw)), nil
	case primitive.DataTypeCodeTimestamp:
		if millis, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Serialize(dt, millis)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, t)
	case primitive.DataTypeCodeAscii, primitive.DataTypeCodeVarchar, primitive.DataTypeCodeText:
		return Serialize(dt, literal)
	case primitive.DataTypeCodeBlob:
		if !strings.HasPrefix(strings.ToLower(s), "0x") {
			return nil, literalErr(code, s, fmt.Errorf("blob literals start with 0x"))
		}
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, b)
	case primitive.DataTypeCodeUuid, primitive.DataTypeCodeTimeuuid:
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, literalErr(code, s, err)
		}
		return Serialize(dt, u)
	}
	return nil, &UnsupportedTypeError{Type: code}
}

// ParseDateLiteral accepts 'yyyy-mm-dd' with a signed year of any width, or the raw unsigned day number. The result
// is the raw wire value. Dates the wire format cannot hold are rejected, exactly like the database does.
func ParseDateLiteral(s string) (uint32, error) {
	if raw, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(raw), nil
	}
	days, err := parseCivilDays(s)
	if err != nil {
		return 0, err
	}
	return DaysToDateRaw(days)
}

// ParseLocalDate parses 'yyyy-mm-dd' (signed year) into a LocalDate.
func ParseLocalDate(s string) (LocalDate, error) {
	days, err := parseCivilDays(s)
	if err != nil {
		return LocalDate{}, err
	}
	return LocalDateFromDays(days)
}

func parseCivilDays(s string) (int64, error) {
	m := dateLiteralPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, literalErr(primitive.DataTypeCodeDate, s, nil)
	}
	year, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, literalErr(primitive.DataTypeCodeDate, s, err)
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, time.Month(month)) {
		return 0, literalErr(primitive.DataTypeCodeDate, s, fmt.Errorf("no such calendar day"))
	}
	return daysFromCivil(year, month, day), nil
}

func literalErr(code primitive.DataTypeCode, s string, cause error) error {
	if cause == nil {
		return fmt.Errorf("invalid %v literal %q", typeName(code), s)
	}
	return fmt.Errorf("invalid %v literal %q: %w", typeName(code), s, cause)
}

var primitiveDataTypes = map[primitive.DataTypeCode]datatype.DataType{
	primitive.DataTypeCodeAscii:     datatype.Ascii,
	primitive.DataTypeCodeBigint:    datatype.Bigint,
	primitive.DataTypeCodeBlob:      datatype.Blob,
	primitive.DataTypeCodeBoolean:   datatype.Boolean,
	primitive.DataTypeCodeCounter:   datatype.Counter,
	primitive.DataTypeCodeDecimal:   datatype.Decimal,
	primitive.DataTypeCodeDouble:    datatype.Double,
	primitive.DataTypeCodeFloat:     datatype.Float,
	primitive.DataTypeCodeInt:       datatype.Int,
	primitive.DataTypeCodeTimestamp: datatype.Timestamp,
	primitive.DataTypeCodeUuid:      datatype.Uuid,
	primitive.DataTypeCodeVarchar:   datatype.Varchar,
	primitive.DataTypeCodeText:      datatype.Varchar,
	primitive.DataTypeCodeVarint:    datatype.Varint,
	primitive.DataTypeCodeTimeuuid:  datatype.Timeuuid,
	primitive.DataTypeCodeDate:      datatype.Date,
	primitive.DataTypeCodeSmallint:  datatype.Smallint,
	primitive.DataTypeCodeTinyint:   datatype.Tinyint,
}

// DataTypeOf returns the protocol data type for a scalar type code.
func DataTypeOf(code primitive.DataTypeCode) (datatype.DataType, error) {
	dt, ok := primitiveDataTypes[code]
	if !ok {
		return nil, &UnsupportedTypeError{Type: code}
	}
	return dt, nil
}
