package cqlvalue

import (
	"fmt"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// LocalDate is a calendar date without a time zone in the proleptic Gregorian calendar with astronomical year
// numbering (year 0 exists, year -1 is 2 BC).
//
// Its span is MinLocalDate..MaxLocalDate, roughly ±262,144 years, which is much narrower than what the database
// can store in a date column (about -5.8 to +5.8 million years). Dates in between are a representability gap:
// converting them yields no value (ConvertNullable) or a *RepresentabilityGapError (Convert), never a wrong date.
// Use time.Time as the conversion target when the full database range is needed.
//
// The zero value is 1970-01-01.
type LocalDate struct {
	days int32
}

const localDateNative = "LocalDate"

var (
	minLocalDateDays = daysFromCivil(-262144, 1, 1)
	maxLocalDateDays = daysFromCivil(262143, 12, 31)

	MinLocalDate = LocalDate{days: int32(minLocalDateDays)}
	MaxLocalDate = LocalDate{days: int32(maxLocalDateDays)}
)

// NewLocalDate validates the calendar fields and the LocalDate span.
func NewLocalDate(year int, month time.Month, day int) (LocalDate, error) {
	if month < time.January || month > time.December {
		return LocalDate{}, fmt.Errorf("invalid month %d", month)
	}
	if day < 1 || day > daysIn(int64(year), month) {
		return LocalDate{}, fmt.Errorf("invalid day %d for %v %d", day, month, year)
	}
	return LocalDateFromDays(daysFromCivil(int64(year), int(month), day))
}

// LocalDateFromDays returns a *RepresentabilityGapError when days falls outside the LocalDate span.
func LocalDateFromDays(days int64) (LocalDate, error) {
	if days < minLocalDateDays || days > maxLocalDateDays {
		return LocalDate{}, &RepresentabilityGapError{Days: days, Native: localDateNative}
	}
	return LocalDate{days: int32(days)}, nil
}

// LocalDateOf takes the calendar date of t in t's location.
func LocalDateOf(t time.Time) (LocalDate, error) {
	y, m, d := t.Date()
	return NewLocalDate(y, m, d)
}

// Days returns the signed number of days since 1970-01-01.
func (recv LocalDate) Days() int64 {
	return int64(recv.days)
}

func (recv LocalDate) Date() (year int, month time.Month, day int) {
	y, m, d := civilFromDays(int64(recv.days))
	return int(y), time.Month(m), d
}

func (recv LocalDate) Year() int {
	y, _, _ := recv.Date()
	return y
}

func (recv LocalDate) Month() time.Month {
	_, m, _ := recv.Date()
	return m
}

func (recv LocalDate) Day() int {
	_, _, d := recv.Date()
	return d
}

// Time returns midnight UTC of the date.
func (recv LocalDate) Time() time.Time {
	y, m, d := recv.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (recv LocalDate) Before(other LocalDate) bool {
	return recv.days < other.days
}

func (recv LocalDate) After(other LocalDate) bool {
	return recv.days > other.days
}

func (recv LocalDate) String() string {
	y, m, d := civilFromDays(int64(recv.days))
	return formatCivil(y, m, d)
}

// MarshalCql encodes the date for a date column.
func (recv LocalDate) MarshalCql(dt datatype.DataType) ([]byte, error) {
	if dt.Code() != primitive.DataTypeCodeDate {
		return nil, &TypeMismatchError{Actual: dt.Code(), Native: localDateNative}
	}
	raw, err := DaysToDateRaw(int64(recv.days))
	if err != nil {
		return nil, err
	}
	return EncodeDate(raw), nil
}

func (recv *LocalDate) UnmarshalCql(v Value) error {
	switch val := v.(type) {
	case DateValue:
		d, err := LocalDateFromDays(DateRawToDays(uint32(val)))
		if err != nil {
			return err
		}
		*recv = d
		return nil
	case NullValue, nil:
		return ErrUnexpectedNull
	default:
		return &TypeMismatchError{Expected: primitive.DataTypeCodeDate, Actual: v.DataTypeCode()}
	}
}

func isLeap(y int64) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysIn(y int64, m time.Month) int {
	switch m {
	case time.February:
		if isLeap(y) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// daysFromCivil and civilFromDays work on 400 year eras (146097 days) with years starting in March, so they are
// exact over the whole int64 day range the date wire format can express.
func daysFromCivil(y int64, m int, d int) int64 {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (int64(m) + 9) % 12
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func civilFromDays(days int64) (y int64, m int, d int) {
	z := days + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d = int(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		m = int(mp + 3)
	} else {
		m = int(mp - 9)
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}

func formatCivil(y int64, m int, d int) string {
	if y < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -y, m, d)
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}
