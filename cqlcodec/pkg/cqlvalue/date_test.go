package cqlvalue

import (
	"testing"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/datatype"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCivilDays(t *testing.T) {
	tests := []struct {
		year  int64
		month int
		day   int
		days  int64
	}{
		{1970, 1, 1, 0},
		{1969, 12, 31, -1},
		{2020, 3, 7, 18328},
		{2000, 2, 29, 11016},
		{0, 1, 1, -719528},
		{-1, 12, 31, -719529},
		{1337, 4, 5, -231104},
		{-262144, 1, 1, -96465658},
		{262143, 12, 31, 95026601},
		{-262145, 12, 31, -96465659},
		{262144, 1, 1, 95026602},
		{-5877641, 6, 23, -2147483648},
		{5881580, 7, 11, 2147483647},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.days, daysFromCivil(tt.year, tt.month, tt.day), "%d-%d-%d", tt.year, tt.month, tt.day)
		y, m, d := civilFromDays(tt.days)
		assert.Equal(t, tt.year, y)
		assert.Equal(t, tt.month, m)
		assert.Equal(t, tt.day, d)
	}
}

func TestCivilDays_AgreesWithTime(t *testing.T) {
	start := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365*900; i += 13 {
		tm := start.AddDate(0, 0, i)
		days := tm.Unix() / 86400
		y, m, d := tm.Date()
		require.Equal(t, days, daysFromCivil(int64(y), int(m), d), tm)
	}
}

func TestNewLocalDate(t *testing.T) {
	d, err := NewLocalDate(2020, time.February, 29)
	require.Nil(t, err)
	assert.Equal(t, "2020-02-29", d.String())
	assert.Equal(t, 2020, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.Day())

	_, err = NewLocalDate(2019, time.February, 29)
	require.NotNil(t, err)
	_, err = NewLocalDate(2019, 13, 1)
	require.NotNil(t, err)
	_, err = NewLocalDate(2019, time.April, 31)
	require.NotNil(t, err)

	_, err = NewLocalDate(262144, time.January, 1)
	require.ErrorIs(t, err, ErrNotRepresentable)
}

func TestLocalDate_Span(t *testing.T) {
	assert.Equal(t, "-262144-01-01", MinLocalDate.String())
	assert.Equal(t, "262143-12-31", MaxLocalDate.String())
	assert.True(t, MinLocalDate.Before(MaxLocalDate))
	assert.True(t, MaxLocalDate.After(LocalDate{}))

	_, err := LocalDateFromDays(MinLocalDate.Days() - 1)
	var gapErr *RepresentabilityGapError
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, "LocalDate", gapErr.Native)

	_, err = LocalDateFromDays(MaxLocalDate.Days() + 1)
	require.ErrorAs(t, err, &gapErr)
}

func TestLocalDate_ZeroValueIsEpoch(t *testing.T) {
	var d LocalDate
	assert.Equal(t, int64(0), d.Days())
	assert.Equal(t, "1970-01-01", d.String())
	assert.True(t, d.Time().Equal(time.Unix(0, 0)))
}

func TestLocalDateOf_UsesLocation(t *testing.T) {
	tz := time.FixedZone("UTC+10", 10*60*60)
	tm := time.Date(2020, 3, 7, 5, 0, 0, 0, tz)

	d, err := LocalDateOf(tm)
	require.Nil(t, err)
	assert.Equal(t, "2020-03-07", d.String())

	d, err = LocalDateOf(tm.UTC())
	require.Nil(t, err)
	assert.Equal(t, "2020-03-06", d.String())
}

func TestLocalDate_NegativeYears(t *testing.T) {
	d, err := NewLocalDate(-1, time.December, 31)
	require.Nil(t, err)
	assert.Equal(t, "-0001-12-31", d.String())
	assert.Equal(t, int64(-719529), d.Days())

	// year -4 is a leap year in the proleptic calendar
	_, err = NewLocalDate(-4, time.February, 29)
	require.Nil(t, err)
	_, err = NewLocalDate(-100, time.February, 29)
	require.NotNil(t, err)
}

func TestLocalDate_MarshalCql(t *testing.T) {
	d, err := NewLocalDate(2020, time.March, 7)
	require.Nil(t, err)
	cell, err := d.MarshalCql(datatype.Date)
	require.Nil(t, err)
	assert.Equal(t, []byte{0x80, 0x00, 0x47, 0x98}, cell)

	_, err = d.MarshalCql(datatype.Timestamp)
	var mismatchErr *TypeMismatchError
	require.ErrorAs(t, err, &mismatchErr)

	var back LocalDate
	require.Nil(t, back.UnmarshalCql(DateValue(0x80004798)))
	assert.Equal(t, d, back)

	require.ErrorIs(t, back.UnmarshalCql(NullValue{Type: primitive.DataTypeCodeDate}), ErrUnexpectedNull)
	require.ErrorAs(t, back.UnmarshalCql(IntValue(1)), &mismatchErr)
	assert.Equal(t, primitive.DataTypeCodeDate, mismatchErr.Expected)
}

func TestParseLocalDate(t *testing.T) {
	d, err := ParseLocalDate("1337-4-5")
	require.Nil(t, err)
	assert.Equal(t, "1337-04-05", d.String())

	_, err = ParseLocalDate("262144-1-1")
	require.ErrorIs(t, err, ErrNotRepresentable)

	_, err = ParseLocalDate("2020/03/07")
	require.NotNil(t, err)
}
