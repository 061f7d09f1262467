package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeamTypeAcceptsNameAndLabel(t *testing.T) {
	tests := []struct {
		in   string
		want TeamType
		ok   bool
	}{
		{"MAIN", TeamMain, true},
		{"reserve", TeamReserve, true},
		{"основной", TeamMain, true},
		{" n/a ", TeamNotApplicable, true},
		{"NOT_APPLICABLE", TeamNotApplicable, true},
		{"not_applicable", TeamNotApplicable, true},
		{"NA", TeamNotApplicable, true},
		{"bench", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTeamType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParsePosition(t *testing.T) {
	p, ok := ParsePosition("Полузащитник")
	require.True(t, ok)
	assert.Equal(t, Midfielder, p)

	p, ok = ParsePosition("forward")
	require.True(t, ok)
	assert.Equal(t, Forward, p)

	_, ok = ParsePosition("striker")
	assert.False(t, ok)
}

func TestFromLabelEmptyIsUnset(t *testing.T) {
	tt, ok := TeamTypeFromLabel("")
	assert.True(t, ok)
	assert.False(t, tt.Valid())

	pos, ok := PositionFromLabel("Вратарь")
	assert.True(t, ok)
	assert.Equal(t, Goalkeeper, pos)

	_, ok = PositionFromLabel("GOALKEEPER")
	assert.False(t, ok, "names are not labels")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1999-02-28")
	require.NoError(t, err)
	assert.Equal(t, NewDate(1999, time.February, 28), d)
	assert.Equal(t, "1999-02-28", d.String())

	_, err = ParseDate("1999-02-30")
	assert.Error(t, err)
	_, err = ParseDate("28.02.1999")
	assert.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2000, time.January, 31)
	b := NewDate(2000, time.February, 1)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2001-05-06"))
	assert.Equal(t, NewDate(2001, time.May, 6), d)

	require.NoError(t, d.Scan([]byte("2001-05-07T00:00:00Z")))
	assert.Equal(t, NewDate(2001, time.May, 7), d)

	require.NoError(t, d.Scan(time.Date(2002, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2002, time.March, 4), d)

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2002, time.March, 4).Value()
	require.NoError(t, err)
	assert.Equal(t, "2002-03-04", v)
}
