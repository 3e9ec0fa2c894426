package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BareDate(t *testing.T) {
	loc := time.FixedZone("clinic", 2*60*60)
	d, err := Parse("2024-06-10", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", d.String())
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, loc), d.Start())
}

func TestParse_RFC3339KeepsWrittenDate(t *testing.T) {
	east := time.FixedZone("east", 2*60*60)
	west := time.FixedZone("west", -4*60*60)

	for _, loc := range []*time.Location{east, west, time.UTC} {
		d, err := Parse("2024-06-10T00:00:00.000Z", loc)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-10", d.String(), "zone %s", loc)
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, loc), d.Start())

		d, err = Parse("2024-06-09T23:30:00Z", loc)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-09", d.String(), "zone %s", loc)
	}

	d, err := Parse("2024-06-10T22:00:00-05:00", east)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", d.String())
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "  ", "10/06/2024", "2024-13-01", "tomorrow"} {
		_, err := Parse(s, time.UTC)
		assert.Error(t, err, "input %q", s)
	}
}

func TestDay_Arithmetic(t *testing.T) {
	d := New(2024, time.February, 28, time.UTC)
	assert.Equal(t, "2024-02-29", d.Next().String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2024-02-21", d.AddDays(-7).String())
}

func TestDay_AddDaysAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// Clocks go forward on 2024-03-31; the next day still starts at midnight.
	d := New(2024, time.March, 31, loc)
	next := d.Next()
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, loc), next.Start())
	assert.Equal(t, 23*time.Hour, next.Start().Sub(d.Start()))
}

func TestDay_Contains(t *testing.T) {
	d := New(2024, time.June, 10, time.UTC)
	assert.True(t, d.Contains(d.Start()))
	assert.True(t, d.Contains(d.Start().Add(23*time.Hour+59*time.Minute)))
	assert.False(t, d.Contains(d.Next().Start()))
	assert.False(t, d.Contains(d.Start().Add(-time.Nanosecond)))
}

func TestDay_Compare(t *testing.T) {
	a := New(2024, time.June, 10, time.UTC)
	b := New(2024, time.June, 11, time.UTC)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.True(t, a.Equal(New(2024, time.June, 10, time.FixedZone("x", 3600))))
}

func TestDay_JSON(t *testing.T) {
	type payload struct {
		Date Day `json:"date"`
	}
	in := payload{Date: New(2024, time.June, 10, time.Local)}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-06-10"}`, string(b))

	var out payload
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, out.Date.Equal(in.Date))

	assert.Error(t, json.Unmarshal([]byte(`{"date":20240610}`), &out))
	assert.Error(t, json.Unmarshal([]byte(`{"date":"junk"}`), &out))
}

func TestOf(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), Of(now).Start())
	assert.True(t, (Day{}).IsZero())
}
