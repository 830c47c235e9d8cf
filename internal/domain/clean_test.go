package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScrapedAt = time.Date(2026, 8, 27, 13, 2, 41, 0, time.UTC)

func TestClean_FullyPopulatedRow(t *testing.T) {
	raw := RawRecord{
		City:        "Washington, DC",
		TimeText:    "1 pm",
		Temperature: strPtr("72°F"),
		Condition:   strPtr("Sunny"),
		Wind:        strPtr("8 mph"),
		Humidity:    strPtr("55%"),
		ScrapedAt:   testScrapedAt,
	}

	rec, issues, keep := Clean(raw)
	require.True(t, keep)
	assert.Empty(t, issues)

	assert.Equal(t, "Washington, DC", rec.City)
	assert.Equal(t, "1 pm", rec.TimeLabel)
	require.NotNil(t, rec.TemperatureF)
	assert.Equal(t, 72, *rec.TemperatureF)
	require.NotNil(t, rec.TemperatureC)
	assert.InDelta(t, 22.2, *rec.TemperatureC, 0.001)
	require.NotNil(t, rec.WindMph)
	assert.Equal(t, 8, *rec.WindMph)
	require.NotNil(t, rec.WindKmh)
	assert.InDelta(t, 12.9, *rec.WindKmh, 0.001)
	require.NotNil(t, rec.HumidityPct)
	assert.Equal(t, 55, *rec.HumidityPct)
	require.NotNil(t, rec.Condition)
	assert.Equal(t, "Sunny", *rec.Condition)
	assert.Equal(t, "2026-08-27", rec.ScrapedDate)
}

func TestClean_DerivedUnitsAbsentWithSource(t *testing.T) {
	raw := RawRecord{
		City:      "Washington, DC",
		TimeText:  "2 pm",
		Wind:      strPtr("8 mph"),
		ScrapedAt: testScrapedAt,
	}

	rec, issues, keep := Clean(raw)
	require.True(t, keep)
	assert.Empty(t, issues)

	// Celsius absent iff Fahrenheit absent; km/h present iff mph present.
	assert.Nil(t, rec.TemperatureF)
	assert.Nil(t, rec.TemperatureC)
	assert.NotNil(t, rec.WindMph)
	assert.NotNil(t, rec.WindKmh)
}

func TestClean_UnparseableFieldReportsIssue(t *testing.T) {
	raw := RawRecord{
		City:        "Washington, DC",
		TimeText:    "3 pm",
		Temperature: strPtr("N/A"),
		Wind:        strPtr("8 mph"),
		Humidity:    strPtr("150%"),
		ScrapedAt:   testScrapedAt,
	}

	rec, issues, keep := Clean(raw)
	require.True(t, keep)
	require.Len(t, issues, 2)
	assert.Equal(t, "temperature", issues[0].Field)
	assert.Equal(t, "humidity", issues[1].Field)
	assert.Contains(t, issues[1].Reason, "out of range")

	assert.Nil(t, rec.TemperatureF)
	assert.Nil(t, rec.HumidityPct)
	require.NotNil(t, rec.WindMph)
	assert.Equal(t, 8, *rec.WindMph)
}

func TestClean_AllNumericFieldsAbsentIsDropped(t *testing.T) {
	raw := RawRecord{
		City:        "Washington, DC",
		TimeText:    "4 pm",
		Temperature: strPtr(""),
		Condition:   strPtr("Overcast"),
		Humidity:    strPtr("150%"),
		ScrapedAt:   testScrapedAt,
	}

	rec, _, keep := Clean(raw)
	assert.False(t, keep)
	assert.True(t, rec.Empty())
}

func TestClean_MissingFieldsProduceNoIssues(t *testing.T) {
	raw := RawRecord{
		City:        "Washington, DC",
		TimeText:    "5 pm",
		Temperature: strPtr("68°F"),
		ScrapedAt:   testScrapedAt,
	}

	_, issues, keep := Clean(raw)
	require.True(t, keep)
	assert.Empty(t, issues, "fields missing at the source are not diagnosable failures")
}

func TestClean_BlankConditionBecomesAbsent(t *testing.T) {
	raw := RawRecord{
		City:        "Washington, DC",
		TimeText:    "6 pm",
		Temperature: strPtr("70°F"),
		Condition:   strPtr("   "),
		ScrapedAt:   testScrapedAt,
	}

	rec, _, _ := Clean(raw)
	assert.Nil(t, rec.Condition)
}

func TestNormalizeTimeLabel(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "1 pm", want: "1 pm"},
		{input: "1:00 PM\nWed, Aug 27", want: "1:00 pm"},
		{input: "  2   pm  ", want: "2 pm"},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeTimeLabel(tc.input), "input %q", tc.input)
	}
}
