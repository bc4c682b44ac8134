package settings

import (
	"math"
	"net/url"
	"testing"

	"farmdash/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, UnitMetric, d.MeasuringUnit)
	assert.Equal(t, "6 Month", d.DataRetentionPeriod)
	assert.False(t, d.Saved())
	assert.NoError(t, d.Validate())
}

func TestValidate(t *testing.T) {
	long := make([]byte, maxTextLen+1)
	for i := range long {
		long[i] = 'a'
	}
	tests := []struct {
		name   string
		modify func(*Settings)
		want   string
	}{
		{"negative size", func(s *Settings) { s.FarmSize = -1 }, "Farm Size must be a non-negative number."},
		{"nan size", func(s *Settings) { s.FarmSize = math.NaN() }, "Farm Size must be a non-negative number."},
		{"negative birds", func(s *Settings) { s.NoOfBirds = -3 }, "Number of Birds must not be negative."},
		{"unit", func(s *Settings) { s.MeasuringUnit = "Cubits" }, "Measuring Unit must be one of Metric, Imperial."},
		{"retention", func(s *Settings) { s.DataRetentionPeriod = "2 Weeks" }, "Data Retention Period must be one of 3 Month, 6 Month, 1 Year, Forever."},
		{"long name", func(s *Settings) { s.FarmName = string(long) }, "Farm Name must be at most 200 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, table.IsValidation(err))
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestPatch_ApplyKeepsUnsetFields(t *testing.T) {
	s := Default()
	s.FarmName = "Sunrise"
	s.NoOfBirds = 400

	loc := "  Nakuru  "
	push := true
	got := Patch{FarmLocation: &loc, PushNotification: &push}.Apply(s)

	assert.Equal(t, "Sunrise", got.FarmName)
	assert.Equal(t, "Nakuru", got.FarmLocation)
	assert.EqualValues(t, 400, got.NoOfBirds)
	assert.True(t, got.PushNotification)
	assert.False(t, got.EmailNotification)
}

func TestParseForm(t *testing.T) {
	form := url.Values{
		"farm_name":             {"Sunrise"},
		"farm_location":         {"Nakuru"},
		"farm_size":             {"2.5"},
		"no_of_birds":           {"1200"},
		"sms_notification":      {"on"},
		"measuring_unit":        {"Imperial"},
		"data_retention_period": {"1 Year"},
	}
	p, err := ParseForm(form)
	require.NoError(t, err)

	got := p.Apply(Default())
	assert.Equal(t, Settings{
		FarmName:            "Sunrise",
		FarmLocation:        "Nakuru",
		FarmSize:            2.5,
		NoOfBirds:           1200,
		SMSNotification:     true,
		MeasuringUnit:       UnitImperial,
		DataRetentionPeriod: "1 Year",
	}, got)

	form.Set("no_of_birds", "12.5")
	_, err = ParseForm(form)
	assert.EqualError(t, err, "Number of Birds must be a whole number.")

	form.Set("no_of_birds", "")
	form.Set("farm_size", "big")
	_, err = ParseForm(form)
	assert.EqualError(t, err, "Farm Size must be a number.")
}
