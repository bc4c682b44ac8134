// Package settings keeps the farm profile and preferences: name, location,
// flock size, notification channels, measuring unit and data retention.
// There is exactly one settings record; it reads as the defaults until it
// is first saved.
package settings

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"farmdash/internal/table"
)

const (
	UnitMetric   = "Metric"
	UnitImperial = "Imperial"

	maxTextLen = 200
)

// Units and RetentionPeriods are the accepted choices, in display order.
var (
	Units = []table.Option{
		{Label: "Metric (°C, kg)", Value: UnitMetric},
		{Label: "Imperial (°F, lb)", Value: UnitImperial},
	}
	RetentionPeriods = []table.Option{
		{Label: "3 Months", Value: "3 Month"},
		{Label: "6 Months", Value: "6 Month"},
		{Label: "1 Year", Value: "1 Year"},
		{Label: "Forever", Value: "Forever"},
	}
)

// Settings is the farm-wide settings record.
type Settings struct {
	FarmName            string    `json:"farm_name" bson:"farm_name"`
	FarmLocation        string    `json:"farm_location" bson:"farm_location"`
	FarmSize            float64   `json:"farm_size" bson:"farm_size"`
	NoOfBirds           int64     `json:"no_of_birds" bson:"no_of_birds"`
	EmailNotification   bool      `json:"email_notification" bson:"email_notification"`
	SMSNotification     bool      `json:"sms_notification" bson:"sms_notification"`
	PushNotification    bool      `json:"push_notification" bson:"push_notification"`
	MeasuringUnit       string    `json:"measuring_unit" bson:"measuring_unit"`
	DataRetentionPeriod string    `json:"data_retention_period" bson:"data_retention_period"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

func Default() Settings {
	return Settings{
		MeasuringUnit:       UnitMetric,
		DataRetentionPeriod: "6 Month",
	}
}

// Saved reports whether the record has ever been stored.
func (s Settings) Saved() bool {
	return !s.UpdatedAt.IsZero()
}

// Validate checks ranges and choices. The first problem found is returned
// as a *table.ValidationError.
func (s Settings) Validate() error {
	switch {
	case len(s.FarmName) > maxTextLen:
		return invalid("Farm Name", "Farm Name must be at most %d characters.", maxTextLen)
	case len(s.FarmLocation) > maxTextLen:
		return invalid("Farm Location", "Farm Location must be at most %d characters.", maxTextLen)
	case math.IsNaN(s.FarmSize) || math.IsInf(s.FarmSize, 0) || s.FarmSize < 0:
		return invalid("Farm Size", "Farm Size must be a non-negative number.")
	case s.NoOfBirds < 0:
		return invalid("Number of Birds", "Number of Birds must not be negative.")
	case !allowed(Units, s.MeasuringUnit):
		return invalid("Measuring Unit", "Measuring Unit must be one of %s.", values(Units))
	case !allowed(RetentionPeriods, s.DataRetentionPeriod):
		return invalid("Data Retention Period", "Data Retention Period must be one of %s.", values(RetentionPeriods))
	}
	return nil
}

// Patch is a partial update. Nil fields keep their stored value.
type Patch struct {
	FarmName            *string  `json:"farm_name,omitempty"`
	FarmLocation        *string  `json:"farm_location,omitempty"`
	FarmSize            *float64 `json:"farm_size,omitempty"`
	NoOfBirds           *int64   `json:"no_of_birds,omitempty"`
	EmailNotification   *bool    `json:"email_notification,omitempty"`
	SMSNotification     *bool    `json:"sms_notification,omitempty"`
	PushNotification    *bool    `json:"push_notification,omitempty"`
	MeasuringUnit       *string  `json:"measuring_unit,omitempty"`
	DataRetentionPeriod *string  `json:"data_retention_period,omitempty"`
}

// Apply returns s with the patch's fields written over it. Text is trimmed.
func (p Patch) Apply(s Settings) Settings {
	if p.FarmName != nil {
		s.FarmName = strings.TrimSpace(*p.FarmName)
	}
	if p.FarmLocation != nil {
		s.FarmLocation = strings.TrimSpace(*p.FarmLocation)
	}
	if p.FarmSize != nil {
		s.FarmSize = *p.FarmSize
	}
	if p.NoOfBirds != nil {
		s.NoOfBirds = *p.NoOfBirds
	}
	if p.EmailNotification != nil {
		s.EmailNotification = *p.EmailNotification
	}
	if p.SMSNotification != nil {
		s.SMSNotification = *p.SMSNotification
	}
	if p.PushNotification != nil {
		s.PushNotification = *p.PushNotification
	}
	if p.MeasuringUnit != nil {
		s.MeasuringUnit = *p.MeasuringUnit
	}
	if p.DataRetentionPeriod != nil {
		s.DataRetentionPeriod = *p.DataRetentionPeriod
	}
	return s
}

// ParseForm reads the settings form. Every field is set: an unchecked box
// is false and an empty number is zero.
func ParseForm(form url.Values) (Patch, error) {
	size, err := formFloat(form, "farm_size", "Farm Size")
	if err != nil {
		return Patch{}, err
	}
	birds, err := formInt(form, "no_of_birds", "Number of Birds")
	if err != nil {
		return Patch{}, err
	}
	name := form.Get("farm_name")
	location := form.Get("farm_location")
	unit := form.Get("measuring_unit")
	retention := form.Get("data_retention_period")
	email := form.Has("email_notification")
	sms := form.Has("sms_notification")
	push := form.Has("push_notification")
	return Patch{
		FarmName:            &name,
		FarmLocation:        &location,
		FarmSize:            &size,
		NoOfBirds:           &birds,
		EmailNotification:   &email,
		SMSNotification:     &sms,
		PushNotification:    &push,
		MeasuringUnit:       &unit,
		DataRetentionPeriod: &retention,
	}, nil
}

func formFloat(form url.Values, field, label string) (float64, error) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(label, "%s must be a number.", label)
	}
	return f, nil
}

func formInt(form url.Values, field, label string) (int64, error) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid(label, "%s must be a whole number.", label)
	}
	return n, nil
}

func invalid(label, format string, args ...any) *table.ValidationError {
	return &table.ValidationError{Label: label, Message: fmt.Sprintf(format, args...)}
}

func allowed(options []table.Option, v string) bool {
	for _, o := range options {
		if o.Value == v {
			return true
		}
	}
	return false
}

func values(options []table.Option) string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return strings.Join(out, ", ")
}
