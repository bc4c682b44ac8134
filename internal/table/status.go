package table

import "time"

type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the banner raised by a finished command.
type Status struct {
	Kind      StatusKind
	Message   string
	ExpiresAt time.Time
}

func (s *Status) Active(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// StatusTTL sets how long each kind of banner stays visible.
type StatusTTL struct {
	Success time.Duration
	Error   time.Duration
}

var DefaultStatusTTL = StatusTTL{Success: 3 * time.Second, Error: 5 * time.Second}

func (t StatusTTL) expiry(kind StatusKind, now time.Time) time.Time {
	if kind == StatusError {
		return now.Add(t.Error)
	}
	return now.Add(t.Success)
}
