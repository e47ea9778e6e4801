package booking

import (
	"strings"
	"time"
)

// Reservation duration bounds in minutes
const (
	MinReservationMinutes = 15
	MaxReservationMinutes = 720
)

// MaxBlockWindow is the longest window a block may span
const MaxBlockWindow = 90 * 24 * time.Hour

// WindowRules parameterizes ValidateWindow for one kind of entry
type WindowRules struct {
	StartField string
	EndField   string
	// MaxDuration is ignored when zero
	MaxDuration time.Duration
	// AllowPastStart exempts edits of entries that have already started
	AllowPastStart bool
}

// BlockWindowRules apply to block windows
var BlockWindowRules = WindowRules{
	StartField:  "fecha_inicio",
	EndField:    "fecha_fin",
	MaxDuration: MaxBlockWindow,
}

// ValidateWindow checks a window against the past-start, order and duration rules and
// reports every rule it breaks.
func ValidateWindow(start, end, now time.Time, rules WindowRules) error {
	var violations []Violation

	if !rules.AllowPastStart && start.Before(now) {
		violations = append(violations, Violation{
			Field:   rules.StartField,
			Rule:    ErrPastStart,
			Message: "must not be in the past",
		})
	}
	if !start.Before(end) {
		violations = append(violations, Violation{
			Field:   rules.EndField,
			Rule:    ErrWindowOrder,
			Message: "must be after " + rules.StartField,
		})
	} else if rules.MaxDuration > 0 && end.Sub(start) > rules.MaxDuration {
		violations = append(violations, Violation{
			Field:   rules.EndField,
			Rule:    ErrDuration,
			Message: "window exceeds " + rules.MaxDuration.String(),
		})
	}

	if len(violations) > 0 {
		return &TemporalError{Violations: violations}
	}
	return nil
}

var instantLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseInstant accepts RFC 3339 or a local date-time interpreted in loc
func ParseInstant(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseWindow parses both ends of a block window
func ParseWindow(startRaw, endRaw string, loc *time.Location, rules WindowRules) (time.Time, time.Time, error) {
	var violations []Violation

	start, ok := ParseInstant(startRaw, loc)
	if !ok {
		violations = append(violations, Violation{
			Field: rules.StartField, Rule: ErrInvalidInstant, Message: "is not a valid date-time",
		})
	}
	end, ok := ParseInstant(endRaw, loc)
	if !ok {
		violations = append(violations, Violation{
			Field: rules.EndField, Rule: ErrInvalidInstant, Message: "is not a valid date-time",
		})
	}

	if len(violations) > 0 {
		return time.Time{}, time.Time{}, &TemporalError{Violations: violations}
	}
	return start, end, nil
}

// ReservationWindow turns fecha_reserva, hora_reserva and a duration into a window in
// loc. The returned date and time are normalized to YYYY-MM-DD and HH:MM.
func ReservationWindow(date, clock string, minutes int, loc *time.Location) (start, end time.Time, normDate, normClock string, err error) {
	var violations []Violation

	day, derr := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
	if derr != nil {
		violations = append(violations, Violation{
			Field: "fecha_reserva", Rule: ErrInvalidInstant, Message: "must be a date in YYYY-MM-DD format",
		})
	}

	tod, ok := parseClock(clock)
	if !ok {
		violations = append(violations, Violation{
			Field: "hora_reserva", Rule: ErrInvalidInstant, Message: "must be a time in HH:MM format",
		})
	}

	if minutes < MinReservationMinutes || minutes > MaxReservationMinutes {
		violations = append(violations, Violation{
			Field:   "duracion_estimada",
			Rule:    ErrDuration,
			Message: "must be between 15 and 720 minutes",
		})
	}

	if len(violations) > 0 {
		return time.Time{}, time.Time{}, "", "", &TemporalError{Violations: violations}
	}

	start = time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)
	end = start.Add(time.Duration(minutes) * time.Minute)
	return start, end, start.Format("2006-01-02"), start.Format("15:04"), nil
}

func parseClock(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
