package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeSlot is a departure time in the site's wire encoding: hour and
// zero-padded minute followed by a period suffix. The hour is not padded, so
// 06:00 encodes as "600A", not "0600A". Suffixes: A before noon, N exactly
// noon, P after noon.
type TimeSlot string

// Timetable is the fixed, ordered set of departure slots the site offers.
// A requested time must map exactly onto one of these.
var Timetable = []TimeSlot{
	"1201A", "1230A",
	"600A", "630A", "700A", "730A", "800A", "830A",
	"900A", "930A", "1000A", "1030A", "1100A", "1130A",
	"1200N", "1230P",
	"100P", "130P", "200P", "230P", "300P", "330P",
	"400P", "430P", "500P", "530P", "600P", "630P",
	"700P", "730P", "800P", "830P", "900P", "930P",
	"1000P", "1030P", "1100P", "1130P",
}

// InvalidTimeFormatError reports input that does not parse as strict HH:MM.
type InvalidTimeFormatError struct {
	Input string
}

func (e *InvalidTimeFormatError) Error() string {
	return fmt.Sprintf("invalid time %q, expected HH:MM", e.Input)
}

// TimeNotAvailableError reports a well-formed time with no matching
// timetable slot. The message enumerates every bookable departure time.
type TimeNotAvailableError struct {
	Input string
}

func (e *TimeNotAvailableError) Error() string {
	times := make([]string, 0, len(Timetable))
	for _, slot := range Timetable {
		times = append(times, SlotToDisplay(slot))
	}
	return fmt.Sprintf("time %s has no departure slot, available times: %s", e.Input, strings.Join(times, ", "))
}

// TimeToSlot converts a 24-hour HH:MM time to its wire slot. The result must
// exist in Timetable.
func TimeToSlot(value string) (TimeSlot, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return "", &InvalidTimeFormatError{Input: value}
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", &InvalidTimeFormatError{Input: value}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", &InvalidTimeFormatError{Input: value}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", &InvalidTimeFormatError{Input: value}
	}

	var slot TimeSlot
	switch {
	case hour == 0:
		slot = TimeSlot(fmt.Sprintf("12%02dA", minute))
	case hour < 12:
		slot = TimeSlot(fmt.Sprintf("%d%02dA", hour, minute))
	case hour == 12 && minute == 0:
		slot = "1200N"
	case hour == 12:
		slot = TimeSlot(fmt.Sprintf("12%02dP", minute))
	default:
		slot = TimeSlot(fmt.Sprintf("%d%02dP", hour-12, minute))
	}

	for _, known := range Timetable {
		if slot == known {
			return slot, nil
		}
	}
	return "", &TimeNotAvailableError{Input: value}
}

// SlotToDisplay converts a wire slot back to 24-hour HH:MM. Exact inverse of
// TimeToSlot for every timetable entry.
func SlotToDisplay(slot TimeSlot) string {
	s := string(slot)
	if len(s) < 4 {
		return s
	}
	suffix := s[len(s)-1]
	digits := s[:len(s)-1]

	var hour, minute int
	if len(digits) == 3 {
		hour, _ = strconv.Atoi(digits[:1])
		minute, _ = strconv.Atoi(digits[1:])
	} else {
		hour, _ = strconv.Atoi(digits[:2])
		minute, _ = strconv.Atoi(digits[2:])
	}

	switch suffix {
	case 'A':
		if hour == 12 {
			hour = 0
		}
	case 'N':
		hour = 12
	case 'P':
		if hour != 12 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
