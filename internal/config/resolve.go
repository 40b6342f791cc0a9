package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/taiwan-rail-tools/thsrbook/internal/codec"
	"github.com/taiwan-rail-tools/thsrbook/internal/profile"
	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
)

// wireDateLayout is the date format the site expects.
const wireDateLayout = "2006/01/02"

// Resolution errors. Validation failures surface immediately and are never
// retried.
var (
	ErrSameStation   = errors.New("origin and destination stations are the same")
	ErrNoTickets     = errors.New("at least one ticket is required")
	ErrMissingDate   = errors.New("outbound date is required")
	ErrMissingTime   = errors.New("outbound time is required")
	ErrBadPersonalID = errors.New("personal ID must be exactly 10 characters")
)

// DateRangeError reports a departure date outside the booking horizon.
type DateRangeError struct {
	Date  string
	First string
	Last  string
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("date %s outside bookable range %s~%s", e.Date, e.First, e.Last)
}

// Resolve merges the configured booking input with a saved profile and
// validates the result into a submittable request. cfg values win over the
// profile; the profile wins over defaults. record may be nil.
func Resolve(cfg BookingConfig, record *profile.Record, now time.Time) (*schema.BookingRequest, error) {
	merged := cfg
	if record != nil {
		if merged.StartStation == "" {
			merged.StartStation = record.StartStation
		}
		if merged.DestStation == "" {
			merged.DestStation = record.DestStation
		}
		if merged.OutboundTime == "" {
			merged.OutboundTime = record.OutboundTime
		}
		if len(merged.Tickets) == 0 {
			merged.Tickets = record.Tickets
		}
		if merged.PersonalID == "" {
			merged.PersonalID = record.PersonalID
		}
		if merged.Phone == "" {
			merged.Phone = record.Phone
		}
		if merged.Email == "" {
			merged.Email = record.Email
		}
		if len(merged.PassengerIDs) == 0 {
			merged.PassengerIDs = record.PassengerIDs
		}
	}
	if merged.StartStation == "" {
		merged.StartStation = codec.Taipei.String()
	}
	if merged.DestStation == "" {
		merged.DestStation = codec.Zuoying.String()
	}
	if len(merged.Tickets) == 0 {
		merged.Tickets = map[string]int{codec.Adult.Key(): 1}
	}

	start, err := codec.StationToCode(merged.StartStation)
	if err != nil {
		return nil, err
	}
	dest, err := codec.StationToCode(merged.DestStation)
	if err != nil {
		return nil, err
	}
	// Nothing upstream enforces this; the site rejects it only after the
	// captcha dance, so fail before any network traffic.
	if start == dest {
		return nil, ErrSameStation
	}

	if merged.OutboundDate == "" {
		return nil, ErrMissingDate
	}
	date, err := time.ParseInLocation(wireDateLayout, merged.OutboundDate, now.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid outbound date %q (expected yyyy/MM/dd): %w", merged.OutboundDate, err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	last := today.AddDate(0, 0, codec.BookingHorizonDays)
	if date.Before(today) || date.After(last) {
		return nil, &DateRangeError{
			Date:  merged.OutboundDate,
			First: today.Format(wireDateLayout),
			Last:  last.Format(wireDateLayout),
		}
	}

	if merged.OutboundTime == "" {
		return nil, ErrMissingTime
	}
	slot, err := codec.TimeToSlot(merged.OutboundTime)
	if err != nil {
		return nil, err
	}

	tickets := make(map[codec.TicketType]int, len(merged.Tickets))
	total := 0
	for _, tt := range codec.TicketTypes() {
		count := merged.Tickets[tt.Key()]
		if count < 0 || count > codec.MaxTicketNum {
			return nil, fmt.Errorf("%s ticket count %d outside 0~%d", tt.Key(), count, codec.MaxTicketNum)
		}
		tickets[tt] = count
		total += count
	}
	if total == 0 {
		return nil, ErrNoTickets
	}

	if merged.PersonalID != "" && len(merged.PersonalID) != 10 {
		return nil, ErrBadPersonalID
	}

	return &schema.BookingRequest{
		Start:        start,
		Dest:         dest,
		OutboundDate: merged.OutboundDate,
		OutboundTime: slot,
		Tickets:      tickets,
		PersonalID:   merged.PersonalID,
		Phone:        merged.Phone,
		Email:        merged.Email,
		PassengerIDs: merged.PassengerIDs,
		Auto:         merged.Auto,
	}, nil
}
