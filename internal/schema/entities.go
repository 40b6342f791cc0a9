package schema

import (
	"strings"

	"github.com/taiwan-rail-tools/thsrbook/internal/codec"
)

// Train is one offered departure parsed from the stage-one response. It is
// immutable once parsed and only meaningful within that response cycle: the
// FormValue token is regenerated by the server on every search.
type Train struct {
	ID        int
	Depart    string
	Arrive    string
	Duration  string // H:MM travel time as printed by the site
	Discount  string // "(早鳥85折, 大學生75折)" style annotation, empty if none
	FormValue string // opaque selection token for the stage-two submission
}

// PassengerIDEntry is one national-ID input slot on the stage-three page,
// created for each discount-fare passenger and consumed once on submission.
type PassengerIDEntry struct {
	FieldName   string // server-generated input name
	Ordinal     int    // 1-based passenger position
	TicketLabel string // fare-class label shown next to the row
	NationalID  string
}

// BookingRequest is the fully resolved, validated input to one booking run.
type BookingRequest struct {
	Start        codec.Station
	Dest         codec.Station
	OutboundDate string // yyyy/MM/dd as the site expects
	OutboundTime codec.TimeSlot
	Tickets      map[codec.TicketType]int
	PersonalID   string
	Phone        string
	Email        string
	// PassengerIDs are predefined per-slot national IDs from a saved
	// profile. They take precedence over interactive prompts.
	PassengerIDs []string
	// Auto selects the shortest-duration train without prompting.
	Auto bool
}

// TicketCount returns the requested count for a category, zero when unset.
func (r *BookingRequest) TicketCount(t codec.TicketType) int {
	if r.Tickets == nil {
		return 0
	}
	return r.Tickets[t]
}

// captchaMarkers and noTrainMarkers are the locale-specific substrings the
// site embeds in its feedback messages.
var captchaMarkers = []string{"檢測碼", "驗證碼"}

var noTrainMarkers = []string{"查無可售車次", "車票已售完"}

// ErrorFeedback is the ordered list of server-reported messages extracted
// from one response page.
type ErrorFeedback struct {
	Messages []string
}

// Empty reports whether the server attached no messages.
func (f ErrorFeedback) Empty() bool { return len(f.Messages) == 0 }

func (f ErrorFeedback) matches(markers []string) bool {
	for _, msg := range f.Messages {
		for _, marker := range markers {
			if strings.Contains(msg, marker) {
				return true
			}
		}
	}
	return false
}

// IsCaptchaError reports whether any message is a captcha rejection.
func (f ErrorFeedback) IsCaptchaError() bool { return f.matches(captchaMarkers) }

// IsNoTrainError reports whether the messages say the search found nothing
// sellable, as opposed to a structural failure.
func (f ErrorFeedback) IsNoTrainError() bool { return f.matches(noTrainMarkers) }

// String joins the messages for display.
func (f ErrorFeedback) String() string { return strings.Join(f.Messages, "; ") }
