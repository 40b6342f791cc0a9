package codec

import "fmt"

// TicketType is a fare category. Each category has a single-letter wire tag
// appended to the count when the ticket amount field is submitted.
type TicketType int

const (
	Adult TicketType = iota
	Child
	Disabled
	Elder
	College
	Youth
)

// MaxTicketNum is the largest per-category count the site accepts.
const MaxTicketNum = 10

// BookingHorizonDays is how far ahead of today a departure may be booked.
const BookingHorizonDays = 28

var ticketTags = map[TicketType]string{
	Adult:    "F",
	Child:    "H",
	Disabled: "W",
	Elder:    "E",
	College:  "P",
	Youth:    "Y",
}

var ticketDisplayNames = map[TicketType]string{
	Adult:    "成人",
	Child:    "孩童",
	Disabled: "愛心",
	Elder:    "敬老",
	College:  "大學生",
	Youth:    "少年",
}

var ticketKeys = map[TicketType]string{
	Adult:    "adult",
	Child:    "child",
	Disabled: "disabled",
	Elder:    "elder",
	College:  "college",
	Youth:    "youth",
}

// TicketTypes returns all fare categories in wire-row order.
func TicketTypes() []TicketType {
	return []TicketType{Adult, Child, Disabled, Elder, College, Youth}
}

// Tag returns the single-letter wire tag for the category.
func (t TicketType) Tag() string { return ticketTags[t] }

// Key returns the lowercase config key for the category.
func (t TicketType) Key() string { return ticketKeys[t] }

// String returns the display name for the category.
func (t TicketType) String() string {
	if name, ok := ticketDisplayNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TicketType(%d)", int(t))
}

// DiscountFare reports whether the category requires per-passenger national
// IDs on the final submission page.
func (t TicketType) DiscountFare() bool {
	return t == Disabled || t == Elder
}

// FormatTicketCount renders a ticket amount field value, e.g. "2F" or "0H".
// The count must already be within [0, MaxTicketNum]; out-of-range values are
// a caller contract violation and are rendered as-is.
func FormatTicketCount(count int, t TicketType) string {
	return fmt.Sprintf("%d%s", count, t.Tag())
}
