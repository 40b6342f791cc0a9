// Package page pulls server-chosen values out of parsed booking pages. Every
// lookup is an explicit contract: when the expected control group is absent
// or carries no selected member, a StructureError is returned rather than a
// silent default, because that means the remote markup no longer matches
// what this tool understands.
package page

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
)

// Wicket component names and anchors on the booking pages.
const (
	seatPreferGroup  = "seatCon:seatRadioGroup"
	tripTypeGroup    = "tripCon:typesoftrip"
	searchByGroup    = "bookingMethod"
	memberRadioGroup = "TicketMemberSystemInputPanel:TakerMemberSystemDataView:memberSystemRadioGroup"

	captchaImageID  = "BookingS1Form_homeCaptcha_passCode"
	trainDataPanel  = "TrainQueryDataViewPanel"
	passengerIDMark = "passengerDataIdNumber"
)

// StructureError reports a page whose markup no longer carries an expected
// control group. It is fatal: retrying cannot fix a site change.
type StructureError struct {
	Group string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("page structure mismatch: no selected value for %q", e.Group)
}

// Extractor reads one parsed page. The document is never mutated.
type Extractor struct {
	doc *html.Node
}

// NewExtractor wraps an already parsed document.
func NewExtractor(doc *html.Node) *Extractor {
	return &Extractor{doc: doc}
}

// PreferredSeatValue returns the server-pre-selected seat preference option.
func (e *Extractor) PreferredSeatValue() (string, error) {
	return e.selectedOption(seatPreferGroup)
}

// TripTypeValue returns the pre-selected trip type (single/round).
func (e *Extractor) TripTypeValue() (int, error) {
	raw, err := e.selectedOption(tripTypeGroup)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &StructureError{Group: tripTypeGroup}
	}
	return value, nil
}

// SearchByValue returns the checked booking-method radio value.
func (e *Extractor) SearchByValue() (string, error) {
	return e.checkedRadio(searchByGroup)
}

// MemberRadioValue returns the checked membership radio on the ticket page.
func (e *Extractor) MemberRadioValue() (string, error) {
	return e.checkedRadio(memberRadioGroup)
}

// PassengerIDFieldSlots returns one entry per discount-fare passenger whose
// national ID must be supplied individually, in page order. An empty slice
// means the booking has no such passengers; that is not an error.
func (e *Extractor) PassengerIDFieldSlots() []schema.PassengerIDEntry {
	inputs := htmlquery.Find(e.doc, fmt.Sprintf("//input[contains(@name,'%s')]", passengerIDMark))
	slots := make([]schema.PassengerIDEntry, 0, len(inputs))
	for i, input := range inputs {
		entry := schema.PassengerIDEntry{
			FieldName: htmlquery.SelectAttr(input, "name"),
			Ordinal:   i + 1,
		}
		// The fare-class label sits inside the same passenger row; absence
		// is cosmetic, not structural.
		if row := htmlquery.FindOne(input, "ancestor::*[contains(@class,'passenger')][1]"); row != nil {
			if label := htmlquery.FindOne(row, ".//*[contains(@class,'ticket-type')]"); label != nil {
				entry.TicketLabel = strings.TrimSpace(htmlquery.InnerText(label))
			}
		}
		slots = append(slots, entry)
	}
	return slots
}

// selectedOption finds the option marked selected inside a named select.
func (e *Extractor) selectedOption(name string) (string, error) {
	sel := htmlquery.FindOne(e.doc, fmt.Sprintf("//select[@name='%s']", name))
	if sel == nil {
		return "", &StructureError{Group: name}
	}
	opt := htmlquery.FindOne(sel, ".//option[@selected]")
	if opt == nil {
		return "", &StructureError{Group: name}
	}
	return htmlquery.SelectAttr(opt, "value"), nil
}

// checkedRadio finds the checked input in a named radio group.
func (e *Extractor) checkedRadio(name string) (string, error) {
	group := htmlquery.Find(e.doc, fmt.Sprintf("//input[@name='%s']", name))
	if len(group) == 0 {
		return "", &StructureError{Group: name}
	}
	for _, input := range group {
		for _, attr := range input.Attr {
			if attr.Key == "checked" {
				return htmlquery.SelectAttr(input, "value"), nil
			}
		}
	}
	return "", &StructureError{Group: name}
}

// ParseErrorFeedback collects the server-reported feedback messages in
// document order.
func ParseErrorFeedback(doc *html.Node) schema.ErrorFeedback {
	var feedback schema.ErrorFeedback
	for _, span := range htmlquery.Find(doc, "//span[@class='feedbackPanelERROR']") {
		if text := strings.TrimSpace(htmlquery.InnerText(span)); text != "" {
			feedback.Messages = append(feedback.Messages, text)
		}
	}
	return feedback
}

// HasTrainData reports whether the response carries the train query panel,
// the marker that stage one was accepted.
func HasTrainData(doc *html.Node) bool {
	return htmlquery.FindOne(doc, fmt.Sprintf("//*[@id='%s']", trainDataPanel)) != nil
}

// CaptchaImageURL resolves the captcha image source against the site base.
func CaptchaImageURL(doc *html.Node, base *url.URL) (*url.URL, error) {
	img := htmlquery.FindOne(doc, fmt.Sprintf("//img[@id='%s']", captchaImageID))
	if img == nil {
		return nil, &StructureError{Group: captchaImageID}
	}
	src := htmlquery.SelectAttr(img, "src")
	if src == "" {
		return nil, &StructureError{Group: captchaImageID}
	}
	ref, err := url.Parse(src)
	if err != nil {
		return nil, &StructureError{Group: captchaImageID}
	}
	return base.ResolveReference(ref), nil
}

// JSessionID extracts the servlet session id embedded in the booking form
// action, which the submit endpoints require in their path.
func JSessionID(doc *html.Node) (string, error) {
	form := htmlquery.FindOne(doc, "//form[contains(@action,'jsessionid')]")
	if form == nil {
		return "", &StructureError{Group: "booking form action"}
	}
	action := htmlquery.SelectAttr(form, "action")
	const marker = ";jsessionid="
	start := strings.Index(action, marker)
	if start < 0 {
		return "", &StructureError{Group: "booking form action"}
	}
	sid := action[start+len(marker):]
	if cut := strings.IndexByte(sid, '?'); cut >= 0 {
		sid = sid[:cut]
	}
	if sid == "" {
		return "", &StructureError{Group: "booking form action"}
	}
	return sid, nil
}
