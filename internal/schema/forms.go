// Package schema defines the wire-level form models and parsed page entities
// shared by the booking flow. Form structs carry the remote Wicket component
// names in url tags and encode through go-querystring, so field order and
// names never drift between stages.
package schema

import (
	"net/url"

	"github.com/google/go-querystring/query"
)

// BookingForm is the stage-one submission: trip parameters, ticket counts and
// the captcha answer. Dynamic fields (SeatPrefer, TripType, SearchBy) come
// from the page extractor, never from configuration; the server regenerates
// them per session.
type BookingForm struct {
	StartStation    int    `url:"selectStartStation"`
	DestStation     int    `url:"selectDestinationStation"`
	SearchBy        string `url:"bookingMethod"`
	TripType        int    `url:"tripCon:typesoftrip"`
	SeatPrefer      string `url:"seatCon:seatRadioGroup"`
	ClassType       int    `url:"trainCon:trainRadioGroup"`
	OutboundDate    string `url:"toTimeInputField"`
	OutboundTime    string `url:"toTimeTable"`
	ToTrainID       string `url:"toTrainIDInputField"`
	InboundDate     string `url:"backTimeInputField"`
	InboundTime     string `url:"backTimeTable"`
	BackTrainID     string `url:"backTrainIDInputField"`
	AdultTickets    string `url:"ticketPanel:rows:0:ticketAmount"`
	ChildTickets    string `url:"ticketPanel:rows:1:ticketAmount"`
	DisabledTickets string `url:"ticketPanel:rows:2:ticketAmount"`
	ElderTickets    string `url:"ticketPanel:rows:3:ticketAmount"`
	CollegeTickets  string `url:"ticketPanel:rows:4:ticketAmount"`
	YouthTickets    string `url:"ticketPanel:rows:5:ticketAmount"`
	FormMark        string `url:"BookingS1Form_hf_0"`
	SecurityCode    string `url:"homeCaptcha:securityCode"`
}

// Encode renders the form as POST values.
func (f BookingForm) Encode() (url.Values, error) {
	return query.Values(f)
}

// TrainSelectionForm is the stage-two submission carrying the opaque token of
// the chosen train.
type TrainSelectionForm struct {
	SelectedTrain string `url:"TrainQueryDataViewPanel:TrainGroup"`
	FormMark      string `url:"BookingS2Form_hf_0"`
}

func (f TrainSelectionForm) Encode() (url.Values, error) {
	return query.Values(f)
}

// TicketDetailsForm is the stage-three submission with passenger contact
// details. Per-passenger national-ID fields have server-generated names and
// are merged into the encoded values by the orchestrator.
type TicketDetailsForm struct {
	PersonalID   string `url:"dummyId"`
	Phone        string `url:"dummyPhone"`
	Email        string `url:"email"`
	MemberRadio  string `url:"TicketMemberSystemInputPanel:TakerMemberSystemDataView:memberSystemRadioGroup"`
	IDInputRadio int    `url:"idInputRadio"`
	TGoError     int    `url:"TgoError"`
	BackHome     string `url:"backHome"`
	GoBackM      string `url:"isGoBackM"`
	Agree        string `url:"agree"`
	FormMark     string `url:"BookingS3FormSP:hf:0"`
}

// NewTicketDetailsForm fills in the hidden constants the site expects on
// every stage-three submission.
func NewTicketDetailsForm(personalID, phone, email, memberRadio string) TicketDetailsForm {
	return TicketDetailsForm{
		PersonalID:  personalID,
		Phone:       phone,
		Email:       email,
		MemberRadio: memberRadio,
		TGoError:    1,
		Agree:       "on",
	}
}

func (f TicketDetailsForm) Encode() (url.Values, error) {
	return query.Values(f)
}
