package page

import (
	"net/url"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseFixture(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

const bookingPageFixture = `<html><body>
<form id="BookingS1Form" action="/IMINT/;jsessionid=ABC123DEF?wicket:interface=:0:BookingS1Form::IFormSubmitListener" method="post">
  <select name="seatCon:seatRadioGroup">
    <option value="radio15">No preference</option>
    <option value="radio17" selected="selected">Window</option>
  </select>
  <select name="tripCon:typesoftrip">
    <option value="0" selected="selected">Single trip</option>
    <option value="1">Round trip</option>
  </select>
  <input type="radio" name="bookingMethod" value="radio31" checked="checked"/>
  <input type="radio" name="bookingMethod" value="radio33"/>
  <img id="BookingS1Form_homeCaptcha_passCode" src="/IMINT/passcode?id=42"/>
</form>
</body></html>`

func TestExtractor_BookingPageFields(t *testing.T) {
	ex := NewExtractor(parseFixture(t, bookingPageFixture))

	seat, err := ex.PreferredSeatValue()
	require.NoError(t, err)
	assert.Equal(t, "radio17", seat)

	trip, err := ex.TripTypeValue()
	require.NoError(t, err)
	assert.Equal(t, 0, trip)

	searchBy, err := ex.SearchByValue()
	require.NoError(t, err)
	assert.Equal(t, "radio31", searchBy)
}

func TestExtractor_MissingGroupIsStructural(t *testing.T) {
	ex := NewExtractor(parseFixture(t, `<html><body><p>nothing here</p></body></html>`))

	var structErr *StructureError
	_, err := ex.PreferredSeatValue()
	require.ErrorAs(t, err, &structErr)
	assert.Contains(t, structErr.Error(), "seatCon:seatRadioGroup")

	_, err = ex.SearchByValue()
	assert.ErrorAs(t, err, &structErr)
}

func TestExtractor_GroupPresentButNothingSelected(t *testing.T) {
	// The group exists but no member carries the marker. This is still a
	// structure mismatch, never defaulted.
	fixture := `<html><body>
	<select name="seatCon:seatRadioGroup"><option value="radio15">x</option></select>
	<input type="radio" name="bookingMethod" value="radio31"/>
	</body></html>`
	ex := NewExtractor(parseFixture(t, fixture))

	var structErr *StructureError
	_, err := ex.PreferredSeatValue()
	assert.ErrorAs(t, err, &structErr)
	_, err = ex.SearchByValue()
	assert.ErrorAs(t, err, &structErr)
}

func TestExtractor_MemberRadioAndPassengerSlots(t *testing.T) {
	fixture := `<html><body>
	<input type="radio" name="TicketMemberSystemInputPanel:TakerMemberSystemDataView:memberSystemRadioGroup" value="radio50" checked="checked"/>
	<div class="passenger-row"><span class="ticket-type">愛心</span>
	  <input name="TicketPassengerInfoInputVO:passengerDataView:0:passengerDataIdNumber"/></div>
	<div class="passenger-row"><span class="ticket-type">敬老</span>
	  <input name="TicketPassengerInfoInputVO:passengerDataView:1:passengerDataIdNumber"/></div>
	</body></html>`
	ex := NewExtractor(parseFixture(t, fixture))

	radio, err := ex.MemberRadioValue()
	require.NoError(t, err)
	assert.Equal(t, "radio50", radio)

	slots := ex.PassengerIDFieldSlots()
	require.Len(t, slots, 2)
	assert.Equal(t, 1, slots[0].Ordinal)
	assert.Equal(t, "愛心", slots[0].TicketLabel)
	assert.Equal(t, "TicketPassengerInfoInputVO:passengerDataView:0:passengerDataIdNumber", slots[0].FieldName)
	assert.Equal(t, 2, slots[1].Ordinal)
	assert.Equal(t, "敬老", slots[1].TicketLabel)
}

func TestExtractor_NoPassengerSlots(t *testing.T) {
	ex := NewExtractor(parseFixture(t, `<html><body><form></form></body></html>`))
	assert.Empty(t, ex.PassengerIDFieldSlots())
}

func TestParseErrorFeedback(t *testing.T) {
	fixture := `<html><body>
	<span class="feedbackPanelERROR"> 檢測碼輸入錯誤 </span>
	<span class="feedbackPanelERROR">請重新輸入</span>
	</body></html>`
	feedback := ParseErrorFeedback(parseFixture(t, fixture))
	require.Len(t, feedback.Messages, 2)
	assert.Equal(t, "檢測碼輸入錯誤", feedback.Messages[0])
	assert.True(t, feedback.IsCaptchaError())
}

func TestParseErrorFeedback_Clean(t *testing.T) {
	feedback := ParseErrorFeedback(parseFixture(t, `<html><body><p>ok</p></body></html>`))
	assert.True(t, feedback.Empty())
}

func TestHasTrainData(t *testing.T) {
	withPanel := parseFixture(t, `<html><body><div id="TrainQueryDataViewPanel"></div></body></html>`)
	assert.True(t, HasTrainData(withPanel))
	assert.False(t, HasTrainData(parseFixture(t, `<html><body></body></html>`)))
}

func TestCaptchaImageURL(t *testing.T) {
	doc := parseFixture(t, bookingPageFixture)
	base, _ := url.Parse("https://irs.thsrc.com.tw")

	resolved, err := CaptchaImageURL(doc, base)
	require.NoError(t, err)
	assert.Equal(t, "https://irs.thsrc.com.tw/IMINT/passcode?id=42", resolved.String())

	_, err = CaptchaImageURL(parseFixture(t, `<html></html>`), base)
	var structErr *StructureError
	assert.ErrorAs(t, err, &structErr)
}

func TestJSessionID(t *testing.T) {
	sid, err := JSessionID(parseFixture(t, bookingPageFixture))
	require.NoError(t, err)
	assert.Equal(t, "ABC123DEF", sid)

	_, err = JSessionID(parseFixture(t, `<html><body><form action="/IMINT/"></form></body></html>`))
	var structErr *StructureError
	assert.ErrorAs(t, err, &structErr)
}
