package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sessionID = "0000TEST1234"

func bookingPage(sid string) string {
	return fmt.Sprintf(`<html><body>
	<form id="BookingS1Form" action="/IMINT/;jsessionid=%s?wicket:interface=:0:BookingS1Form::IFormSubmitListener">
	<img id="BookingS1Form_homeCaptcha_passCode" src="/IMINT/passcode"/>
	</form></body></html>`, sid)
}

func newTestServer(t *testing.T) (*httptest.Server, *Client, map[string]string) {
	t.Helper()
	captured := map[string]string{}

	mux := http.NewServeMux()
	mux.HandleFunc("/IMINT/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			captured["path"] = r.URL.RequestURI()
			captured["selectStartStation"] = r.PostForm.Get("selectStartStation")
			captured["content-type"] = r.Header.Get("Content-Type")
			fmt.Fprint(w, `<html><body><div id="TrainQueryDataViewPanel"></div></body></html>`)
			return
		}
		if strings.Contains(r.URL.Path, "passcode") {
			w.Write([]byte{0xFF, 0xD8, 0x01})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: sessionID, Path: "/"})
		fmt.Fprint(w, bookingPage(sessionID))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.StepDelay = time.Millisecond
	client, err := NewClient(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return server, client, captured
}

func TestFetchBookingPage_CapturesSession(t *testing.T) {
	_, client, _ := newTestServer(t)

	p, err := client.FetchBookingPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sessionID, p.SessionID)
	assert.NotNil(t, p.Doc)
	assert.Contains(t, string(p.Body), "BookingS1Form")
}

func TestFetchCaptchaImage(t *testing.T) {
	_, client, _ := newTestServer(t)

	p, err := client.FetchBookingPage(context.Background())
	require.NoError(t, err)

	img, err := client.FetchCaptchaImage(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x01}, img)
}

func TestSubmitBookingForm_TargetsSessionEndpoint(t *testing.T) {
	_, client, captured := newTestServer(t)

	p, err := client.FetchBookingPage(context.Background())
	require.NoError(t, err)

	values := url.Values{}
	values.Set("selectStartStation", "2")
	resp, err := client.SubmitBookingForm(context.Background(), p, values)
	require.NoError(t, err)

	assert.Contains(t, captured["path"], ";jsessionid="+sessionID)
	assert.Contains(t, captured["path"], "wicket:interface=:0:BookingS1Form::IFormSubmitListener")
	assert.Equal(t, "2", captured["selectStartStation"])
	assert.Equal(t, "application/x-www-form-urlencoded", captured["content-type"])
	// Session carries over to the next stage even when the response page has
	// no form action of its own.
	assert.Equal(t, sessionID, resp.SessionID)
}

func TestSubmitStages_AdvanceInterfaceCounter(t *testing.T) {
	_, client, captured := newTestServer(t)

	p, err := client.FetchBookingPage(context.Background())
	require.NoError(t, err)

	_, err = client.SubmitTrainSelection(context.Background(), p, url.Values{})
	require.NoError(t, err)
	assert.Contains(t, captured["path"], "wicket:interface=:1:BookingS2Form::IFormSubmitListener")

	_, err = client.SubmitTicketDetails(context.Background(), p, url.Values{})
	require.NoError(t, err)
	assert.Contains(t, captured["path"], "wicket:interface=:2:BookingS3Form::IFormSubmitListener")
}

func TestSubmit_WithoutSessionFails(t *testing.T) {
	_, client, _ := newTestServer(t)
	_, err := client.SubmitBookingForm(context.Background(), &Page{}, url.Values{})
	assert.Error(t, err)
}

func TestNewClient_BadBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "://nope"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
