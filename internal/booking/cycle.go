// Package booking drives the three-stage reservation flow against the remote
// booking site: submit the search form (with captcha), pick a train, submit
// passenger details. The captcha cycle and the orchestrator take the site
// through interfaces so tests can script every response.
package booking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"golang.org/x/net/html"

	"github.com/taiwan-rail-tools/thsrbook/internal/captcha"
	"github.com/taiwan-rail-tools/thsrbook/internal/codec"
	"github.com/taiwan-rail-tools/thsrbook/internal/page"
	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
	"github.com/taiwan-rail-tools/thsrbook/internal/transport"
)

// Captcha cycle defaults, matching the site's observed tolerance.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Gateway is the slice of the HTTP client the flow needs. *transport.Client
// satisfies it.
type Gateway interface {
	FetchBookingPage(ctx context.Context) (*transport.Page, error)
	FetchCaptchaImage(ctx context.Context, p *transport.Page) ([]byte, error)
	SubmitBookingForm(ctx context.Context, p *transport.Page, values url.Values) (*transport.Page, error)
	SubmitTrainSelection(ctx context.Context, p *transport.Page, values url.Values) (*transport.Page, error)
	SubmitTicketDetails(ctx context.Context, p *transport.Page, values url.Values) (*transport.Page, error)
}

// ManualEntry is the fallback captcha channel. *captcha.ManualPrompt
// satisfies it.
type ManualEntry interface {
	Ask(image []byte, guess string) (string, error)
}

// CycleConfig bounds the automatic captcha attempts.
type CycleConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// CaptchaCycle submits the stage-one form until the captcha is accepted or
// the retry budget plus one manual attempt is spent.
type CaptchaCycle struct {
	gw         Gateway
	solver     captcha.Solver
	manual     ManualEntry
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewCaptchaCycle builds a cycle; zero config fields fall back to defaults.
func NewCaptchaCycle(gw Gateway, solver captcha.Solver, manual ManualEntry, cfg CycleConfig, logger *zap.Logger) *CaptchaCycle {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &CaptchaCycle{
		gw:         gw,
		solver:     solver,
		manual:     manual,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Run performs the stage-one submission loop. It returns the last response
// and the form that produced it even when that response still carries a
// captcha rejection; the caller inspects the page feedback. Any page fetched
// after a rejection is re-read in full: the server rotates the session's
// seat, trip and search-by values together with the captcha.
func (c *CaptchaCycle) Run(ctx context.Context, req *schema.BookingRequest) (*transport.Page, *schema.BookingForm, error) {
	pg, image, form, err := c.openSearch(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	for retry := 0; ; {
		forceManual := retry >= c.maxRetries

		guess, err := c.solver.Solve(ctx, image)
		if err != nil {
			c.logger.Warn("captcha service unavailable", zap.Error(err))
			guess = ""
		}
		code := guess
		if forceManual || code == "" {
			code, err = c.manual.Ask(image, guess)
			if err != nil {
				return nil, nil, err
			}
		} else {
			c.logger.Info("captcha solved automatically", zap.String("code", code))
		}
		form.SecurityCode = code

		values, err := form.Encode()
		if err != nil {
			return nil, nil, fmt.Errorf("encode booking form: %w", err)
		}
		resp, err := c.gw.SubmitBookingForm(ctx, pg, values)
		if err != nil {
			return nil, nil, err
		}

		if page.HasTrainData(resp.Doc) {
			return resp, form, nil
		}
		feedback := page.ParseErrorFeedback(resp.Doc)
		if !feedback.IsCaptchaError() {
			return resp, form, nil
		}

		retry++
		if forceManual {
			// The manual answer was the last shot; hand the rejection up.
			return resp, form, nil
		}
		c.logger.Warn("captcha rejected, retrying",
			zap.Int("attempt", retry),
			zap.Int("max_retries", c.maxRetries))
		if err := wait(ctx, c.retryDelay); err != nil {
			return nil, nil, err
		}

		pg, image, err = c.refresh(ctx, form)
		if err != nil {
			return nil, nil, err
		}
	}
}

// openSearch fetches the booking page, its captcha image, and assembles the
// search form from the request plus the page's server-chosen fields.
func (c *CaptchaCycle) openSearch(ctx context.Context, req *schema.BookingRequest) (*transport.Page, []byte, *schema.BookingForm, error) {
	pg, err := c.gw.FetchBookingPage(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	image, err := c.gw.FetchCaptchaImage(ctx, pg)
	if err != nil {
		return nil, nil, nil, err
	}
	form, err := buildBookingForm(req, pg.Doc)
	if err != nil {
		return nil, nil, nil, err
	}
	return pg, image, form, nil
}

// refresh re-fetches the page and image after a rejection and swaps the
// rotated dynamic fields into the form in place.
func (c *CaptchaCycle) refresh(ctx context.Context, form *schema.BookingForm) (*transport.Page, []byte, error) {
	pg, err := c.gw.FetchBookingPage(ctx)
	if err != nil {
		return nil, nil, err
	}
	image, err := c.gw.FetchCaptchaImage(ctx, pg)
	if err != nil {
		return nil, nil, err
	}
	seat, trip, searchBy, err := dynamicFields(pg.Doc)
	if err != nil {
		return nil, nil, err
	}
	form.SeatPrefer = seat
	form.TripType = trip
	form.SearchBy = searchBy
	return pg, image, nil
}

func buildBookingForm(req *schema.BookingRequest, doc *html.Node) (*schema.BookingForm, error) {
	seat, trip, searchBy, err := dynamicFields(doc)
	if err != nil {
		return nil, err
	}
	return &schema.BookingForm{
		StartStation:    req.Start.Code(),
		DestStation:     req.Dest.Code(),
		SearchBy:        searchBy,
		TripType:        trip,
		SeatPrefer:      seat,
		OutboundDate:    req.OutboundDate,
		OutboundTime:    string(req.OutboundTime),
		AdultTickets:    codec.FormatTicketCount(req.TicketCount(codec.Adult), codec.Adult),
		ChildTickets:    codec.FormatTicketCount(req.TicketCount(codec.Child), codec.Child),
		DisabledTickets: codec.FormatTicketCount(req.TicketCount(codec.Disabled), codec.Disabled),
		ElderTickets:    codec.FormatTicketCount(req.TicketCount(codec.Elder), codec.Elder),
		CollegeTickets:  codec.FormatTicketCount(req.TicketCount(codec.College), codec.College),
		YouthTickets:    codec.FormatTicketCount(req.TicketCount(codec.Youth), codec.Youth),
	}, nil
}

func dynamicFields(doc *html.Node) (seat string, trip int, searchBy string, err error) {
	ex := page.NewExtractor(doc)
	if seat, err = ex.PreferredSeatValue(); err != nil {
		return "", 0, "", err
	}
	if trip, err = ex.TripTypeValue(); err != nil {
		return "", 0, "", err
	}
	if searchBy, err = ex.SearchByValue(); err != nil {
		return "", 0, "", err
	}
	return seat, trip, searchBy, nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
