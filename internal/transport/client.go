// Package transport talks to the booking site: one session, five endpoints,
// strictly sequential requests with a pacing limiter between them. The wire
// flow is three Wicket form posts keyed by the servlet session id.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/taiwan-rail-tools/thsrbook/internal/page"
)

// Default network tuning. Conservative: this client drives exactly one
// blocking request at a time.
const (
	DefaultBaseURL = "https://irs.thsrc.com.tw"

	DefaultDialTimeout         = 5 * time.Second
	DefaultTLSHandshakeTimeout = 5 * time.Second
	DefaultRequestTimeout      = 30 * time.Second
	DefaultStepDelay           = 200 * time.Millisecond

	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// submit endpoint templates; the interface counter advances per stage.
const (
	bookingPagePath = "/IMINT/?locale=tw"
	submitPathTmpl  = "/IMINT/;jsessionid=%s?wicket:interface=:%d:BookingS%dForm::IFormSubmitListener"
)

// Config holds transport settings.
type Config struct {
	BaseURL         string
	UserAgent       string
	RequestTimeout  time.Duration
	DialTimeout     time.Duration
	TLSTimeout      time.Duration
	StepDelay       time.Duration
	IgnoreTLSErrors bool
}

// DefaultConfig returns production settings for the official site.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      defaultUserAgent,
		RequestTimeout: DefaultRequestTimeout,
		DialTimeout:    DefaultDialTimeout,
		TLSTimeout:     DefaultTLSHandshakeTimeout,
		StepDelay:      DefaultStepDelay,
	}
}

// Page is one fetched response: parsed document, raw body, and the session
// id the next submission must target.
type Page struct {
	Doc       *html.Node
	Body      []byte
	SessionID string
}

// Client is the booking-site HTTP client. Not safe for concurrent use; the
// flow is sequential by design.
type Client struct {
	http      *http.Client
	base      *url.URL
	limiter   *rate.Limiter
	userAgent string
	logger    *zap.Logger
}

// NewClient builds a client with a fresh cookie jar and a pacing limiter
// that spaces requests by the configured step delay.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg = DefaultConfig()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	dialer := &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: 15 * time.Second}
	transport := &http.Transport{
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.IgnoreTLSErrors,
		},
		TLSHandshakeTimeout: cfg.TLSTimeout,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	stepDelay := cfg.StepDelay
	if stepDelay <= 0 {
		stepDelay = DefaultStepDelay
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.RequestTimeout,
		},
		base:      base,
		limiter:   rate.NewLimiter(rate.Every(stepDelay), 1),
		userAgent: userAgent,
		logger:    logger.Named("transport"),
	}, nil
}

// Close releases idle connections. The client is single-session; call this
// once the flow finishes.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// FetchBookingPage loads the stage-one form page and captures the session id
// from the response cookies, falling back to the form action.
func (c *Client) FetchBookingPage(ctx context.Context) (*Page, error) {
	body, err := c.get(ctx, c.base.ResolveReference(&url.URL{Path: "/IMINT/", RawQuery: "locale=tw"}))
	if err != nil {
		return nil, fmt.Errorf("fetch booking page: %w", err)
	}
	return c.buildPage(body, "")
}

// FetchCaptchaImage downloads the challenge image referenced by the page.
func (c *Client) FetchCaptchaImage(ctx context.Context, p *Page) ([]byte, error) {
	imgURL, err := page.CaptchaImageURL(p.Doc, c.base)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, imgURL)
	if err != nil {
		return nil, fmt.Errorf("fetch captcha image: %w", err)
	}
	return body, nil
}

// SubmitBookingForm posts the stage-one form.
func (c *Client) SubmitBookingForm(ctx context.Context, p *Page, values url.Values) (*Page, error) {
	return c.submit(ctx, p, 0, 1, values)
}

// SubmitTrainSelection posts the stage-two train choice.
func (c *Client) SubmitTrainSelection(ctx context.Context, p *Page, values url.Values) (*Page, error) {
	return c.submit(ctx, p, 1, 2, values)
}

// SubmitTicketDetails posts the stage-three passenger details.
func (c *Client) SubmitTicketDetails(ctx context.Context, p *Page, values url.Values) (*Page, error) {
	return c.submit(ctx, p, 2, 3, values)
}

func (c *Client) submit(ctx context.Context, p *Page, counter, stage int, values url.Values) (*Page, error) {
	if p.SessionID == "" {
		return nil, fmt.Errorf("submit stage %d: no session id", stage)
	}
	target := c.base.ResolveReference(mustParse(fmt.Sprintf(submitPathTmpl, p.SessionID, counter, stage)))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build stage %d request: %w", stage, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.base.String()+bookingPagePath)

	c.logger.Debug("Submitting form", zap.Int("stage", stage), zap.String("url", target.Path))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit stage %d: %w", stage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stage %d response: %w", stage, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("submit stage %d: unexpected status %d", stage, resp.StatusCode)
	}
	return c.buildPage(body, p.SessionID)
}

func (c *Client) get(ctx context.Context, target *url.URL) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, target.Path)
	}
	return body, nil
}

// buildPage parses a response body and resolves the session id: cookies win,
// the form action is the fallback, and a previously known id carries over.
func (c *Client) buildPage(body []byte, previousSID string) (*Page, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse response page: %w", err)
	}

	sid := previousSID
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == "JSESSIONID" && cookie.Value != "" {
			sid = cookie.Value
		}
	}
	if fromForm, err := page.JSessionID(doc); err == nil {
		sid = fromForm
	}

	return &Page{Doc: doc, Body: body, SessionID: sid}, nil
}

func mustParse(ref string) *url.URL {
	u, err := url.Parse(ref)
	if err != nil {
		panic(err)
	}
	return u
}
