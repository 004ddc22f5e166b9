// core.go holds the single retry-aware fetch entry point every scraper in
// this module goes through. It owns the shared resty client (and with it the
// cookie jar an authenticated session mutates), so facades never talk HTTP
// themselves.

package core

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/nmcassa/letterboxdpy-sub000/lib/restyutil"
)

var tracer = otel.Tracer("scrapers/letterboxd/core")

const DefaultBaseUrl = "https://letterboxd.com"

const (
	maxAttempts        = 5
	baseConnectTimeout = time.Second * 5
	baseReadTimeout    = time.Second * 15
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	// sleep is swapped out in tests so backoff is observable without waiting
	sleep  func(time.Duration)
	jitter func() time.Duration
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to a random desktop chrome user agent
	UserAgent string
	// requests per second, defaults to 2; <0 disables pacing
	RateLimit float64
	// transcript dump target, may be nil
	InstrumentOutput restyutil.InstrumentOutput
	// overrides the backoff sleep, defaults to time.Sleep
	Sleep func(time.Duration)
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = browser.Chrome()
	}
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetHeader("referer", opts.BaseUrl)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))

	limit := rate.Limit(2)
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateLimit >= 0 {
		rateLimiter := rate.NewLimiter(limit, 2)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		sleep:   sleep,
		jitter:  defaultJitter,
	}
	return c, nil
}

func defaultJitter() time.Duration {
	seconds, err := random.IntRange(0, 3)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (c *Client) absolute(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return c.BaseUrl.ResolveReference(ref).String()
}

// Fetch gets a page through the retry/backoff policy and returns its body.
//
// A 403 that carries bot-protection signals is treated as a transient
// challenge and retried with escalating waits and timeout windows; a bare 403
// means the route itself is private and fails immediately. Network-level
// errors are retried on their own schedule. Exhausting the budget yields a
// *PageLoadError wrapping the last cause.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		window := baseConnectTimeout + time.Duration(attempt)*2*time.Second +
			baseReadTimeout + time.Duration(attempt)*5*time.Second
		attemptCtx, cancel := context.WithTimeout(ctx, window)
		res, err := c.Http.R().
			SetContext(attemptCtx).
			Get(path)
		cancel()

		if err != nil {
			// timeouts, connection resets and friends
			lastErr = err
			c.sleep(time.Duration(3*(attempt+1))*time.Second + c.jitter())
			continue
		}

		status := res.StatusCode()
		if status == 200 {
			return res.Body(), nil
		}

		if status == 403 && hasBlockSignals(res) {
			lastErr = &AccessDeniedError{URL: c.absolute(path), Status: status}
			c.sleep(time.Duration(2*(attempt+1))*time.Second + c.jitter())
			continue
		}

		return nil, c.classify(path, res)
	}

	return nil, &PageLoadError{URL: c.absolute(path), Cause: lastErr}
}

// FetchDocument is the parse entry point used by every extractor: fetch a
// page, parse it into a traversable document. It never fails on a missing
// element, only on markup that cannot be parsed at all.
func (c *Client) FetchDocument(ctx context.Context, path string) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, &InvalidResponseError{
			URL:     c.absolute(path),
			Status:  200,
			Reason:  "unparseable markup",
			Message: err.Error(),
		}
	}
	return doc, nil
}

var blockKeywords = []string{
	"captcha",
	"cloudflare",
	"access denied",
	"verify you are human",
}

func hasBlockSignals(res *resty.Response) bool {
	if strings.Contains(strings.ToLower(res.Header().Get("Server")), "cloudflare") {
		return true
	}
	if res.Header().Get("cf-ray") != "" {
		return true
	}
	body := strings.ToLower(res.String())
	for _, keyword := range blockKeywords {
		if strings.Contains(body, keyword) {
			return true
		}
	}
	return false
}

func (c *Client) classify(path string, res *resty.Response) error {
	u := c.absolute(path)
	status := res.StatusCode()
	switch {
	case status == 403 && hasBlockSignals(res):
		return &AccessDeniedError{URL: u, Status: status}
	case status == 403:
		return &PrivateRouteError{URL: u, Status: status}
	case status == 404:
		return &NotFoundError{URL: u}
	default:
		return &InvalidResponseError{
			URL:     u,
			Status:  status,
			Reason:  res.Status(),
			Message: "unexpected response while scraping",
		}
	}
}
