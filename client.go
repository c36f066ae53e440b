package easydata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"resty.dev/v3"
)

const (
	// DefaultBaseURL is the production EasyData service root
	DefaultBaseURL = "https://easydata.sbp.org.pk"

	// DefaultProbeSeries is the public series VerifyKey fetches to test a
	// key. The overnight repo rate is published daily, so a short recent
	// window of it is a cheap authenticated request.
	DefaultProbeSeries = "TS_GP_IR_REPOMR_D.ORR"

	// defaultTimeout bounds each HTTP request
	defaultTimeout = 30 * time.Second

	// dateLayout is the calendar-date form the service expects
	dateLayout = "2006-01-02"

	// probeWindowDays is how far back the verification probe reaches
	probeWindowDays = 7
)

// Client talks to the EasyData API. Every method is synchronous and
// blocking; each call opens and completes exactly one HTTP request, with
// no retries. A failed attempt is surfaced immediately to the caller.
type Client struct {
	session     *Session
	http        *resty.Client
	logger      *slog.Logger
	baseURL     string
	timeout     time.Duration
	probeSeries string
	saveDir     string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different service root, such as a
// test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides the per-request HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithLogger sets the logger used for request lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSession makes the client use an existing session instead of a
// fresh one, so several clients can share one verified key
func WithSession(session *Session) Option {
	return func(c *Client) { c.session = session }
}

// WithSaveDir makes every successful download also write its raw payload
// into dir, named {series}_{start}_{end}.{format}
func WithSaveDir(dir string) Option {
	return func(c *Client) { c.saveDir = dir }
}

// WithProbeSeries overrides the series VerifyKey fetches
func WithProbeSeries(seriesCode string) Option {
	return func(c *Client) { c.probeSeries = seriesCode }
}

// NewClient creates a client for the EasyData API
func NewClient(opts ...Option) *Client {
	c := &Client{
		session:     NewSession(),
		logger:      slog.Default(),
		baseURL:     DefaultBaseURL,
		timeout:     defaultTimeout,
		probeSeries: DefaultProbeSeries,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.http = newHTTPClient(c.baseURL, c.timeout)
	return c
}

// newHTTPClient builds the underlying HTTP client. Retries stay disabled:
// a single failed attempt is the contract.
func newHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0)
}

// Session returns the session backing this client
func (c *Client) Session() *Session {
	return c.session
}

// SetKey stores key in the session without contacting the service
func (c *Client) SetKey(key string) {
	c.session.SetKey(key)
}

// HasKey reports whether the session holds a key
func (c *Client) HasKey() bool {
	return c.session.HasKey()
}

// Key returns the session key, failing with an ErrorTypeNoKey error when
// none was set
func (c *Client) Key() (string, error) {
	return c.session.Key()
}

// VerifyKey asks the remote service whether key is accepted, by fetching
// a short recent window of a known public series with it. On success the
// key is stored in the session for subsequent calls. A 401 or 403
// response means the service rejected the key: VerifyKey returns false
// and the session is left untouched. Transport failure is returned as an
// ErrorTypeNetwork error, never swallowed; any other non-success status
// is an ErrorTypeRemote error, since it neither confirms nor rejects the
// key.
func (c *Client) VerifyKey(ctx context.Context, key string) (bool, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -probeWindowDays)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", FormatCSV.accept()).
		SetQueryParams(map[string]string{
			"api_key":    key,
			"start_date": start.Format(dateLayout),
			"end_date":   end.Format(dateLayout),
			"format":     string(FormatCSV),
		}).
		Get(seriesDataPath(c.probeSeries))

	if err != nil {
		return false, NewNetworkError(err)
	}

	switch {
	case resp.IsSuccess():
		c.session.storeVerified(key)
		c.logger.Debug("API key verified", "probe_series", c.probeSeries)
		return true, nil
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		c.logger.Debug("API key rejected", "status_code", resp.StatusCode())
		return false, nil
	default:
		return false, NewRemoteError(resp.StatusCode())
	}
}

// DownloadSeries fetches one series over [start, end] in the requested
// format and returns the raw payload. The session must already hold a
// key, from SetKey or a successful VerifyKey. The date range is checked
// before any network activity.
func (c *Client) DownloadSeries(ctx context.Context, seriesCode string, start, end time.Time, format Format) (*SeriesPayload, error) {
	key, err := c.session.Key()
	if err != nil {
		return nil, err
	}

	if start.After(end) {
		return nil, NewInvalidRangeError(start, end)
	}

	if !format.valid() {
		return nil, NewInvalidFormatError(string(format))
	}

	startDate := start.Format(dateLayout)
	endDate := end.Format(dateLayout)

	c.logger.Debug("downloading series",
		"series", seriesCode,
		"start_date", startDate,
		"end_date", endDate,
		"format", string(format))

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", format.accept()).
		SetQueryParams(map[string]string{
			"api_key":    key,
			"start_date": startDate,
			"end_date":   endDate,
			"format":     string(format),
		}).
		Get(seriesDataPath(seriesCode))

	if err != nil {
		return nil, NewNetworkError(err)
	}

	if !resp.IsSuccess() {
		return nil, NewRemoteError(resp.StatusCode())
	}

	payload := &SeriesPayload{
		SeriesCode: seriesCode,
		Format:     format,
		Body:       []byte(resp.String()),
		Start:      start,
		End:        end,
	}

	if c.saveDir != "" {
		if err := c.savePayload(payload); err != nil {
			return nil, err
		}
	}

	return payload, nil
}

// savePayload mirrors the raw body to disk, named after the request
func (c *Client) savePayload(p *SeriesPayload) error {
	name := fmt.Sprintf("%s_%s_%s.%s", p.SeriesCode, p.Start.Format(dateLayout), p.End.Format(dateLayout), p.Format)
	path := filepath.Join(c.saveDir, name)

	if err := os.WriteFile(path, p.Body, 0o644); err != nil {
		return fmt.Errorf("failed to save payload: %w", err)
	}

	c.logger.Info("data saved", "path", path)
	return nil
}

// seriesDataPath builds the observations path for one series
func seriesDataPath(seriesCode string) string {
	return fmt.Sprintf("/api/v1/series/%s/data", url.PathEscape(seriesCode))
}
