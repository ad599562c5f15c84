package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/michaelscutari/gridassets/internal/logger"
)

const (
	// DefaultTimeout bounds a single GET so one stalled host cannot hang a run.
	DefaultTimeout = 30 * time.Second

	userAgent = "gridassets/0.1 (+https://github.com/michaelscutari/gridassets)"
)

// ErrFetch is matched by every error returned from Fetch.
var ErrFetch = errors.New("fetch failed")

// Error describes a failed download. StatusCode is zero when the request
// never produced a response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrFetch }

// Response is a successful download.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	MIME       string // sniffed from Body, e.g. "image/png"
	Extension  string // sniffed extension without the dot, e.g. "png"
}

// Client performs plain GET requests with a per-request timeout and no retries.
type Client struct {
	http *resty.Client
}

// NewClient creates a client. A non-positive timeout uses DefaultTimeout.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	c := resty.New().
		SetLogger(restyLogger{log: log}).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "image/*,*/*;q=0.8")
	return &Client{http: c}
}

// Fetch downloads url. Any non-2xx status is returned as *Error.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &Error{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	body := resp.Body()
	mt := mimetype.Detect(body)
	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode(),
		Body:       body,
		MIME:       mt.String(),
		Extension:  strings.TrimPrefix(mt.Extension(), "."),
	}, nil
}

// restyLogger routes resty's internal messages through our logger so nothing
// lands on stderr behind our back.
type restyLogger struct {
	log logger.Logger
}

func (r restyLogger) Errorf(format string, v ...any) { r.log.Error(fmt.Sprintf(format, v...)) }
func (r restyLogger) Warnf(format string, v ...any)  { r.log.Warn(fmt.Sprintf(format, v...)) }
func (r restyLogger) Debugf(format string, v ...any) { r.log.Debug(fmt.Sprintf(format, v...)) }
