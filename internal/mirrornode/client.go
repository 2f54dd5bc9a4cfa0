package mirrornode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/log"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metrics"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound = errors.New("not found")
)

// HttpError is returned for any non-200 mirror node response.
type HttpError struct {
	Url        string
	StatusCode int
	Status     string
}

func (e HttpError) Error() string {
	return fmt.Sprintf("mirror node: %s: %s", e.Url, e.Status)
}

func (e HttpError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// A restClient is a rate limited REST client for the mirror node API.
type restClient struct {
	baseUrl    string
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

type ClientOptions struct {
	Timeout int
	Retries int
	Rps     float64
	Burst   int
}

func NewClient(baseUrl string, opts ClientOptions) (*restClient, error) {
	if len(baseUrl) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.RetryableLogger{Component: "mirrornode"}
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second

	limit := rate.Inf
	if opts.Rps > 0 {
		limit = rate.Limit(opts.Rps)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	timeout := time.Duration(opts.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &restClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: retryClient,
		limiter:    rate.NewLimiter(limit, burst),
		timeout:    timeout,
	}, nil
}

// resolve joins a path or a relative "links.next" value onto the base url.
func (c *restClient) resolve(path string, query url.Values) string {
	uri := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		uri = c.baseUrl + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		uri += sep + query.Encode()
	}

	return uri
}

func (c *restClient) wait(ctx context.Context) error {
	r := c.limiter.Reserve()
	if !r.OK() {
		return errors.New("rate: cannot reserve token")
	}
	if delay := r.Delay(); delay > 0 {
		metrics.MirrorNodeRateLimitWaits.Inc()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}

	return nil
}

// get fetches path and decodes the JSON body into out.
func (c *restClient) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) (err error) {
	if err = c.wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	uri := c.resolve(path, query)
	zap.L().With(zap.String("url", uri)).Debug("MirrorNode: Request")

	start := time.Now()
	statusCode := 0
	defer func() {
		metrics.MirrorNodeLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.MirrorNodeRequests.WithLabelValues(endpoint, metrics.StatusLabel(statusCode, err)).Inc()
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("url", uri)).Warn("MirrorNode: Request failure")
		return err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return HttpError{Url: uri, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mirror node: decode %s: %w", uri, err)
	}

	return nil
}
