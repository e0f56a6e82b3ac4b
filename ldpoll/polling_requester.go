package ldpoll

import (
	"fmt"
	"io"
	"net/http"

	"github.com/launchdarkly/go-config-monitor/internal/datasource"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/gregjones/httpcache"
	"golang.org/x/exp/maps"
)

// requester fetches the polled resource. It is separate from PollingChangeSource so that the
// polling loop can be tested without an HTTP server.
type requester interface {
	Request() (body []byte, cached bool, err error)
	URI() string
}

type httpRequester struct {
	httpClient *http.Client
	uri        string
	headers    http.Header
	loggers    ldlog.Loggers
}

func newHTTPRequester(httpClient *http.Client, uri string, headers http.Header, loggers ldlog.Loggers) *httpRequester {
	modifiedClient := *httpClient
	modifiedClient.Transport = &httpcache.Transport{
		Cache:               httpcache.NewMemoryCache(),
		MarkCachedResponses: true,
		Transport:           httpClient.Transport,
	}
	return &httpRequester{
		httpClient: &modifiedClient,
		uri:        uri,
		headers:    headers,
		loggers:    loggers,
	}
}

func (r *httpRequester) URI() string {
	return r.uri
}

func (r *httpRequester) Request() ([]byte, bool, error) {
	if r.loggers.IsDebugEnabled() {
		r.loggers.Debugf("Polling %s for configuration changes", r.uri)
	}
	req, reqErr := http.NewRequest("GET", r.uri, nil)
	if reqErr != nil {
		reqErr = fmt.Errorf(
			"unable to create a poll request; this is not a network problem, most likely a bad URI: %w",
			reqErr,
		)
		return nil, false, reqErr
	}
	if r.headers != nil {
		req.Header = maps.Clone(r.headers)
	}

	res, resErr := r.httpClient.Do(req)
	if resErr != nil {
		return nil, false, resErr
	}
	defer func() {
		_, _ = io.ReadAll(res.Body)
		_ = res.Body.Close()
	}()

	if err := datasource.CheckForHTTPError(res.StatusCode, r.uri); err != nil {
		return nil, false, err
	}

	cached := res.Header.Get(httpcache.XFromCache) != ""

	body, ioErr := io.ReadAll(res.Body)
	if ioErr != nil {
		return nil, false, ioErr
	}
	return body, cached, nil
}
