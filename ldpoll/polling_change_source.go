package ldpoll

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal/datasource"
	"github.com/launchdarkly/go-config-monitor/ldhttp"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const (
	// DefaultPollInterval is the interval used if Config.PollInterval is not set.
	DefaultPollInterval = 30 * time.Second

	pollingErrorContext     = "on polling request"
	pollingWillRetryMessage = "will retry at next scheduled poll interval"
)

// Config describes the configuration for a PollingChangeSource.
type Config struct {
	// URI is the full URI of the resource to poll.
	URI string

	// Name is the configuration name that changes are reported for. It defaults to
	// interfaces.DefaultName.
	Name string

	// PollInterval is the time between requests. If zero, DefaultPollInterval is used.
	PollInterval time.Duration

	// HTTPClient is the client used for requests. If nil, a client is created with
	// ldhttp.NewHTTPClient.
	HTTPClient *http.Client

	// Headers are added to every request.
	Headers http.Header

	Loggers ldlog.Loggers
}

// PollingChangeSource is a ChangeTokenSource that polls a URL and fires when the body changes.
//
// The first successful response only establishes a baseline. After that, a response that did not
// come from the HTTP cache and whose body differs from the previous one reports a change. Errors
// are logged and polling continues at the next interval.
type PollingChangeSource struct {
	signal       *changetoken.Signal
	requester    requester
	pollInterval time.Duration
	loggers      ldlog.Loggers
	lastBody     []byte
	hasBaseline  bool
	readyCh      chan struct{}
	readyOnce    sync.Once
	quit         chan struct{}
	closeOnce    sync.Once
}

// NewPollingChangeSource creates a PollingChangeSource and starts polling, beginning with an
// immediate request.
func NewPollingChangeSource(config Config) (*PollingChangeSource, error) {
	if config.URI == "" {
		return nil, errors.New("polling URI must not be empty")
	}
	if _, err := url.Parse(config.URI); err != nil {
		return nil, err
	}
	client := config.HTTPClient
	if client == nil {
		var err error
		if client, err = ldhttp.NewHTTPClient(); err != nil {
			return nil, err
		}
	}
	r := newHTTPRequester(client, config.URI, config.Headers, config.Loggers)
	pp := newPollingChangeSource(config.Name, r, config.PollInterval, config.Loggers)
	pp.start()
	return pp, nil
}

func newPollingChangeSource(
	name string,
	requester requester,
	pollInterval time.Duration,
	loggers ldlog.Loggers,
) *PollingChangeSource {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &PollingChangeSource{
		signal:       changetoken.NewSignal(name),
		requester:    requester,
		pollInterval: pollInterval,
		loggers:      loggers,
		readyCh:      make(chan struct{}),
		quit:         make(chan struct{}),
	}
}

var _ interfaces.ChangeTokenSource = (*PollingChangeSource)(nil)

// Name is a standard method of ChangeTokenSource.
func (pp *PollingChangeSource) Name() string {
	return pp.signal.Name()
}

// GetChangeToken is a standard method of ChangeTokenSource.
func (pp *PollingChangeSource) GetChangeToken() interfaces.ChangeToken {
	return pp.signal.GetChangeToken()
}

// Ready returns a channel that is closed once the first successful poll has established a baseline.
func (pp *PollingChangeSource) Ready() <-chan struct{} {
	return pp.readyCh
}

// GetPollInterval returns the configured polling interval, for testing.
func (pp *PollingChangeSource) GetPollInterval() time.Duration {
	return pp.pollInterval
}

// Close stops polling. Calling it again has no effect.
func (pp *PollingChangeSource) Close() error {
	pp.closeOnce.Do(func() {
		close(pp.quit)
	})
	return nil
}

func (pp *PollingChangeSource) start() {
	pp.loggers.Infof("Polling %s for configuration changes with interval: %+v", pp.requester.URI(), pp.pollInterval)

	ticker := newTickerWithInitialTick(pp.pollInterval, pp.quit)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-pp.quit:
				return
			case <-ticker.C:
				changed, err := pp.poll()
				if err != nil {
					pp.logError(err)
					continue
				}
				select {
				case <-pp.quit:
					return
				default:
				}
				if changed {
					pp.loggers.Debugf("Polled resource changed; reporting change to configuration %q", pp.Name())
					pp.signal.Notify()
				}
			}
		}
	}()
}

// poll makes one request and reports whether the body changed since the last successful one.
func (pp *PollingChangeSource) poll() (bool, error) {
	body, cached, err := pp.requester.Request()
	if err != nil {
		return false, err
	}
	if !pp.hasBaseline {
		pp.hasBaseline = true
		pp.lastBody = body
		pp.loggers.Info("First polling request successful")
		pp.readyOnce.Do(func() {
			close(pp.readyCh)
		})
		return false, nil
	}
	if cached || bytes.Equal(body, pp.lastBody) {
		return false, nil
	}
	pp.lastBody = body
	return true, nil
}

func (pp *PollingChangeSource) logError(err error) {
	desc := err.Error()
	var hse datasource.HTTPStatusError
	if errors.As(err, &hse) {
		desc = datasource.HTTPErrorDescription(hse.Code)
	}
	// Status 0 logs every failure as recoverable; polling never gives up.
	datasource.CheckIfErrorIsRecoverableAndLog(pp.loggers, desc, pollingErrorContext, 0, pollingWillRetryMessage)
}

type tickerWithInitialTick struct {
	*time.Ticker
	C <-chan time.Time
}

// newTickerWithInitialTick relays ticks from a time.Ticker, starting with an immediate one. The
// relay goroutine exits when stopCh is closed; stopping the Ticker alone does not end it, because
// Stop does not close the Ticker's channel.
func newTickerWithInitialTick(interval time.Duration, stopCh <-chan struct{}) *tickerWithInitialTick {
	c := make(chan time.Time)
	ticker := time.NewTicker(interval)
	t := &tickerWithInitialTick{
		C:      c,
		Ticker: ticker,
	}
	go func() {
		tt := time.Now() // Ensure we do an initial poll immediately
		for {
			select {
			case c <- tt:
			case <-stopCh:
				return
			}
			select {
			case tt = <-ticker.C:
			case <-stopCh:
				return
			}
		}
	}()
	return t
}
