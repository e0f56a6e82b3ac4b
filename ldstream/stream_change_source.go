package ldstream

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal/datasource"
	"github.com/launchdarkly/go-config-monitor/ldhttp"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	es "github.com/launchdarkly/eventsource"

	"golang.org/x/exp/maps"
)

// Error handling works as follows:
// 1. A malformed "change" event is logged and skipped. The stream stays open, since later events
// can still be understood.
// 2. An unrecoverable HTTP error such as 401 closes the stream for good. Any other HTTP error or
// network error causes a retry with backoff.

const (
	streamReadTimeout        = 5 * time.Minute
	streamMaxRetryDelay      = 30 * time.Second
	streamRetryResetInterval = 60 * time.Second
	streamJitterRatio        = 0.5

	// DefaultInitialReconnectDelay is the reconnect delay used if Config.InitialReconnectDelay is not set.
	DefaultInitialReconnectDelay = 1 * time.Second

	streamingErrorContext     = "in stream connection"
	streamingWillRetryMessage = "will retry"
)

// Config describes the configuration for a StreamChangeSource.
type Config struct {
	// URI is the full URI of the event stream.
	URI string

	// HTTPClient is the client used for the connection. If nil, a client is created with
	// ldhttp.NewHTTPClient. Any overall timeout it has is removed, since the response never ends.
	HTTPClient *http.Client

	// Headers are added to the stream request.
	Headers http.Header

	// InitialReconnectDelay is the delay before the first reconnection attempt; later attempts back
	// off exponentially. If zero, DefaultInitialReconnectDelay is used.
	InitialReconnectDelay time.Duration

	Loggers ldlog.Loggers
}

// StreamChangeSource reports configuration changes announced by a server-sent events stream.
//
// It is a ChangeTokenSource for the default name; use ForName to get sources for other names.
type StreamChangeSource struct {
	cfg       Config
	client    *http.Client
	request   *http.Request
	signals   *datasource.NamedSignals
	loggers   ldlog.Loggers
	halt      chan struct{}
	readyCh   chan struct{}
	readyOnce sync.Once
	closeOnce sync.Once
}

// NewStreamChangeSource creates a StreamChangeSource and starts connecting in the background.
//
// It returns an error only if the configuration is unusable, such as an invalid URI; connection
// failures are retried.
func NewStreamChangeSource(config Config) (*StreamChangeSource, error) {
	if config.URI == "" {
		return nil, errors.New("stream URI must not be empty")
	}
	req, err := http.NewRequest("GET", config.URI, nil)
	if err != nil {
		return nil, err
	}
	if config.Headers != nil {
		req.Header = maps.Clone(config.Headers)
	}

	client := config.HTTPClient
	if client == nil {
		if client, err = ldhttp.NewHTTPClient(); err != nil {
			return nil, err
		}
	}
	// Client.Timeout would break the connection once it elapsed, since a stream never completes.
	modifiedClient := *client
	modifiedClient.Timeout = 0

	sp := &StreamChangeSource{
		cfg:     config,
		client:  &modifiedClient,
		request: req,
		signals: datasource.NewNamedSignals(),
		loggers: config.Loggers,
		halt:    make(chan struct{}),
		readyCh: make(chan struct{}),
	}
	sp.signals.Get(interfaces.DefaultName)
	sp.loggers.Infof("Connecting to configuration change stream at %s", config.URI)
	go sp.subscribe()
	return sp, nil
}

var _ interfaces.ChangeTokenSource = (*StreamChangeSource)(nil)

// Name is a standard method of ChangeTokenSource. It always returns the default name.
func (sp *StreamChangeSource) Name() string {
	return interfaces.DefaultName
}

// GetChangeToken is a standard method of ChangeTokenSource.
func (sp *StreamChangeSource) GetChangeToken() interfaces.ChangeToken {
	return sp.signals.Get(interfaces.DefaultName).GetChangeToken()
}

// ForName returns a ChangeTokenSource for the named configuration, fed by this stream.
func (sp *StreamChangeSource) ForName(name string) interfaces.ChangeTokenSource {
	return sp.signals.Source(name)
}

// Ready returns a channel that is closed once the stream has received its first event, or has
// stopped permanently because of an unrecoverable error.
func (sp *StreamChangeSource) Ready() <-chan struct{} {
	return sp.readyCh
}

// Close stops the stream. No further changes are reported. Calling it again has no effect.
func (sp *StreamChangeSource) Close() error {
	sp.closeOnce.Do(func() {
		close(sp.halt)
	})
	return nil
}

func (sp *StreamChangeSource) isClosed() bool {
	select {
	case <-sp.halt:
		return true
	default:
		return false
	}
}

func (sp *StreamChangeSource) setReady() {
	sp.readyOnce.Do(func() {
		close(sp.readyCh)
	})
}

func (sp *StreamChangeSource) subscribe() {
	initialRetryDelay := sp.cfg.InitialReconnectDelay
	if initialRetryDelay <= 0 {
		initialRetryDelay = DefaultInitialReconnectDelay
	}

	errorHandler := func(err error) es.StreamErrorHandlerResult {
		if sp.isClosed() {
			return es.StreamErrorHandlerResult{CloseNow: true}
		}
		if se, ok := err.(es.SubscriptionError); ok {
			recoverable := datasource.CheckIfErrorIsRecoverableAndLog(
				sp.loggers,
				datasource.HTTPErrorDescription(se.Code),
				streamingErrorContext,
				se.Code,
				streamingWillRetryMessage,
			)
			if !recoverable {
				sp.setReady()
			}
			return es.StreamErrorHandlerResult{CloseNow: !recoverable}
		}
		datasource.CheckIfErrorIsRecoverableAndLog(
			sp.loggers,
			err.Error(),
			streamingErrorContext,
			0,
			streamingWillRetryMessage,
		)
		return es.StreamErrorHandlerResult{CloseNow: false}
	}

	stream, err := es.SubscribeWithRequestAndOptions(sp.request,
		es.StreamOptionHTTPClient(sp.client),
		es.StreamOptionReadTimeout(streamReadTimeout),
		es.StreamOptionInitialRetry(initialRetryDelay),
		es.StreamOptionUseBackoff(streamMaxRetryDelay),
		es.StreamOptionUseJitter(streamJitterRatio),
		es.StreamOptionRetryResetInterval(streamRetryResetInterval),
		es.StreamOptionErrorHandler(errorHandler),
		es.StreamOptionCanRetryFirstConnection(-1),
		es.StreamOptionLogger(sp.loggers.ForLevel(ldlog.Info)),
	)
	if err != nil {
		sp.setReady()
		return
	}
	sp.consumeStream(stream)
}

func (sp *StreamChangeSource) consumeStream(stream *es.Stream) {
	// Consume remaining Events and Errors so we can garbage collect
	defer func() {
		for range stream.Events {
		}
		if stream.Errors != nil {
			for range stream.Errors {
			}
		}
	}()

	for {
		select {
		case event, ok := <-stream.Events:
			if !ok {
				sp.setReady()
				return
			}
			if sp.isClosed() {
				stream.Close()
				return
			}
			sp.setReady()
			sp.handleEvent(event)

		case <-sp.halt:
			stream.Close()
			return
		}
	}
}

func (sp *StreamChangeSource) handleEvent(event es.Event) {
	switch event.Event() {
	case changeEvent:
		data, err := parseChangeData([]byte(event.Data()))
		if err != nil {
			sp.loggers.Errorf("Received streaming \"%s\" event with malformed JSON data (%s); ignoring it", event.Event(), err)
			return
		}
		sp.loggers.Debugf("Stream reported a change to configuration %q", data.Name)
		sp.signals.Notify(data.Name)

	case resetEvent:
		sp.loggers.Debug("Stream reported a change to all configurations")
		sp.signals.NotifyAll()

	default:
		sp.loggers.Infof("Unexpected event found in stream: %s", event.Event())
	}
}
