package ldhttp

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	ntlm "github.com/launchdarkly/go-ntlm-proxy-auth"
)

const (
	// DefaultConnectTimeout is the HTTP connection timeout that is used if you do not specify otherwise.
	DefaultConnectTimeout = 3 * time.Second

	defaultKeepAlive           = 1 * time.Minute
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultMaxIdleConns        = 100
)

type transportExtraOptions struct {
	caCerts        *x509.CertPool
	connectTimeout time.Duration
	proxyURL       *url.URL
	ntlm           *ntlmParams
}

type ntlmParams struct {
	proxyURL url.URL
	username string
	password string
	domain   string
}

// TransportOption is the interface for optional configuration parameters that can be passed to
// NewHTTPTransport or NewHTTPClient.
type TransportOption interface {
	apply(opts *transportExtraOptions) error
}

type connectTimeoutOption struct {
	timeout time.Duration
}

func (o connectTimeoutOption) apply(opts *transportExtraOptions) error {
	opts.connectTimeout = o.timeout
	return nil
}

// ConnectTimeoutOption specifies the maximum time to wait for a TCP connection. If it is not
// provided, or is zero or negative, DefaultConnectTimeout is used.
func ConnectTimeoutOption(timeout time.Duration) TransportOption {
	return connectTimeoutOption{timeout: timeout}
}

type caCertOption struct {
	certData []byte
}

func (o caCertOption) apply(opts *transportExtraOptions) error {
	if opts.caCerts == nil {
		opts.caCerts = x509.NewCertPool()
	}
	if !opts.caCerts.AppendCertsFromPEM(o.certData) {
		return errors.New("invalid CA certificate data")
	}
	return nil
}

// CACertOption specifies a CA certificate, in PEM format, to be added to the trusted root CAs
// for HTTPS requests. It can be repeated to add several certificates.
func CACertOption(certData []byte) TransportOption {
	return caCertOption{certData: certData}
}

type caCertFileOption struct {
	filePath string
}

func (o caCertFileOption) apply(opts *transportExtraOptions) error {
	bytes, err := os.ReadFile(o.filePath)
	if err != nil {
		return fmt.Errorf("can't read CA certificate file: %w", err)
	}
	return caCertOption{certData: bytes}.apply(opts)
}

// CACertFileOption is the same as CACertOption, but reads the certificate data from a file.
func CACertFileOption(filePath string) TransportOption {
	return caCertFileOption{filePath: filePath}
}

type proxyOption struct {
	url url.URL
}

func (o proxyOption) apply(opts *transportExtraOptions) error {
	u := o.url
	opts.proxyURL = &u
	return nil
}

// ProxyOption specifies a proxy URL to be used for all requests. This overrides any setting of
// the HTTP_PROXY, HTTPS_PROXY, or NO_PROXY environment variables.
func ProxyOption(url url.URL) TransportOption {
	return proxyOption{url: url}
}

type ntlmProxyOption struct {
	params ntlmParams
}

func (o ntlmProxyOption) apply(opts *transportExtraOptions) error {
	if o.params.proxyURL.Host == "" {
		return errors.New("NTLM proxy URL must not be empty")
	}
	if o.params.username == "" || o.params.password == "" {
		return errors.New("NTLM proxy username and password must not be empty")
	}
	p := o.params
	opts.ntlm = &p
	return nil
}

// NTLMProxyOption routes all connections through a proxy server that requires NTLM authentication.
// The domain may be empty. Environment proxy variables are ignored when this option is used.
func NTLMProxyOption(proxyURL url.URL, username, password, domain string) TransportOption {
	return ntlmProxyOption{params: ntlmParams{
		proxyURL: proxyURL,
		username: username,
		password: password,
		domain:   domain,
	}}
}

// NewHTTPTransport creates a customized http.Transport struct using the specified options. It returns
// both the Transport and an associated net.Dialer.
//
// Unless ProxyOption or NTLMProxyOption is used, the transport uses http.ProxyFromEnvironment.
func NewHTTPTransport(options ...TransportOption) (*http.Transport, *net.Dialer, error) {
	extraOptions := transportExtraOptions{}
	for _, o := range options {
		if err := o.apply(&extraOptions); err != nil {
			return nil, nil, err
		}
	}
	timeout := extraOptions.connectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: defaultKeepAlive,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          defaultMaxIdleConns,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if extraOptions.caCerts != nil {
		transport.TLSClientConfig = &tls.Config{ //nolint:gosec // the default TLS version is fine
			RootCAs: extraOptions.caCerts,
		}
	}
	if extraOptions.proxyURL != nil {
		transport.Proxy = http.ProxyURL(extraOptions.proxyURL)
	}
	if n := extraOptions.ntlm; n != nil {
		// The NTLM dialer does the proxy negotiation itself, so the transport must not add a proxy of its own.
		transport.Proxy = nil
		transport.DialContext = ntlm.NewNTLMProxyDialContext(dialer, n.proxyURL, n.username, n.password, n.domain,
			transport.TLSClientConfig)
	}
	return transport, dialer, nil
}

// NewHTTPClient creates an http.Client whose transport is built by NewHTTPTransport.
//
// The client has no overall request timeout, because a streaming response never completes; the
// connect timeout applies to establishing each connection.
func NewHTTPClient(options ...TransportOption) (*http.Client, error) {
	transport, _, err := NewHTTPTransport(options...)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: transport}, nil
}
