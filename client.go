package s3rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// A Client signs and dispatches requests against a single endpoint.
// It holds no mutable state across requests and is safe for concurrent use
// as long as its configuration is not modified while requests are in flight.
type Client struct {
	Endpoint    Endpoint
	Credentials Credentials

	// Proxy, when set to a host:port address, is where the request is
	// transmitted. Every signed component still reflects Endpoint; the
	// proxy is expected to forward the bytes unmodified so that the
	// signature stays valid end-to-end.
	Proxy string

	// Signer computes the request signature.
	Signer SignAWSV4

	// HTTPClient used for dispatch. If nil a client that performs exactly
	// one send attempt without following redirects is used.
	HTTPClient *http.Client

	// Log for dispatch events. If nil logging is disabled.
	// The secret key is never logged.
	Log *zap.Logger
}

var defaultHTTPClient = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		// A redirect would invalidate the signature; surface the original response instead
		return http.ErrUseLastResponse
	},
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return defaultHTTPClient
	}
	return c.HTTPClient
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// NewRequest resolves the RequestSpec into a fully signed *http.Request
// targeting the configured endpoint. The payload, if any, has been fully
// consumed for hashing by the time NewRequest returns; the request body
// re-reads the buffered bytes.
func (c *Client) NewRequest(ctx context.Context, spec *RequestSpec) (*http.Request, error) {
	if err := c.Endpoint.Validate(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	payload, payloadHashHex, err := resolvePayload(spec)
	if err != nil {
		return nil, err
	}

	var u = c.Endpoint.URL()
	u.Path = spec.ResourcePath()
	if encoded := encodePath(u.Path); encoded != u.Path {
		u.RawPath = encoded
	}
	u.RawQuery = canonicalQuery(spec.Query)

	req, reqErr := http.NewRequestWithContext(ctx, strings.ToUpper(spec.Method), u.String(), bytes.NewReader(payload))
	if reqErr != nil {
		return nil, &Error{
			Stage:   InvalidRequestSpec,
			Message: "cannot construct HTTP request",
			Cause:   reqErr,
		}
	}

	for name, values := range spec.Header {
		// The host header is owned by the endpoint. A caller-supplied value
		// would be signed while the transport transmits req.Host instead,
		// invalidating the signature.
		if key := http.CanonicalHeaderKey(name); key != "Host" {
			req.Header[key] = append([]string(nil), values...)
		}
	}

	if _, ok := spec.Payload.(FilePayload); ok && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", guessContentType(payload))
	}

	req.Host = c.Endpoint.HostHeader()
	req.ContentLength = int64(len(payload))

	if err := c.Signer.Sign(req, c.Credentials, payloadHashHex); err != nil {
		return nil, err
	}

	return req, nil
}

// PresignURL returns a URL carrying the request signature in its query
// parameters, valid for the given duration. No request is dispatched.
func (c *Client) PresignURL(spec *RequestSpec, expires time.Duration) (*url.URL, error) {
	if err := c.Endpoint.Validate(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var u = c.Endpoint.URL()
	u.Path = spec.ResourcePath()
	if encoded := encodePath(u.Path); encoded != u.Path {
		u.RawPath = encoded
	}
	u.RawQuery = canonicalQuery(spec.Query)

	req := &http.Request{
		Method: strings.ToUpper(spec.Method),
		URL:    u,
		Host:   c.Endpoint.HostHeader(),
		Header: make(http.Header),
	}

	if err := c.Signer.Presign(req, c.Credentials, expires); err != nil {
		return nil, err
	}

	return req.URL, nil
}

// Do signs and dispatches the request described by spec.
// Exactly one send attempt is made; there is no retry, redirect or re-sign.
// A retry by the caller constructs a fresh signature since the signing date
// and possibly the payload hash change between attempts.
func (c *Client) Do(ctx context.Context, spec *RequestSpec) (*Response, error) {
	req, err := c.NewRequest(ctx, spec)
	if err != nil {
		return nil, err
	}

	log := c.logger().With(
		zap.String("request-id", uuid.New().String()),
		zap.String("method", req.Method),
		zap.String("resource", spec.ResourcePath()),
		zap.String("host", req.Host),
	)

	if c.Proxy != "" {
		// Transmit to the proxy address while req.Host, and with it every
		// signed component, keeps pointing at the real endpoint.
		req.URL.Host = c.Proxy
		log = log.With(zap.String("proxy", c.Proxy))
	}

	log.Debug("Dispatch signed request")

	resp, doErr := c.httpClient().Do(req)
	if doErr != nil {
		stage := classifyDispatchError(doErr)
		statTransportFailures.WithLabelValues(req.Method).Add(1)
		log.Error("Dispatch failed", zap.String("stage", stage.Code), zap.Error(doErr))

		return nil, &Error{
			Stage:   stage,
			Message: "request dispatch failed",
			Cause:   doErr,
		}
	}

	defer resp.Body.Close()

	statBytesTransferredOut.WithLabelValues(req.Method).Add(float64(req.ContentLength))

	body, readErr := io.ReadAll(resp.Body)

	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}

	statRequestsDispatched.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Add(1)
	statBytesTransferredIn.WithLabelValues(req.Method).Add(float64(len(body)))

	if readErr != nil {
		log.Error("Response body truncated", zap.Error(readErr))

		// The body read so far is returned best-effort
		return result, &Error{
			Stage:   ProtocolError,
			Message: "malformed HTTP response body",
			Cause:   readErr,
		}
	}

	log.Info("Request complete",
		zap.Int("status", resp.StatusCode),
		zap.Int("response-bytes", len(body)),
	)

	return result, nil
}

// resolvePayload turns the payload variant into the exact byte sequence to
// be sent along with its content hash, or the unsigned payload sentinel
// when payload signing is disabled.
func resolvePayload(spec *RequestSpec) ([]byte, string, error) {
	var payload []byte
	if spec.Payload != nil {
		var err error
		payload, err = spec.Payload.Resolve()
		if err != nil {
			return nil, "", err
		}
	}

	if !spec.SignPayload {
		return payload, amzUnsignedPayload, nil
	}

	return payload, sha256Hex(payload), nil
}

func classifyDispatchError(err error) Stage {
	// url.Error itself implements net.Error, so classification must look
	// at the wrapped cause.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var (
		netErr    net.Error
		opErr     *net.OpError
		recordErr tls.RecordHeaderError
		x509Err   x509.UnknownAuthorityError
		hostErr   x509.HostnameError
	)

	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr),
		errors.As(err, &opErr),
		errors.As(err, &recordErr),
		errors.As(err, &x509Err),
		errors.As(err, &hostErr):
		return TransportError
	default:
		// http.Client errors that are not network failures indicate a
		// response that could not be parsed
		return ProtocolError
	}
}
