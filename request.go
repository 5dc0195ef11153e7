package s3rest

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// An Endpoint is the network location of an S3 compatible service.
type Endpoint struct {
	// Protocol is the URL scheme, either "http" or "https".
	Protocol string
	Host     string
	// Port of the service. A zero port means the scheme default.
	Port int
}

func (e Endpoint) Validate() *Error {
	switch e.Protocol {
	case "http", "https":
	default:
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: fmt.Sprintf("unsupported endpoint protocol %q", e.Protocol),
		}
	}

	if e.Host == "" {
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: "endpoint host must not be empty",
		}
	}

	if e.Port < 0 || e.Port > 65535 {
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: fmt.Sprintf("endpoint port %d out of range", e.Port),
		}
	}

	return nil
}

// HostHeader returns the value transmitted and signed as the Host header.
// The port is omitted when it is the scheme default so that the signed
// header always matches what the transport puts on the wire.
func (e Endpoint) HostHeader() string {
	switch {
	case e.Port == 0,
		e.Protocol == "http" && e.Port == 80,
		e.Protocol == "https" && e.Port == 443:
		return e.Host
	default:
		return fmt.Sprintf("%s:%d", e.Host, e.Port)
	}
}

// URL returns the base URL of the endpoint without any resource path.
func (e Endpoint) URL() *url.URL {
	return &url.URL{
		Scheme: e.Protocol,
		Host:   e.HostHeader(),
	}
}

// A Payload is the body of an outgoing request.
// It resolves exactly once into the full byte sequence to be sent,
// which both hashing and dispatch consume.
type Payload interface {
	Resolve() ([]byte, error)
}

// InlinePayload is a payload already held in memory.
type InlinePayload []byte

func (p InlinePayload) Resolve() ([]byte, error) { return p, nil }

// FilePayload is a payload read from a file.
// The file is fully consumed and the handle released during resolution,
// before the canonical request is finalised.
type FilePayload string

func (p FilePayload) Resolve() ([]byte, error) {
	b, err := os.ReadFile(string(p))
	if err != nil {
		return nil, &Error{
			Stage:   InvalidRequestSpec,
			Message: fmt.Sprintf("cannot read payload file %q", string(p)),
			Cause:   err,
		}
	}

	return b, nil
}

// guessContentType attempts to guess the MIME type of the payload head.
// It always returns a valid MIME type.
func guessContentType(head []byte) string {
	t, _ := filetype.Match(head)
	mt := t.MIME.Value

	if mt == "" {
		mt = "binary/octet-stream"
	}

	return mt
}

// A RequestSpec describes a single request against the service before
// signing. Bucket and Key, when present, are joined deterministically into
// the resource path. Query parameter encoding and ordering is handled by
// canonicalisation regardless of the order they were supplied in.
type RequestSpec struct {
	// Method is one of GET, PUT, POST, DELETE or HEAD, case-insensitive.
	Method string
	Bucket string
	Key    string
	// Query parameters, key unique. An empty value is still transmitted
	// and signed as "key=".
	Query map[string]string
	// Header holds additional request headers. Names are case-insensitive.
	Header http.Header
	// Payload is the optional request body.
	Payload Payload
	// SignPayload controls whether the payload hash is computed over the
	// body bytes or the unsigned payload sentinel is used instead.
	SignPayload bool
}

func validPathComponent(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

func (s *RequestSpec) Validate() *Error {
	switch strings.ToUpper(s.Method) {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodHead:
	default:
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: fmt.Sprintf("unsupported method %q", s.Method),
		}
	}

	if strings.Contains(s.Bucket, "/") {
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: "bucket name must not contain a path separator",
		}
	}

	if s.Key != "" && s.Bucket == "" {
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: "object key requires a bucket",
		}
	}

	if !validPathComponent(s.Bucket) || !validPathComponent(s.Key) {
		return &Error{
			Stage:   InvalidRequestSpec,
			Message: "bucket or key contains characters that cannot be represented in a URI path",
		}
	}

	return nil
}

// ResourcePath joins bucket and key into the request path.
// With no bucket the path is the service root.
func (s *RequestSpec) ResourcePath() string {
	if s.Bucket == "" {
		return "/"
	}

	if s.Key == "" {
		return "/" + s.Bucket
	}

	return "/" + s.Bucket + "/" + strings.TrimLeft(s.Key, "/")
}
