package s3rest

import (
	"bytes"
	"fmt"
	"net/http"
	"net/textproto"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// S3XMLNamespace is the default XML namespace used by S3 compatible
// services and bound to the "aws" prefix in XMLQuery expressions.
const S3XMLNamespace = "http://s3.amazonaws.com/doc/2006-03-01/"

// A Response is the structured result of one dispatch attempt.
// The engine holds no reference to it after returning.
type Response struct {
	StatusCode int
	// Header keys are case-insensitive through SelectHeaders.
	Header http.Header
	// Body holds the raw response bytes, unconditionally available.
	Body []byte

	parseOnce sync.Once
	document  *xmlquery.Node
}

// xmlDocument parses the body on first use.
// A body that is not well-formed XML yields a nil document, not an error.
func (r *Response) xmlDocument() *xmlquery.Node {
	r.parseOnce.Do(func() {
		doc, err := xmlquery.Parse(bytes.NewReader(r.Body))
		if err != nil {
			return
		}
		r.document = doc
	})

	return r.document
}

// XMLQuery evaluates an XPath expression against the response body with
// the "aws" prefix bound to S3XMLNamespace, returning the ordered text
// values of matching elements.
// A malformed body or no matching nodes produces an empty sequence; only a
// syntactically invalid expression fails, with QueryError.
func (r *Response) XMLQuery(expr string) ([]string, error) {
	return r.XMLQueryNS(expr, map[string]string{"aws": S3XMLNamespace})
}

// XMLQueryNS is XMLQuery with explicit namespace prefix bindings.
func (r *Response) XMLQueryNS(expr string, namespaces map[string]string) ([]string, error) {
	compiled, err := xpath.CompileWithNS(expr, namespaces)
	if err != nil {
		return nil, &Error{
			Stage:   QueryError,
			Message: fmt.Sprintf("invalid XML path expression %q", expr),
			Cause:   err,
		}
	}

	doc := r.xmlDocument()
	if doc == nil {
		return nil, nil
	}

	nodes := xmlquery.QuerySelectorAll(doc, compiled)
	if len(nodes) == 0 {
		return nil, nil
	}

	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		values = append(values, node.InnerText())
	}

	return values, nil
}

// A HeaderValue is one response header selected by SelectHeaders.
type HeaderValue struct {
	Name  string
	Value string
}

// SelectHeaders returns the subset of the requested headers present in the
// response, preserving the caller's requested order. Lookup is
// case-insensitive; absent headers produce no entry.
func (r *Response) SelectHeaders(names ...string) []HeaderValue {
	if len(r.Header) == 0 {
		return nil
	}

	var selected []HeaderValue
	for _, name := range names {
		values, ok := r.Header[textproto.CanonicalMIMEHeaderKey(name)]
		if !ok || len(values) == 0 {
			continue
		}

		selected = append(selected, HeaderValue{
			Name:  name,
			Value: values[0],
		})
	}

	return selected
}
