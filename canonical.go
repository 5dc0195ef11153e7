package s3rest

import (
	"bytes"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Trim leading and trailing spaces and replace sequential spaces with one space, following Trimall()
// in http://docs.aws.amazon.com/general/latest/gr/sigv4-create-canonical-request.html
func signV4TrimAll(input string) string {
	// Compress adjacent spaces (a space is determined by
	// unicode.IsSpace() internally here) to one space and return
	return strings.Join(strings.Fields(input), " ")
}

// canonicalQuery encodes query parameters for both the canonical request
// and the transmitted URL: strict percent-encoding, keys sorted by their
// encoded form, an empty value encoded as "key=".
func canonicalQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	var values = make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}

	// url.Values.Encode sorts by key and percent-encodes both components.
	// A space is encoded as "+" which sigv4 does not permit.
	return strings.ReplaceAll(values.Encode(), "+", "%20")
}

// signedHeaderNames returns the sorted lower-cased names of the headers
// included in the signature: host plus every x-amz-* header present.
func signedHeaderNames(header http.Header) []string {
	var names = []string{"host"}
	for name := range header {
		if lower := strings.ToLower(name); strings.HasPrefix(lower, "x-amz-") {
			names = append(names, lower)
		}
	}

	sort.Strings(names)
	return names
}

// awsV4CanonicalRequest produces the canonical byte representation of the
// request that the signature is computed over. It is a pure function of
// the prepared request, payload hash and signed header set: supplying the
// same logical inputs in any order yields identical output.
func awsV4CanonicalRequest(r *http.Request, payloadHashHex string, signedHeaders []string) []byte {
	var b bytes.Buffer

	// HTTPMethod
	b.WriteString(r.Method)
	b.WriteRune('\n')

	// CanonicalURI
	b.WriteString(encodePath(r.URL.Path))
	b.WriteRune('\n')

	// CanonicalQuerystring
	// Query string must be decoded, and then re-encoded to sort the query keys.
	var urlQuery = r.URL.Query()

	// The signature itself is never part of the signature calculation
	urlQuery.Del(xAmzSignature)

	b.WriteString(strings.ReplaceAll(urlQuery.Encode(), "+", "%20"))
	b.WriteRune('\n')

	// CanonicalHeaders
	for _, hdr := range signedHeaders {
		hdrName := strings.ToLower(hdr)
		b.WriteString(hdrName)
		b.WriteRune(':')

		if hdrName == "host" {
			hdrValue := r.Header.Get("Host")
			if hdrValue == "" {
				hdrValue = r.Host
			}

			b.WriteString(hdrValue)
			b.WriteRune('\n')
			continue
		}

		for idx, v := range r.Header[textproto.CanonicalMIMEHeaderKey(hdrName)] {
			if idx > 0 {
				b.WriteByte(',')
			}
			b.WriteString(signV4TrimAll(v))
		}
		b.WriteRune('\n')
	}
	b.WriteRune('\n')

	// SignedHeaders
	for i, hdr := range signedHeaders {
		if i > 0 {
			b.WriteRune(';')
		}

		b.WriteString(strings.ToLower(hdr))
	}
	b.WriteRune('\n')

	// HashedPayload
	b.WriteString(payloadHashHex)

	return b.Bytes()
}
