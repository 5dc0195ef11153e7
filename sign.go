package s3rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	amzDateTimeFormat = "20060102T150405Z"
	amzDateFormat     = "20060102"

	awsSignatureVersionV4 = "AWS4-HMAC-SHA256"

	amzUnsignedPayload = "UNSIGNED-PAYLOAD"

	xAmzAlgorithm     = "X-Amz-Algorithm"
	xAmzCredential    = "X-Amz-Credential"
	xAmzDate          = "X-Amz-Date"
	xAmzContentSha256 = "X-Amz-Content-Sha256"
	xAmzExpires       = "X-Amz-Expires"
	xAmzSignedHeaders = "X-Amz-SignedHeaders"
	xAmzSignature     = "X-Amz-Signature"
)

const (
	// DefaultRegion is the region used when Credentials does not specify one.
	DefaultRegion = "us-east-1"
	// DefaultService is the signing service identifier for object storage.
	DefaultService = "s3"
)

// Credentials identify the caller to the object storage service.
// The secret key is used only as the root of the signing key chain and
// never appears in any canonical or logged representation.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	// Region of the credential scope. Defaults to DefaultRegion.
	Region string
	// Service of the credential scope. Defaults to DefaultService.
	Service string
}

func (c Credentials) withDefaults() Credentials {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
	return c
}

// Scope returns the credential scope for the given signing date,
// <date>/<region>/<service>/aws4_request.
func (c Credentials) Scope(at time.Time) string {
	c = c.withDefaults()

	var b strings.Builder
	b.WriteString(at.UTC().Format(amzDateFormat))
	b.WriteRune('/')
	b.WriteString(c.Region)
	b.WriteRune('/')
	b.WriteString(c.Service)
	b.WriteString("/aws4_request")

	return b.String()
}

// SigningKey derives the date, region and service scoped signing key from
// the secret key through the fixed four stage HMAC chain.
// It is a pure function of its inputs; a verifying party re-deriving the
// key from the same credentials and date obtains byte identical output.
func (c Credentials) SigningKey(at time.Time) []byte {
	c = c.withDefaults()

	var signed = sumHmacSha256([]byte("AWS4"+c.SecretAccessKey), at.UTC().AppendFormat(nil, amzDateFormat))
	signed = sumHmacSha256(signed, []byte(c.Region))
	signed = sumHmacSha256(signed, []byte(c.Service))
	signed = sumHmacSha256(signed, []byte("aws4_request"))

	return signed
}

func sumHmacSha256(secret, data []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(data)

	return h.Sum(nil)
}

func sha256Hex(data []byte) string {
	h := sha256.New()
	h.Write(data)

	return hex.EncodeToString(h.Sum(nil))
}

// encodePath percent-encodes a URI path for the canonical request,
// leaving only unreserved characters and the path separator intact.
func encodePath(pathName string) string {
	var encodedPathname strings.Builder
	for _, s := range pathName {
		if 'A' <= s && s <= 'Z' || 'a' <= s && s <= 'z' || '0' <= s && s <= '9' { // §2.3 Unreserved characters (mark)
			encodedPathname.WriteRune(s)
			continue
		}
		switch s {
		case '-', '_', '.', '~', '/': // §2.3 Unreserved characters (mark)
			encodedPathname.WriteRune(s)
			continue
		default:
			l := utf8.RuneLen(s)
			if l < 0 {
				// if utf8 cannot convert return the same string as is
				return pathName
			}
			u := make([]byte, l)
			utf8.EncodeRune(u, s)
			for _, r := range u {
				hexEncoded := hex.EncodeToString([]byte{r})
				encodedPathname.WriteString("%" + strings.ToUpper(hexEncoded))
			}
		}
	}
	return encodedPathname.String()
}
