package s3rest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	minimumPresignExpires = time.Second
	maximumPresignExpires = time.Second * 604800
)

// SignAWSV4 computes AWS Signature Version 4 request signatures.
// The zero value signs with the current time.
type SignAWSV4 struct {
	// timeNow is a function that returns the current time.
	// Used for testing, if nil then time.Now is used.
	timeNow func() time.Time
}

func (s SignAWSV4) now() time.Time {
	if s.timeNow == nil {
		return time.Now()
	}
	return s.timeNow()
}

func (s SignAWSV4) computeStringToSign(at time.Time, credentials Credentials, canonicalRequest []byte) []byte {
	var b bytes.Buffer

	b.WriteString(awsSignatureVersionV4)
	b.WriteRune('\n')

	// timeStampISO8601Format
	b.WriteString(at.Format(amzDateTimeFormat))
	b.WriteRune('\n')

	// Scope
	b.WriteString(credentials.Scope(at))
	b.WriteRune('\n')

	// Hex(SHA256Hash(<CanonicalRequest>))
	h := sha256.New()
	h.Write(canonicalRequest)
	hex.NewEncoder(&b).Write(h.Sum(nil))

	return b.Bytes()
}

func checkSignable(r *http.Request, credentials Credentials) *Error {
	if credentials.AccessKeyID == "" || credentials.SecretAccessKey == "" {
		return &Error{
			Stage:   SigningError,
			Message: "incomplete credentials: both access key id and secret access key are required",
		}
	}

	if r.Host == "" && r.Header.Get("Host") == "" {
		return &Error{
			Stage:   SigningError,
			Message: "the host header is mandatory in the signed header set",
		}
	}

	return nil
}

// Sign computes the request signature over the given payload hash and
// attaches it as the Authorization header, together with the signing
// mandated x-amz-date and x-amz-content-sha256 headers.
// payloadHashHex is either the hex SHA256 of the exact body bytes or the
// unsigned payload sentinel.
// The request is signed for r.Host regardless of where it is later
// transmitted.
func (s SignAWSV4) Sign(r *http.Request, credentials Credentials, payloadHashHex string) error {
	if err := checkSignable(r, credentials); err != nil {
		return err
	}

	credentials = credentials.withDefaults()
	t := s.now().UTC()

	r.Header.Set(xAmzContentSha256, payloadHashHex)
	r.Header.Set(xAmzDate, t.Format(amzDateTimeFormat))

	var (
		signedHeaders    = signedHeaderNames(r.Header)
		canonicalRequest = awsV4CanonicalRequest(r, payloadHashHex, signedHeaders)
		signature        = sumHmacSha256(credentials.SigningKey(t), s.computeStringToSign(t, credentials, canonicalRequest))
	)

	r.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s,SignedHeaders=%s,Signature=%x",
		awsSignatureVersionV4,
		credentials.AccessKeyID,
		credentials.Scope(t),
		joinSignedHeaders(signedHeaders),
		signature,
	))

	return nil
}

// Presign places the signature and its supporting fields in the URL query
// instead of a header. The signed canonical form uses the unsigned payload
// sentinel and an expiry parameter; no content hash header is required.
// The same key derivation and HMAC machinery as Sign is reused.
func (s SignAWSV4) Presign(r *http.Request, credentials Credentials, expires time.Duration) error {
	if err := checkSignable(r, credentials); err != nil {
		return err
	}

	if expires < minimumPresignExpires || expires > maximumPresignExpires {
		return &Error{
			Stage:   SigningError,
			Message: fmt.Sprintf("presign expiry %s out of range [%s, %s]", expires, minimumPresignExpires, maximumPresignExpires),
		}
	}

	credentials = credentials.withDefaults()
	t := s.now().UTC()

	var signedHeaders = signedHeaderNames(r.Header)

	var q = r.URL.Query()
	q.Set(xAmzAlgorithm, awsSignatureVersionV4)
	q.Set(xAmzCredential, credentials.AccessKeyID+"/"+credentials.Scope(t))
	q.Set(xAmzDate, t.Format(amzDateTimeFormat))
	q.Set(xAmzExpires, strconv.Itoa(int(expires/time.Second)))
	q.Set(xAmzSignedHeaders, joinSignedHeaders(signedHeaders))
	r.URL.RawQuery = encodeQueryValues(q)

	var (
		canonicalRequest = awsV4CanonicalRequest(r, amzUnsignedPayload, signedHeaders)
		signature        = sumHmacSha256(credentials.SigningKey(t), s.computeStringToSign(t, credentials, canonicalRequest))
	)

	q.Set(xAmzSignature, hex.EncodeToString(signature))
	r.URL.RawQuery = encodeQueryValues(q)

	return nil
}

func joinSignedHeaders(signedHeaders []string) string {
	var b bytes.Buffer
	for i, hdr := range signedHeaders {
		if i > 0 {
			b.WriteRune(';')
		}
		b.WriteString(hdr)
	}
	return b.String()
}

func encodeQueryValues(q url.Values) string {
	// url.Values encodes a space as "+" which sigv4 does not permit
	return strings.ReplaceAll(q.Encode(), "+", "%20")
}
