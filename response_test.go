package s3rest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_XMLQuery(t *testing.T) {
	t.Run("bucket names in document order", func(t *testing.T) {
		response := &Response{
			StatusCode: http.StatusOK,
			Body:       []byte(testListBucketsBody),
		}

		names, err := response.XMLQuery(".//aws:Bucket/aws:Name")
		require.NoError(t, err)
		assert.Equal(t, []string{"uv-bucket-1", "uv-bucket-3"}, names)
	})

	t.Run("no matching nodes", func(t *testing.T) {
		response := &Response{Body: []byte(testListBucketsBody)}

		values, err := response.XMLQuery(".//aws:Owner/aws:DisplayName")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("malformed body", func(t *testing.T) {
		response := &Response{Body: []byte("<ListAllMyBucketsResult><Buckets>")}

		values, err := response.XMLQuery(".//aws:Bucket/aws:Name")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("empty body", func(t *testing.T) {
		response := &Response{}

		values, err := response.XMLQuery(".//aws:Bucket/aws:Name")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("invalid expression", func(t *testing.T) {
		response := &Response{Body: []byte(testListBucketsBody)}

		_, err := response.XMLQuery(".//aws:Bucket[")
		assert.ErrorIs(t, err, &Error{Stage: QueryError})
	})

	t.Run("invalid expression does not invalidate the response", func(t *testing.T) {
		response := &Response{Body: []byte(testListBucketsBody)}

		_, err := response.XMLQuery(".//aws:Bucket[")
		require.Error(t, err)

		names, err := response.XMLQuery(".//aws:Bucket/aws:Name")
		require.NoError(t, err)
		assert.Equal(t, []string{"uv-bucket-1", "uv-bucket-3"}, names)
	})
}

func TestResponse_XMLQueryNS(t *testing.T) {
	response := &Response{Body: []byte(testListBucketsBody)}

	names, err := response.XMLQueryNS(".//s3:Bucket/s3:Name", map[string]string{"s3": S3XMLNamespace})
	require.NoError(t, err)
	assert.Equal(t, []string{"uv-bucket-1", "uv-bucket-3"}, names)
}

func TestResponse_SelectHeaders(t *testing.T) {
	t.Run("subset preserving requested order", func(t *testing.T) {
		header := make(http.Header)
		header.Set("ETag", `"9b2cf535f27731c974343645a3985328"`)
		header.Set("Content-Type", "application/xml")

		response := &Response{Header: header}

		selected := response.SelectHeaders("ETag", "x-amz-request-id")
		assert.Equal(t, []HeaderValue{
			{Name: "ETag", Value: `"9b2cf535f27731c974343645a3985328"`},
		}, selected)
	})

	t.Run("case insensitive lookup", func(t *testing.T) {
		header := make(http.Header)
		header.Set("x-amz-request-id", "tx000001")

		response := &Response{Header: header}

		selected := response.SelectHeaders("X-AMZ-REQUEST-ID")
		assert.Equal(t, []HeaderValue{
			{Name: "X-AMZ-REQUEST-ID", Value: "tx000001"},
		}, selected)
	})

	t.Run("no headers", func(t *testing.T) {
		response := &Response{}
		assert.Empty(t, response.SelectHeaders("ETag"))
	})
}
