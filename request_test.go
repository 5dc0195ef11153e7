package s3rest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSpec_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, spec := range []*RequestSpec{
			{Method: "GET"},
			{Method: "put", Bucket: "uv-bucket-3"},
			{Method: "DELETE", Bucket: "uv-bucket-3", Key: "dir/obj.txt"},
			{Method: "HEAD", Bucket: "uv-bucket-3", Key: "obj"},
		} {
			assert.Nil(t, spec.Validate(), "%+v", spec)
		}
	})

	t.Run("unsupported method", func(t *testing.T) {
		err := (&RequestSpec{Method: "PATCH"}).Validate()
		assert.ErrorIs(t, err, &Error{Stage: InvalidRequestSpec})
	})

	t.Run("bucket with separator", func(t *testing.T) {
		err := (&RequestSpec{Method: "GET", Bucket: "a/b"}).Validate()
		assert.ErrorIs(t, err, &Error{Stage: InvalidRequestSpec})
	})

	t.Run("key without bucket", func(t *testing.T) {
		err := (&RequestSpec{Method: "GET", Key: "obj"}).Validate()
		assert.ErrorIs(t, err, &Error{Stage: InvalidRequestSpec})
	})

	t.Run("invalid utf8 key", func(t *testing.T) {
		err := (&RequestSpec{Method: "GET", Bucket: "b", Key: string([]byte{0xff, 0xfe})}).Validate()
		assert.ErrorIs(t, err, &Error{Stage: InvalidRequestSpec})
	})
}

func TestRequestSpec_ResourcePath(t *testing.T) {
	assert.Equal(t, "/", (&RequestSpec{}).ResourcePath())
	assert.Equal(t, "/uv-bucket-3", (&RequestSpec{Bucket: "uv-bucket-3"}).ResourcePath())
	assert.Equal(t, "/uv-bucket-3/dir/obj.txt", (&RequestSpec{Bucket: "uv-bucket-3", Key: "dir/obj.txt"}).ResourcePath())
	assert.Equal(t, "/uv-bucket-3/obj", (&RequestSpec{Bucket: "uv-bucket-3", Key: "/obj"}).ResourcePath())
}

func TestPayload_Resolve(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		b, err := InlinePayload("hello").Resolve()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), b)
	})

	t.Run("file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "payload.xml")
		require.NoError(t, os.WriteFile(name, []byte("<Test/>"), 0o644))

		b, err := FilePayload(name).Resolve()
		require.NoError(t, err)
		assert.Equal(t, []byte("<Test/>"), b)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FilePayload(filepath.Join(t.TempDir(), "missing")).Resolve()
		assert.ErrorIs(t, err, &Error{Stage: InvalidRequestSpec})
	})
}

func Test_guessContentType(t *testing.T) {
	// PNG magic number
	assert.Equal(t, "image/png", guessContentType([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "binary/octet-stream", guessContentType([]byte("plain text")))
}

func TestEndpoint_HostHeader(t *testing.T) {
	assert.Equal(t, "localhost:8000", Endpoint{Protocol: "http", Host: "localhost", Port: 8000}.HostHeader())
	assert.Equal(t, "localhost", Endpoint{Protocol: "http", Host: "localhost", Port: 80}.HostHeader())
	assert.Equal(t, "s3.example.com", Endpoint{Protocol: "https", Host: "s3.example.com", Port: 443}.HostHeader())
	assert.Equal(t, "s3.example.com", Endpoint{Protocol: "https", Host: "s3.example.com"}.HostHeader())
}

func TestEndpoint_Validate(t *testing.T) {
	assert.Nil(t, Endpoint{Protocol: "https", Host: "s3.example.com"}.Validate())

	for _, endpoint := range []Endpoint{
		{Protocol: "ftp", Host: "s3.example.com"},
		{Protocol: "http"},
		{Protocol: "http", Host: "localhost", Port: -1},
		{Protocol: "http", Host: "localhost", Port: 70000},
	} {
		assert.ErrorIs(t, endpoint.Validate(), &Error{Stage: InvalidRequestSpec}, "%+v", endpoint)
	}
}
