package s3rest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/psanford/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigDocument = `{
  "access_key": "00000000000000000000000000000000",
  "secret_key": "11111111111111111111111111111111",
  "protocol": "http",
  "host": "localhost",
  "port": 8000
}`

func TestLoadConfig(t *testing.T) {
	rootFS := memfs.New()
	require.NoError(t, rootFS.WriteFile("s3-credentials.json", []byte(testConfigDocument), 0o644))

	config, err := LoadConfig(rootFS, "s3-credentials.json")
	require.NoError(t, err)

	assert.Equal(t, "00000000000000000000000000000000", config.AccessKey)
	assert.Equal(t, "11111111111111111111111111111111", config.SecretKey)
	assert.Equal(t, Endpoint{Protocol: "http", Host: "localhost", Port: 8000}, config.Endpoint())
}

func TestLoadConfig_MissingField(t *testing.T) {
	rootFS := memfs.New()
	require.NoError(t, rootFS.WriteFile("s3-credentials.json", []byte(`{"access_key": "a", "protocol": "http", "host": "localhost"}`), 0o644))

	_, err := LoadConfig(rootFS, "s3-credentials.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")
}

func TestLoadConfig_Malformed(t *testing.T) {
	rootFS := memfs.New()
	require.NoError(t, rootFS.WriteFile("s3-credentials.json", []byte("not json"), 0o644))

	_, err := LoadConfig(rootFS, "s3-credentials.json")
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "s3-credentials.json")
	require.NoError(t, os.WriteFile(name, []byte(testConfigDocument), 0o644))

	config, err := LoadConfigFile(name)
	require.NoError(t, err)
	assert.Equal(t, "localhost", config.Host)
}

func TestConfig_Merge(t *testing.T) {
	base := Config{
		AccessKey: "a",
		SecretKey: "s",
		Protocol:  "http",
		Host:      "localhost",
		Port:      8000,
	}

	merged := base.Merge(Config{Host: "s3.example.com", Port: 9000, Region: "eu-west-2"})

	assert.Equal(t, "s3.example.com", merged.Host)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "eu-west-2", merged.Region)

	// Unset override fields keep the base values
	assert.Equal(t, "a", merged.AccessKey)
	assert.Equal(t, "http", merged.Protocol)

	// The base is unchanged
	assert.Equal(t, "localhost", base.Host)
}

func TestConfig_Client(t *testing.T) {
	config := Config{
		AccessKey: "a",
		SecretKey: "s",
		Protocol:  "http",
		Host:      "localhost",
		Port:      8000,
		Region:    "eu-west-2",
	}

	client := config.Client(nil)
	assert.Equal(t, Endpoint{Protocol: "http", Host: "localhost", Port: 8000}, client.Endpoint)
	assert.Equal(t, Credentials{AccessKeyID: "a", SecretAccessKey: "s", Region: "eu-west-2"}, client.Credentials)
}
