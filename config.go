package s3rest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Config is the flat key/value credentials and endpoint document consumed
// before engine invocation.
type Config struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Protocol  string `json:"protocol"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Region    string `json:"region,omitempty"`
	Service   string `json:"service,omitempty"`
}

// LoadConfig reads a JSON configuration document from the given filesystem.
func LoadConfig(fsys fs.FS, name string) (*Config, error) {
	r, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}

	defer r.Close()

	var config Config
	err = json.NewDecoder(r).Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("configuration %s: %w", name, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFile is LoadConfig for a single path on the host filesystem.
func LoadConfigFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return LoadConfig(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}

// Merge overlays every non-zero field of override on top of c.
// Merging happens before engine invocation; the engine itself never
// mutates configuration.
func (c Config) Merge(override Config) Config {
	if override.AccessKey != "" {
		c.AccessKey = override.AccessKey
	}
	if override.SecretKey != "" {
		c.SecretKey = override.SecretKey
	}
	if override.Protocol != "" {
		c.Protocol = override.Protocol
	}
	if override.Host != "" {
		c.Host = override.Host
	}
	if override.Port != 0 {
		c.Port = override.Port
	}
	if override.Region != "" {
		c.Region = override.Region
	}
	if override.Service != "" {
		c.Service = override.Service
	}

	return c
}

func (c Config) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"access_key", c.AccessKey},
		{"secret_key", c.SecretKey},
		{"protocol", c.Protocol},
		{"host", c.Host},
	} {
		if field.value == "" {
			return fmt.Errorf("configuration: required field %q is missing", field.name)
		}
	}

	return nil
}

// Endpoint returns the network location described by the configuration.
func (c Config) Endpoint() Endpoint {
	return Endpoint{
		Protocol: c.Protocol,
		Host:     c.Host,
		Port:     c.Port,
	}
}

// Credentials returns the signing credentials described by the configuration.
func (c Config) Credentials() Credentials {
	return Credentials{
		AccessKeyID:     c.AccessKey,
		SecretAccessKey: c.SecretKey,
		Region:          c.Region,
		Service:         c.Service,
	}
}

// Client constructs a ready to use Client from the configuration.
func (c Config) Client(log *zap.Logger) *Client {
	return &Client{
		Endpoint:    c.Endpoint(),
		Credentials: c.Credentials(),
		Log:         log,
	}
}
