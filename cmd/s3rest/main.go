package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/gotd/contrib/http_range"
	"github.com/jessevdk/go-flags"
	"github.com/relvacode/interrupt"
	s3rest "github.com/ugovaretto-codex/ceph-client"
	"go.uber.org/zap"
)

type Command struct {
	Method     string `short:"m" long:"method" env:"S3REST_METHOD" default:"get" description:"HTTP method: get, put, post, delete or head"`
	Bucket     string `short:"b" long:"bucket" description:"the S3 bucket name"`
	Key        string `short:"k" long:"key" description:"object key name"`
	Action     string `short:"a" long:"action" description:"subresource action name, sent as an empty-valued query parameter such as versions or notification"`
	ConfigFile string `short:"c" long:"config-file" env:"S3REST_CONFIG" required:"true" description:"JSON configuration file with access_key, secret_key, protocol, host and port"`

	Payload       string `short:"p" long:"payload" description:"request body"`
	PayloadIsFile bool   `short:"f" long:"payload-is-file" description:"interpret payload as a file name"`
	SignPayload   bool   `short:"s" long:"sign-payload" description:"include the payload hash in the request signature"`

	Parameters string `short:"t" long:"parameters" description:"';' separated list of key=value query parameters, use key='' for missing values"`
	Headers    string `short:"e" long:"headers" description:"';' separated list of key:value headers"`

	ContentFile string `short:"n" long:"save-content-to-file" description:"save response content to file"`
	Substitute  string `short:"x" long:"substitute-parameters" description:"';' separated list of key=value pairs substituted in the request body"`

	Range   string        `long:"range" description:"byte range for object reads, e.g. bytes=0-1023"`
	XPath   string        `long:"xpath" description:"XML path query evaluated against the response body, 'aws' prefix bound to the S3 namespace"`
	Presign time.Duration `long:"presign" description:"print a presigned URL valid for this duration instead of dispatching"`

	Proxy   string        `long:"proxy" env:"S3REST_PROXY" description:"transmit to this host:port while signing for the configured endpoint"`
	Region  string        `long:"region" description:"override the credential scope region"`
	Service string        `long:"service" description:"override the credential scope service"`
	Timeout time.Duration `long:"timeout" default:"30s" description:"request timeout"`
}

// splitPairs decodes a ';' separated list of pairs split on the first
// occurrence of delim. Surrounding quotes on a value are stripped so that
// key='' reads as an empty value.
func splitPairs(list string, delim string) (map[string]string, error) {
	if list == "" {
		return nil, nil
	}

	var pairs = make(map[string]string)
	for _, item := range strings.Split(list, ";") {
		if item == "" {
			continue
		}

		k, v, ok := strings.Cut(item, delim)
		if !ok || k == "" {
			return nil, fmt.Errorf("%q is not a %q separated pair", item, delim)
		}

		pairs[k] = trimQuotes(v)
	}

	return pairs, nil
}

func trimQuotes(v string) string {
	if len(v) >= 2 {
		if v[0] == '\'' && v[len(v)-1] == '\'' || v[0] == '"' && v[len(v)-1] == '"' {
			return v[1 : len(v)-1]
		}
	}

	return v
}

func (cmd *Command) requestSpec() (*s3rest.RequestSpec, error) {
	params, err := splitPairs(cmd.Parameters, "=")
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}

	headerPairs, err := splitPairs(cmd.Headers, ":")
	if err != nil {
		return nil, fmt.Errorf("headers: %w", err)
	}

	spec := &s3rest.RequestSpec{
		Method:      strings.ToUpper(cmd.Method),
		Bucket:      cmd.Bucket,
		Key:         cmd.Key,
		Query:       params,
		SignPayload: cmd.SignPayload,
	}

	if cmd.Action != "" {
		if spec.Query == nil {
			spec.Query = make(map[string]string)
		}
		spec.Query[cmd.Action] = ""
	}

	for k, v := range headerPairs {
		if spec.Header == nil {
			spec.Header = make(map[string][]string)
		}
		spec.Header[k] = []string{v}
	}

	if cmd.Range != "" {
		rangeValue := cmd.Range
		if !strings.HasPrefix(rangeValue, "bytes=") {
			rangeValue = "bytes=" + rangeValue
		}

		// Validate the range expression before it becomes a header.
		// The object size is unknown client side.
		_, err := http_range.ParseRange(rangeValue, math.MaxInt64)
		if err != nil {
			return nil, fmt.Errorf("range: %w", err)
		}

		if spec.Header == nil {
			spec.Header = make(map[string][]string)
		}
		spec.Header["Range"] = []string{rangeValue}
	}

	switch {
	case cmd.Payload == "":
	case cmd.PayloadIsFile:
		spec.Payload = s3rest.FilePayload(cmd.Payload)
	default:
		body := cmd.Payload

		subst, err := splitPairs(cmd.Substitute, "=")
		if err != nil {
			return nil, fmt.Errorf("substitute-parameters: %w", err)
		}
		for k, v := range subst {
			body = strings.ReplaceAll(body, k, v)
		}

		spec.Payload = s3rest.InlinePayload(body)
	}

	return spec, nil
}

func Main(log *zap.Logger) error {
	var cmd Command
	p := flags.NewParser(&cmd, flags.HelpFlag)

	_, err := p.Parse()
	if err != nil {
		return err
	}

	config, err := s3rest.LoadConfigFile(cmd.ConfigFile)
	if err != nil {
		return err
	}

	*config = config.Merge(s3rest.Config{
		Region:  cmd.Region,
		Service: cmd.Service,
	})

	spec, err := cmd.requestSpec()
	if err != nil {
		return err
	}

	client := config.Client(log)
	client.Proxy = cmd.Proxy

	if cmd.Presign > 0 {
		u, err := client.PresignURL(spec, cmd.Presign)
		if err != nil {
			return err
		}

		fmt.Println(u.String())
		return nil
	}

	ctx, cancel := context.WithTimeout(interrupt.Context(context.Background()), cmd.Timeout)
	defer cancel()

	response, err := client.Do(ctx, spec)
	if err != nil {
		return err
	}

	out := os.Stdout
	if response.StatusCode >= 300 {
		out = os.Stderr
	}

	fmt.Fprintf(out, "Response status: %d\n", response.StatusCode)
	fmt.Fprintf(out, "Response headers: %v\n", response.Header)

	if cmd.ContentFile != "" {
		if err := os.WriteFile(cmd.ContentFile, response.Body, 0o644); err != nil {
			return err
		}
	} else if len(response.Body) > 0 {
		fmt.Fprintf(out, "Response body: %s\n", response.Body)
	}

	if cmd.XPath != "" {
		values, err := response.XMLQuery(cmd.XPath)
		if err != nil {
			return err
		}

		for _, value := range values {
			fmt.Fprintln(out, value)
		}
	}

	return nil
}

func main() {
	cfg := zap.NewDevelopmentConfig()
	log, _ := cfg.Build()

	err := Main(log)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
