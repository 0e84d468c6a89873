package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/hyperhttp/client"
	"github.com/kbukum/hyperhttp/config"
	"github.com/kbukum/hyperhttp/logger"
	"github.com/kbukum/hyperhttp/version"
)

type rootOptions struct {
	configFile string
	baseURL    string
	method     string
	data       string
	headers    []string
	basicAuth  string
	token      string
	timeout    time.Duration
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "hyperhttp <path>",
		Short:   "Issue a request through the hyperhttp client adapter",
		Long:    "hyperhttp dispatches one HTTP request through the configured client\npipeline and prints the decoded response body.",
		Args:    cobra.ExactArgs(1),
		Version: version.String(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: discover config.yml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "base URL (overrides config)")
	flags.StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	flags.StringVarP(&opts.data, "data", "d", "", "request body (JSON passed through verbatim)")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "request header (key: value), repeatable")
	flags.StringVar(&opts.basicAuth, "basic", "", "basic auth credentials (user:password)")
	flags.StringVar(&opts.token, "token", "", "bearer token")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout (overrides config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each request to stderr")

	return cmd
}

func run(ctx context.Context, opts *rootOptions, path string) error {
	var cfg client.Config
	loadOpts := []config.Option{}
	if opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithFile(opts.configFile))
	}
	if err := config.Load(&cfg, loadOpts...); err != nil {
		return err
	}

	applyFlags(&cfg, opts)

	c, err := client.New(&cfg)
	if err != nil {
		return err
	}
	if opts.verbose {
		c.AttachLogger(logger.NewWithWriter(os.Stderr, "hyperhttp"))
	}

	resp, err := dispatch(ctx, c, opts, path)
	if err != nil {
		return err
	}

	return printResponse(resp)
}

// applyFlags merges command-line overrides into the loaded configuration.
func applyFlags(cfg *client.Config, opts *rootOptions) {
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.timeout > 0 {
		if cfg.Transport == nil {
			cfg.Transport = &client.TransportConfig{}
		}
		cfg.Transport.Timeout = opts.timeout
	}
	if opts.basicAuth != "" {
		user, pass, _ := strings.Cut(opts.basicAuth, ":")
		cfg.Auth = client.BasicAuth(user, pass)
	}
	if opts.token != "" {
		cfg.Auth = client.TokenAuth("", opts.token)
	}
	if len(opts.headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(opts.headers))
		}
		for _, h := range opts.headers {
			key, value, found := strings.Cut(h, ":")
			if found {
				cfg.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}
}

// dispatch routes the verb flag to the matching client operation.
func dispatch(ctx context.Context, c *client.Client, opts *rootOptions, path string) (*client.Response, error) {
	method := strings.ToUpper(opts.method)
	var body any
	if opts.data != "" {
		// Keep the payload verbatim; a -H Content-Type header decides how the
		// server reads it.
		body = []byte(opts.data)
	}

	switch method {
	case "GET":
		return c.Get(ctx, path)
	case "POST":
		return c.Post(ctx, path, body)
	case "PUT":
		return c.Put(ctx, path, body)
	case "DELETE":
		return c.Delete(ctx, path)
	case "HEAD":
		return c.Head(ctx, path)
	case "OPTIONS":
		return c.Options(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported method %q", opts.method)
	}
}

// printResponse writes the decoded body to stdout, re-marshaling structured
// values as indented JSON.
func printResponse(resp *client.Response) error {
	switch body := resp.Body.(type) {
	case string:
		fmt.Println(body)
	default:
		out, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	if resp.IsError() {
		return fmt.Errorf("HTTP %d", resp.Status)
	}
	return nil
}
