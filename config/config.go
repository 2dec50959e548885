// Copyright (C) 2021-2025 Chronicle Labs, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads client settings from an HCL file.
//
// Example:
//
//	streamio {
//	  user_agent       = "my-app/1.0"
//	  timeout          = "30s"
//	  cache_dir        = "/var/cache/my-app"
//	  download_retries = 3
//	  headers = {
//	    Authorization = "Bearer ${env("API_TOKEN")}"
//	  }
//	}
//
//	s3 {
//	  region     = "us-east-1"
//	  endpoint   = env("AWS_ENDPOINT", "")
//	  path_style = true
//	}
//
// The env function returns the value of an environment variable or the
// optional default if the variable is not set.
package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty/function"
	"google.golang.org/api/option"

	"github.com/chronicleprotocol/go-streamio/objstore"
	"github.com/chronicleprotocol/go-streamio/streamio"
	"github.com/chronicleprotocol/go-streamio/transport"
)

type Config struct {
	Client *Client `hcl:"streamio,block"`
	S3     *S3     `hcl:"s3,block"`
	GCS    *GCS    `hcl:"gcs,block"`
}

type Client struct {
	UserAgent          string            `hcl:"user_agent,optional"`
	Timeout            string            `hcl:"timeout,optional"`
	AcceptInvalidCerts bool              `hcl:"accept_invalid_certs,optional"`
	Headers            map[string]string `hcl:"headers,optional"`
	CacheDir           string            `hcl:"cache_dir,optional"`
	DownloadRetries    int               `hcl:"download_retries,optional"`
}

type S3 struct {
	Region          string `hcl:"region,optional"`
	Endpoint        string `hcl:"endpoint,optional"`
	PathStyle       bool   `hcl:"path_style,optional"`
	AccessKeyID     string `hcl:"access_key_id,optional"`
	SecretAccessKey string `hcl:"secret_access_key,optional"`
}

type GCS struct {
	CredentialsFile string `hcl:"credentials_file,optional"`
	Endpoint        string `hcl:"endpoint,optional"`
	Anonymous       bool   `hcl:"anonymous,optional"`
}

// Load reads the configuration file. The file must have the ".hcl"
// extension.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errConfigFn(err)
	}
	return Parse(path, src)
}

// Parse decodes the configuration from src. The filename is used in
// diagnostics and to select the syntax.
func Parse(filename string, src []byte) (*Config, error) {
	var cfg Config
	ctx := &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": Env(),
		},
	}
	if err := hclsimple.Decode(filename, src, ctx, &cfg); err != nil {
		return nil, errConfigFn(err)
	}
	if err := cfg.validate(); err != nil {
		return nil, errConfigFn(err)
	}
	return &cfg, nil
}

// LoadEnv loads environment variables from the given dotenv files, or
// from ".env" if none are given. Variables that are already set are not
// overridden. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errConfigFn(err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Client == nil {
		return nil
	}
	if c.Client.Timeout != "" {
		if _, err := time.ParseDuration(c.Client.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	if c.Client.DownloadRetries < 0 {
		return fmt.Errorf("download_retries must not be negative")
	}
	return nil
}

// CacheDir returns the configured cache directory or an empty string.
func (c *Config) CacheDir() string {
	if c.Client == nil {
		return ""
	}
	return c.Client.CacheDir
}

// DownloadRetries returns the configured number of download retries.
func (c *Config) DownloadRetries() int {
	if c.Client == nil {
		return 0
	}
	return c.Client.DownloadRetries
}

// ClientOptions returns the options for streamio.New described by the
// configuration.
func (c *Config) ClientOptions() []streamio.Option {
	var opts []streamio.Option
	if cc := c.Client; cc != nil {
		var hopts []transport.HTTPOption
		if cc.UserAgent != "" {
			hopts = append(hopts, transport.WithUserAgent(cc.UserAgent))
		}
		if len(cc.Headers) > 0 {
			h := make(http.Header, len(cc.Headers))
			for k, v := range cc.Headers {
				h.Set(k, v)
			}
			hopts = append(hopts, transport.WithHeaders(h))
		}
		// The timeout is validated by Parse.
		timeout, _ := time.ParseDuration(cc.Timeout)
		if cc.AcceptInvalidCerts {
			hopts = append(hopts, transport.WithHTTPClient(&http.Client{
				Transport: transport.NewTransport(true),
				Timeout:   timeout,
			}))
		} else if timeout > 0 {
			hopts = append(hopts, transport.WithTimeout(timeout))
		}
		if timeout > 0 {
			opts = append(opts, streamio.WithFTPOptions(transport.WithFTPTimeout(timeout)))
		}
		if len(hopts) > 0 {
			opts = append(opts, streamio.WithHTTPOptions(hopts...))
		}
	}
	if s := c.S3; s != nil {
		var sopts []objstore.S3Option
		if s.Region != "" {
			sopts = append(sopts, objstore.WithS3Region(s.Region))
		}
		if s.Endpoint != "" {
			sopts = append(sopts, objstore.WithS3Endpoint(s.Endpoint))
		}
		if s.PathStyle {
			sopts = append(sopts, objstore.WithS3PathStyle(true))
		}
		if s.AccessKeyID != "" {
			sopts = append(sopts, objstore.WithS3Credentials(s.AccessKeyID, s.SecretAccessKey))
		}
		opts = append(opts, streamio.WithS3Options(sopts...))
	}
	if g := c.GCS; g != nil {
		var copts []option.ClientOption
		if g.CredentialsFile != "" {
			copts = append(copts, option.WithCredentialsFile(g.CredentialsFile))
		}
		if g.Endpoint != "" {
			copts = append(copts, option.WithEndpoint(g.Endpoint))
		}
		if g.Anonymous {
			copts = append(copts, option.WithoutAuthentication())
		}
		opts = append(opts, streamio.WithGCSOptions(objstore.WithGCSClientOptions(copts...)))
	}
	return opts
}

func errConfigFn(err error) error {
	return fmt.Errorf("config: %w", err)
}
