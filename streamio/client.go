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

package streamio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/chronicleprotocol/go-streamio/codec"
	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/objstore"
	"github.com/chronicleprotocol/go-streamio/transport"
)

type Option func(*Client)

// WithMux replaces the default set of protocols.
func WithMux(mux *transport.Mux) Option {
	return func(c *Client) {
		c.mux = mux
	}
}

// WithCodecs replaces the default codec registry.
func WithCodecs(codecs *codec.Registry) Option {
	return func(c *Client) {
		c.codecs = codecs
	}
}

// WithLogger sets the logger. By default, nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithHTTPOptions sets the options of the default HTTP protocol.
func WithHTTPOptions(opts ...transport.HTTPOption) Option {
	return func(c *Client) {
		c.httpOpts = append(c.httpOpts, opts...)
	}
}

// WithFTPOptions sets the options of the default FTP protocol.
func WithFTPOptions(opts ...transport.FTPOption) Option {
	return func(c *Client) {
		c.ftpOpts = append(c.ftpOpts, opts...)
	}
}

// WithS3Options sets the options used to create the S3 store.
func WithS3Options(opts ...objstore.S3Option) Option {
	return func(c *Client) {
		c.s3Opts = append(c.s3Opts, opts...)
	}
}

// WithGCSOptions sets the options used to create the GCS store.
func WithGCSOptions(opts ...objstore.GCSOption) Option {
	return func(c *Client) {
		c.gcsOpts = append(c.gcsOpts, opts...)
	}
}

// WithStore uses the given store for the object-storage scheme, e.g.
// "s3" or "gs", instead of creating one from the environment.
func WithStore(scheme string, store objstore.Store) Option {
	return func(c *Client) {
		if c.stores == nil {
			c.stores = make(map[string]objstore.Store)
		}
		c.stores[scheme] = store
	}
}

// Client opens streams for locations. It is safe for concurrent use.
type Client struct {
	mux    *transport.Mux
	codecs *codec.Registry
	log    *slog.Logger

	httpOpts []transport.HTTPOption
	ftpOpts  []transport.FTPOption
	s3Opts   []objstore.S3Option
	gcsOpts  []objstore.GCSOption
	stores   map[string]objstore.Store
}

// New creates a new Client.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.codecs == nil {
		c.codecs = codec.Default
	}
	if c.mux == nil {
		c.mux = c.defaultMux()
	}
	return c
}

func (c *Client) defaultMux() *transport.Mux {
	h := transport.NewHTTP(c.httpOpts...)
	return transport.NewMux(map[string]transport.Protocol{
		transport.LocalScheme: transport.NewFile(),
		"http":                h,
		"https":               h,
		"ftp":                 transport.NewFTP(c.ftpOpts...),
		"s3": c.objectProto("s3", func(ctx context.Context) (objstore.Store, error) {
			return objstore.NewS3(ctx, c.s3Opts...)
		}),
		"gs": c.objectProto("gs", func(ctx context.Context) (objstore.Store, error) {
			return objstore.NewGCS(ctx, c.gcsOpts...)
		}),
	})
}

func (c *Client) objectProto(scheme string, fn transport.StoreFunc) *transport.Object {
	if s, ok := c.stores[scheme]; ok {
		return transport.NewObjectWithStore(s)
	}
	return transport.NewObject(fn)
}

// Store returns the object store used for the given scheme.
func (c *Client) Store(ctx context.Context, scheme string) (objstore.Store, error) {
	p, err := c.mux.Protocol(transport.Location{Raw: scheme + "://", Scheme: scheme})
	if err != nil {
		return nil, err
	}
	o, ok := p.(*transport.Object)
	if !ok {
		return nil, errutil.NotSupported("%q is not an object-storage scheme", scheme)
	}
	return o.Store(ctx)
}

var defaultClient = sync.OnceValue(func() *Client { return New() })

// Default returns the client used by package level functions. It is
// created on the first call.
func Default() *Client {
	return defaultClient()
}
