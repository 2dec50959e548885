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
	"io"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/transport"
)

// decorator wraps a raw source. It takes ownership of r.
type decorator func(r io.ReadCloser) io.ReadCloser

// OpenRaw returns the bytes of the location exactly as delivered by the
// transport, without decoding.
func (c *Client) OpenRaw(ctx context.Context, location string) (io.ReadCloser, error) {
	loc := transport.Parse(location)
	c.log.Debug("Opening raw source", "location", location, "scheme", loc.Scheme)
	return c.mux.Open(ctx, loc)
}

// Open returns a stream of the location content. If the location name has
// a known compression suffix, the content is decoded.
func (c *Client) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return c.open(ctx, transport.Parse(location))
}

// OpenWithProgress works like Open, but calls fn after every read of the
// raw source with the cumulative number of raw bytes read and the total
// size. It also returns the total size, or -1 if it is unknown. In that
// case fn receives 0 as the total.
//
// A failed size lookup does not prevent the read.
func (c *Client) OpenWithProgress(ctx context.Context, location string, fn ProgressFunc) (io.ReadCloser, int64, error) {
	loc := transport.Parse(location)
	total, err := c.mux.Size(ctx, loc)
	if err != nil {
		c.log.Debug("Unable to determine content length", "location", location, "error", err)
		total = -1
	}
	r, err := c.open(ctx, loc, progressDecorator(fn, total))
	if err != nil {
		return nil, -1, err
	}
	return r, total, nil
}

// Exists reports whether the location exists.
func (c *Client) Exists(ctx context.Context, location string) (bool, error) {
	return c.mux.Exists(ctx, transport.Parse(location))
}

// ContentLength returns the raw size of the location in bytes. If the
// transport cannot tell the size, a not-supported error is returned.
func (c *Client) ContentLength(ctx context.Context, location string) (int64, error) {
	size, err := c.mux.Size(ctx, transport.Parse(location))
	if err != nil {
		return -1, err
	}
	if size < 0 {
		return -1, errutil.NotSupported("content length unknown: %s", location)
	}
	return size, nil
}

// open runs the read pipeline: raw source, decorators in the given order,
// then the decoder. On failure, everything opened so far is closed.
func (c *Client) open(ctx context.Context, loc transport.Location, decorators ...decorator) (io.ReadCloser, error) {
	c.log.Debug("Opening", "location", loc.Raw, "scheme", loc.Scheme, "suffix", loc.Suffix())
	r, err := c.mux.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	for _, d := range decorators {
		r = d(r)
	}
	return c.codecs.NewReader(loc.Suffix(), r)
}
