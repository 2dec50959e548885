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
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/transport"
)

type CacheOption func(*cacheOptions)

type cacheOptions struct {
	name  string
	force bool
}

// WithCacheName sets the name of the cache entry. By default, the last
// path element of the location is used.
func WithCacheName(name string) CacheOption {
	return func(o *cacheOptions) {
		o.name = name
	}
}

// WithCacheForce refreshes the cache entry even if it already exists.
func WithCacheForce(force bool) CacheOption {
	return func(o *cacheOptions) {
		o.force = force
	}
}

var errCacheNoName = errors.New("streamio.cache: unable to derive cache entry name")

// OpenCached returns a stream of the location content backed by a local
// cache entry in cacheDir. If the entry is missing, or the refresh is
// forced, the raw bytes of the location are stored first. The entry is
// then opened like any local file, so its own suffix decides the
// decoding.
//
// The entry is replaced atomically. If fetching fails, an existing entry
// is left untouched.
func (c *Client) OpenCached(ctx context.Context, location, cacheDir string, opts ...CacheOption) (io.ReadCloser, error) {
	o := &cacheOptions{}
	for _, opt := range opts {
		opt(o)
	}
	loc := transport.Parse(location)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, errutil.IOError("cache", cacheDir, err)
	}
	name := o.name
	if name == "" {
		name = loc.Basename()
	}
	if name == "" {
		return nil, errutil.IOError("cache", location, errCacheNoName)
	}
	path := filepath.Join(cacheDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errutil.IOError("cache", path, err)
	}
	entry := transport.Location{Raw: path, Path: path}
	if !o.force {
		if _, err := os.Stat(path); err == nil {
			c.log.Debug("Cache hit", "location", location, "path", path)
			return c.open(ctx, entry)
		}
	}
	c.log.Debug("Cache miss", "location", location, "path", path, "force", o.force)
	if _, err := c.fetch(ctx, loc, path); err != nil {
		return nil, err
	}
	return c.open(ctx, entry)
}

// fetch copies the raw bytes of loc into path. The file at path is
// replaced only after all bytes were written and synced.
func (c *Client) fetch(ctx context.Context, loc transport.Location, path string) (int64, error) {
	src, err := c.mux.Open(ctx, loc)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	var r io.Reader = src
	if !loc.IsLocal() {
		r = &remoteReader{r: src, loc: loc.Raw}
	}
	return writeFileAtomic(path, r)
}

// remoteReader classifies read failures of a remote source as network
// errors, so they are not mistaken for local write failures.
type remoteReader struct {
	r   io.Reader
	loc string
}

func (r *remoteReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = errutil.NetworkError("get", r.loc, err)
	}
	return n, err
}

func writeFileAtomic(path string, r io.Reader) (n int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, errutil.IOError("create", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if n, err = io.Copy(tmp, r); err != nil {
		return n, errutil.IOError("write", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return n, errutil.IOError("sync", path, err)
	}
	if err = tmp.Close(); err != nil {
		return n, errutil.IOError("close", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, errutil.IOError("rename", path, err)
	}
	return n, nil
}
