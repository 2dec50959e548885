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
	"os"
	"path/filepath"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/retry"
	"github.com/chronicleprotocol/go-streamio/transport"
)

// Download copies the raw bytes of the location into a local file. Parent
// directories are created as needed. The content is not decoded.
func (c *Client) Download(ctx context.Context, location, path string) error {
	loc := transport.Parse(location)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errutil.IOError("download", path, err)
	}
	n, err := c.fetch(ctx, loc, path)
	if err != nil {
		return err
	}
	c.log.Debug("Downloaded", "location", location, "path", path, "bytes", n)
	return nil
}

// DownloadWithRetry works like Download, but makes up to retries
// additional attempts if the download fails. Every attempt starts from
// the beginning. The error of the last attempt is returned.
func (c *Client) DownloadWithRetry(ctx context.Context, location, path string, retries int) error {
	if retries < 0 {
		retries = 0
	}
	p := retry.Policy{
		Retries: retries,
		OnRetry: func(attempt int, err error) {
			c.log.Warn("Download failed, retrying", "location", location, "attempt", attempt, "error", err)
		},
	}
	return p.Do(ctx, func(ctx context.Context) error {
		return c.Download(ctx, location, path)
	})
}
