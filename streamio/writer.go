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
	"io"
	"os"
	"path/filepath"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/transport"
)

// Create returns a writer for a local file. Parent directories are
// created as needed. If the path has a known compression suffix, written
// bytes are compressed. Closing the writer flushes the encoder and closes
// the file.
//
// Remote locations are not supported.
func (c *Client) Create(location string) (io.WriteCloser, error) {
	loc := transport.Parse(location)
	if !loc.IsLocal() {
		return nil, errutil.NotSupported("writing to %s", location)
	}
	suffix := loc.Suffix()
	if _, err := c.codecs.EncoderFor(suffix); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(loc.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errutil.IOError("create", location, err)
		}
	}
	f, err := os.Create(loc.Path)
	if err != nil {
		return nil, errutil.IOError("create", location, err)
	}
	c.log.Debug("Creating", "location", location, "suffix", suffix)
	return c.codecs.NewWriter(suffix, f)
}
