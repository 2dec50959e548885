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

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/objstore"
)

// Upload copies a local file to an object-storage location such as
// "s3://bucket/key". The file is uploaded as is, without compression.
func (c *Client) Upload(ctx context.Context, path, location string) error {
	u, err := objstore.ParseURL(location)
	if err != nil {
		return errutil.NetworkError("upload", location, err)
	}
	s, err := c.Store(ctx, u.Scheme)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return errutil.IOError("upload", path, err)
	}
	defer f.Close()
	c.log.Debug("Uploading", "path", path, "location", location)
	return s.Put(ctx, u.Bucket, u.Key, f)
}
