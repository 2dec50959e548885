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

package transport

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// File is the local filesystem protocol.
type File struct{}

// NewFile returns the local filesystem protocol.
func NewFile() *File {
	return &File{}
}

// Open implements the Protocol interface.
func (*File) Open(_ context.Context, loc Location) (io.ReadCloser, error) {
	f, err := os.Open(loc.Path)
	if err != nil {
		return nil, errutil.IOError("open", loc.Raw, err)
	}
	return f, nil
}

// Size implements the Protocol interface.
func (*File) Size(_ context.Context, loc Location) (int64, error) {
	fi, err := os.Stat(loc.Path)
	if err != nil {
		return -1, errutil.IOError("stat", loc.Raw, err)
	}
	return fi.Size(), nil
}

// Exists implements the Protocol interface. Only a missing file yields
// false without an error.
func (*File) Exists(_ context.Context, loc Location) (bool, error) {
	_, err := os.Stat(loc.Path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errutil.IOError("stat", loc.Raw, err)
	}
}
