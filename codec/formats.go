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

package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

var (
	Gzip = &Codec{
		Name:     "gzip",
		Suffixes: []string{"gz", "gzip", "tgz"},
		Decode: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		Encode: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
	}

	Bzip2 = &Codec{
		Name:     "bzip2",
		Suffixes: []string{"bz", "bz2"},
		Decode: func(r io.Reader) (io.ReadCloser, error) {
			return bzip2.NewReader(r, nil)
		},
		Encode: func(w io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(w, nil)
		},
	}

	// LZ4 is decode-only.
	LZ4 = &Codec{
		Name:     "lz4",
		Suffixes: []string{"lz", "lz4"},
		Decode: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
	}

	XZ = &Codec{
		Name:     "xz",
		Suffixes: []string{"xz", "xz2", "lzma"},
		Decode: func(r io.Reader) (io.ReadCloser, error) {
			d, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(d), nil
		},
		Encode: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
	}

	Zstd = &Codec{
		Name:     "zstd",
		Suffixes: []string{"zst", "zstd"},
		Decode: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
		Encode: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	}
)

// Default is the registry of all supported formats.
var Default = NewRegistry(Gzip, Bzip2, LZ4, XZ, Zstd)
