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

// Package streamio opens byte streams for local paths and remote
// locations, transparently decoding compressed content based on the
// location name.
//
// A location without "://" is a local path. Remote locations are
// dispatched on their scheme: "http" and "https", "ftp", "s3" and "gs".
// The suffix after the last dot selects the codec, e.g. "gz", "bz2",
// "lz4", "xz" or "zst". Unknown suffixes pass the bytes through.
//
// Decorators are always applied in the same order: raw transport bytes are
// first verified (OpenVerified), then counted (OpenWithProgress) and only
// then decoded. The read-through cache stores the raw bytes.
//
// Example:
//
//	c := streamio.New(streamio.WithLogger(slog.Default()))
//
//	r, err := c.Open(ctx, "https://example.com/data/updates.json.gz")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//
//	lines, err := c.ReadLines(ctx, "s3://bucket/list.txt.bz2")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for line, err := range lines {
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(line)
//	}
//
// Package level functions use a default client created on first use.
package streamio
