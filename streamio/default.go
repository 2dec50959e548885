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
	"iter"
)

// Open calls Open on the default client.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return Default().Open(ctx, location)
}

// OpenRaw calls OpenRaw on the default client.
func OpenRaw(ctx context.Context, location string) (io.ReadCloser, error) {
	return Default().OpenRaw(ctx, location)
}

// OpenCached calls OpenCached on the default client.
func OpenCached(ctx context.Context, location, cacheDir string, opts ...CacheOption) (io.ReadCloser, error) {
	return Default().OpenCached(ctx, location, cacheDir, opts...)
}

// Create calls Create on the default client.
func Create(location string) (io.WriteCloser, error) {
	return Default().Create(location)
}

// ReadString calls ReadString on the default client.
func ReadString(ctx context.Context, location string) (string, error) {
	return Default().ReadString(ctx, location)
}

// ReadLines calls ReadLines on the default client.
func ReadLines(ctx context.Context, location string) (iter.Seq2[string, error], error) {
	return Default().ReadLines(ctx, location)
}

// ReadJSON calls ReadJSON on the default client.
func ReadJSON(ctx context.Context, location string, v any) error {
	return Default().ReadJSON(ctx, location, v)
}

// Download calls Download on the default client.
func Download(ctx context.Context, location, path string) error {
	return Default().Download(ctx, location, path)
}

// DownloadWithRetry calls DownloadWithRetry on the default client.
func DownloadWithRetry(ctx context.Context, location, path string, retries int) error {
	return Default().DownloadWithRetry(ctx, location, path, retries)
}

// Exists calls Exists on the default client.
func Exists(ctx context.Context, location string) (bool, error) {
	return Default().Exists(ctx, location)
}

// ContentLength calls ContentLength on the default client.
func ContentLength(ctx context.Context, location string) (int64, error) {
	return Default().ContentLength(ctx, location)
}
