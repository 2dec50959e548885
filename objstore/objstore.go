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

// Package objstore provides object-storage clients addressed by bucket and
// key. Two backends are available: S3 (and S3-compatible services) and
// Google Cloud Storage.
//
// All remote failures are reported as network errors from the errutil
// package. When the service responded with a status code, it can be
// retrieved with errutil.StatusCode.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// Store is an object-storage client.
type Store interface {
	// Get returns the object content. The content is fully read into
	// memory before Get returns.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Put uploads the content of r as the object.
	Put(ctx context.Context, bucket, key string, r io.Reader) error

	// Head returns the object metadata.
	Head(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// Exists reports whether the object exists. A "not found" response
	// yields false, any other failure is returned as an error.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// List returns object keys starting with prefix. If dirsOnly is true,
	// only the common prefixes grouped by delimiter are returned.
	List(ctx context.Context, bucket, prefix, delimiter string, dirsOnly bool) ([]string, error)

	// Copy copies an object within a bucket.
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error

	// Delete removes the object.
	Delete(ctx context.Context, bucket, key string) error
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64 // -1 if unknown
	ContentType  string
	ETag         string
	LastModified time.Time
	Metadata     map[string]string
}

// URL is a parsed object location, e.g. "s3://bucket/path/to/key".
type URL struct {
	Scheme string
	Bucket string
	Key    string
}

// String implements the fmt.Stringer interface.
func (u URL) String() string {
	return u.Scheme + "://" + u.Bucket + "/" + u.Key
}

// ParseURL splits an object location into its scheme, bucket and key.
// Only the "s3" and "gs" schemes are accepted. The key may be empty.
func ParseURL(s string) (URL, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return URL{}, errInvalidURLFn(s, "missing scheme")
	}
	if scheme != "s3" && scheme != "gs" {
		return URL{}, errInvalidURLFn(s, "unsupported scheme "+scheme)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return URL{}, errInvalidURLFn(s, "missing bucket")
	}
	return URL{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

var ErrInvalidURL = errors.New("objstore: invalid object URL")

func errInvalidURLFn(url, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidURL, url, reason)
}

// statusError classifies a failed remote call. The status code, when
// known, is preserved so that callers can distinguish e.g. 404 from 403.
func statusError(op, location string, code int, err error) error {
	if code == 0 {
		return errutil.NetworkError(op, location, err)
	}
	return errutil.NetworkError(op, location, fmt.Errorf("%w: %w", &errutil.StatusError{Code: code}, err))
}

func location(scheme, bucket, key string) string {
	return URL{Scheme: scheme, Bucket: bucket, Key: key}.String()
}
