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

package objstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

type GCSOption func(*gcsOptions)

type gcsOptions struct {
	client  *storage.Client
	options []option.ClientOption
}

// WithGCSClient uses the provided client.
func WithGCSClient(client *storage.Client) GCSOption {
	return func(o *gcsOptions) {
		o.client = client
	}
}

// WithGCSClientOptions adds options used to create the client, e.g.
// option.WithCredentialsFile or option.WithEndpoint.
func WithGCSClientOptions(opts ...option.ClientOption) GCSOption {
	return func(o *gcsOptions) {
		o.options = append(o.options, opts...)
	}
}

// GCS is a Store backed by Google Cloud Storage.
type GCS struct {
	client *storage.Client
}

// NewGCS creates a new GCS store. Credentials are resolved using
// Application Default Credentials unless overridden by options.
func NewGCS(ctx context.Context, opts ...GCSOption) (*GCS, error) {
	o := &gcsOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		c, err := storage.NewClient(ctx, o.options...)
		if err != nil {
			return nil, errutil.NetworkError("init", "gs", err)
		}
		o.client = c
	}
	return &GCS{client: o.client}, nil
}

// Close releases the underlying client.
func (s *GCS) Close() error {
	return s.client.Close()
}

// Get implements the Store interface.
func (s *GCS) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, gcsError("get", bucket, key, err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, gcsError("get", bucket, key, err)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Put implements the Store interface.
func (s *GCS) Put(ctx context.Context, bucket, key string, r io.Reader) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return gcsError("put", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return gcsError("put", bucket, key, err)
	}
	return nil
}

// Head implements the Store interface.
func (s *GCS) Head(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	attrs, err := s.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, gcsError("head", bucket, key, err)
	}
	return &ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         attrs.Size,
		ContentType:  attrs.ContentType,
		ETag:         attrs.Etag,
		LastModified: attrs.Updated,
		Metadata:     attrs.Metadata,
	}, nil
}

// Exists implements the Store interface.
func (s *GCS) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.Head(ctx, bucket, key)
	if err == nil {
		return true, nil
	}
	if code, ok := errutil.StatusCode(err); ok && code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// List implements the Store interface.
func (s *GCS) List(ctx context.Context, bucket, prefix, delimiter string, dirsOnly bool) ([]string, error) {
	if dirsOnly && delimiter == "" {
		delimiter = "/"
	}
	var keys []string
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: delimiter})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, gcsError("list", bucket, prefix, err)
		}
		// Synthetic directory entries only have the Prefix field set.
		isDir := attrs.Name == "" && attrs.Prefix != ""
		switch {
		case dirsOnly && isDir:
			keys = append(keys, attrs.Prefix)
		case !dirsOnly && !isDir:
			keys = append(keys, attrs.Name)
		}
	}
	return keys, nil
}

// Copy implements the Store interface.
func (s *GCS) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	b := s.client.Bucket(bucket)
	if _, err := b.Object(dstKey).CopierFrom(b.Object(srcKey)).Run(ctx); err != nil {
		return gcsError("copy", bucket, srcKey, err)
	}
	return nil
}

// Delete implements the Store interface.
func (s *GCS) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return gcsError("delete", bucket, key, err)
	}
	return nil
}

func gcsError(op, bucket, key string, err error) error {
	var (
		code int
		gErr *googleapi.Error
	)
	switch {
	case errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		code = http.StatusNotFound
	case errors.As(err, &gErr):
		code = gErr.Code
	}
	return statusError(op, location("gs", bucket, key), code, err)
}
