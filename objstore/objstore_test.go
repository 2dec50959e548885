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
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

type responseError struct {
	code int
}

func (e *responseError) Error() string       { return fmt.Sprintf("response error: %d", e.code) }
func (e *responseError) HTTPStatusCode() int { return e.code }

// fakeS3 keeps objects in memory. Methods that are not overridden panic
// through the nil embedded interface.
type fakeS3 struct {
	S3API
	objects    map[string][]byte
	headErr    error
	copySource string
}

func newFakeS3(objects map[string]string) *fakeS3 {
	f := &fakeS3{objects: map[string][]byte{}}
	for k, v := range objects {
		f.objects[k] = []byte(v)
	}
	return f
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &responseError{code: 404}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String("text/plain"),
		ETag:          aws.String(`"etag"`),
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	delimiter := aws.ToString(in.Delimiter)
	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if delimiter != "" {
			if i := strings.Index(k[len(prefix):], delimiter); i >= 0 {
				p := k[:len(prefix)+i+len(delimiter)]
				if !seen[p] {
					seen[p] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(p)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.copySource = aws.ToString(in.CopySource)
	_, src, _ := strings.Cut(f.copySource, "/")
	b, ok := f.objects[src]
	if !ok {
		return nil, &responseError{code: 404}
	}
	f.objects[aws.ToString(in.Key)] = b
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3(t *testing.T, f *fakeS3) *S3 {
	s, err := NewS3(context.Background(), WithS3Client(f))
	require.NoError(t, err)
	return s
}

func TestParseURL(t *testing.T) {
	tc := []struct {
		url     string
		want    URL
		wantErr bool
	}{
		{url: "s3://test-bucket/test-path/test-file.txt", want: URL{Scheme: "s3", Bucket: "test-bucket", Key: "test-path/test-file.txt"}},
		{url: "gs://bucket/a/b/c.gz", want: URL{Scheme: "gs", Bucket: "bucket", Key: "a/b/c.gz"}},
		{url: "s3://bucket", want: URL{Scheme: "s3", Bucket: "bucket"}},
		{url: "http://test-bucket/test-path/test-file.txt", wantErr: true},
		{url: "s3:///key", wantErr: true},
		{url: "bucket/key", wantErr: true},
	}
	for _, tt := range tc {
		t.Run(tt.url, func(t *testing.T) {
			u, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestS3Exists(t *testing.T) {
	ctx := context.Background()
	tc := []struct {
		name     string
		key      string
		headErr  error
		want     bool
		wantCode int
	}{
		{name: "exists", key: "file.txt", want: true},
		{name: "not found type", key: "missing.txt", want: false},
		{name: "not found status", key: "file.txt", headErr: &responseError{code: 404}, want: false},
		{name: "forbidden", key: "file.txt", headErr: &responseError{code: 403}, wantCode: 403},
		{name: "server error", key: "file.txt", headErr: &responseError{code: 500}, wantCode: 500},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeS3(map[string]string{"file.txt": "content"})
			f.headErr = tt.headErr
			ok, err := newTestS3(t, f).Exists(ctx, "bucket", tt.key)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.True(t, errutil.IsNetwork(err))
				code, ok := errutil.StatusCode(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestS3GetHead(t *testing.T) {
	ctx := context.Background()
	s := newTestS3(t, newFakeS3(map[string]string{"dir/file.txt": "content"}))

	r, err := s.Get(ctx, "bucket", "dir/file.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "content", string(b))

	info, err := s.Head(ctx, "bucket", "dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size)
	assert.Equal(t, "etag", info.ETag)
	assert.Equal(t, "text/plain", info.ContentType)

	_, err = s.Get(ctx, "bucket", "missing")
	require.Error(t, err)
	assert.True(t, errutil.IsNetwork(err))
	assert.Contains(t, err.Error(), "s3://bucket/missing")
}

func TestS3PutCopyDelete(t *testing.T) {
	ctx := context.Background()
	f := newFakeS3(nil)
	s := newTestS3(t, f)

	require.NoError(t, s.Put(ctx, "bucket", "a.txt", strings.NewReader("hello")))
	assert.Equal(t, "hello", string(f.objects["a.txt"]))

	require.NoError(t, s.Copy(ctx, "bucket", "a.txt", "b.txt"))
	assert.Equal(t, "bucket/a.txt", f.copySource)
	assert.Equal(t, "hello", string(f.objects["b.txt"]))

	require.NoError(t, s.Delete(ctx, "bucket", "a.txt"))
	ok, err := s.Exists(ctx, "bucket", "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3List(t *testing.T) {
	ctx := context.Background()
	s := newTestS3(t, newFakeS3(map[string]string{
		"data/a.txt":      "",
		"data/b.txt":      "",
		"data/sub/c.txt":  "",
		"data/sub2/d.txt": "",
		"other/e.txt":     "",
	}))
	tc := []struct {
		name      string
		prefix    string
		delimiter string
		dirsOnly  bool
		want      []string
	}{
		{name: "recursive", prefix: "data/", want: []string{"data/a.txt", "data/b.txt", "data/sub/c.txt", "data/sub2/d.txt"}},
		{name: "delimited", prefix: "data/", delimiter: "/", want: []string{"data/a.txt", "data/b.txt"}},
		{name: "dirs", prefix: "data/", dirsOnly: true, want: []string{"data/sub/", "data/sub2/"}},
		{name: "empty", prefix: "none/"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := s.List(ctx, "bucket", tt.prefix, tt.delimiter, tt.dirsOnly)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestGCSError(t *testing.T) {
	tc := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "object not exist", err: storage.ErrObjectNotExist, wantCode: 404},
		{name: "bucket not exist", err: storage.ErrBucketNotExist, wantCode: 404},
		{name: "api error", err: &googleapi.Error{Code: 403}, wantCode: 403},
		{name: "other", err: errors.New("connection reset")},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := gcsError("head", "bucket", "key", tt.err)
			assert.True(t, errutil.IsNetwork(err))
			assert.ErrorIs(t, err, tt.err)
			code, ok := errutil.StatusCode(err)
			assert.Equal(t, tt.wantCode != 0, ok)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, err.Error(), "gs://bucket/key")
		})
	}
}
