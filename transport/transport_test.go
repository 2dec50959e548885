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
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/objstore"
)

func TestParse(t *testing.T) {
	tc := []struct {
		location   string
		wantScheme string
		wantPath   string
		wantLocal  bool
		wantSuffix string
		wantBase   string
	}{
		{location: "data/file.txt.gz", wantPath: "data/file.txt.gz", wantLocal: true, wantSuffix: "gz", wantBase: "file.txt.gz"},
		{location: "C:\\data\\file.bz2", wantPath: "C:\\data\\file.bz2", wantLocal: true, wantSuffix: "bz2", wantBase: filepath.Base("C:\\data\\file.bz2")},
		{location: "a:b:c", wantPath: "a:b:c", wantLocal: true, wantSuffix: "", wantBase: "a:b:c"},
		{location: "https://host/dir/file.json?x=1", wantScheme: "https", wantPath: "host/dir/file.json?x=1", wantSuffix: "json", wantBase: "file.json"},
		{location: "s3://bucket/key.zst", wantScheme: "s3", wantPath: "bucket/key.zst", wantSuffix: "zst", wantBase: "key.zst"},
		{location: "ftp://host", wantScheme: "ftp", wantPath: "host", wantBase: "host"},
		{location: "foo://a://b", wantScheme: "foo", wantPath: "a://b", wantBase: "b"},
		{location: "dir/", wantPath: "dir/", wantLocal: true, wantBase: ""},
	}
	for _, tt := range tc {
		t.Run(tt.location, func(t *testing.T) {
			l := Parse(tt.location)
			assert.Equal(t, tt.location, l.Raw)
			assert.Equal(t, tt.wantScheme, l.Scheme)
			assert.Equal(t, tt.wantPath, l.Path)
			assert.Equal(t, tt.wantLocal, l.IsLocal())
			assert.Equal(t, tt.wantSuffix, l.Suffix())
			assert.Equal(t, tt.wantBase, l.Basename())
		})
	}
}

func TestFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
	missing := Parse(filepath.Join(dir, "missing.txt"))
	f := NewFile()

	r, err := f.Open(ctx, Parse(path))
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "content", string(b))

	size, err := f.Size(ctx, Parse(path))
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	ok, err := f.Exists(ctx, Parse(path))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Exists(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.Open(ctx, missing)
	assert.True(t, errutil.IsIO(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = f.Size(ctx, missing)
	assert.True(t, errutil.IsIO(err))
}

func testHTTPServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file.txt":
			w.Header().Set("Content-Length", "12")
			w.WriteHeader(http.StatusOK)
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte("test content"))
			}
		case "/nolength":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusOK)
				return
			}
			_, _ = w.Write([]byte("x"))
		case "/headers":
			_, _ = io.WriteString(w, r.Header.Get("User-Agent")+"|"+r.Header.Get("X-Token"))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP(t *testing.T) {
	ctx := context.Background()
	srv := testHTTPServer(t)
	h := NewHTTP(WithHTTPClient(srv.Client()))

	t.Run("open", func(t *testing.T) {
		r, err := h.Open(ctx, Parse(srv.URL+"/file.txt"))
		require.NoError(t, err)
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "test content", string(b))
	})
	t.Run("open not found", func(t *testing.T) {
		_, err := h.Open(ctx, Parse(srv.URL+"/missing"))
		require.Error(t, err)
		assert.True(t, errutil.IsNetwork(err))
		code, ok := errutil.StatusCode(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, code)
	})
	t.Run("size", func(t *testing.T) {
		size, err := h.Size(ctx, Parse(srv.URL+"/file.txt"))
		require.NoError(t, err)
		assert.Equal(t, int64(12), size)
	})
	t.Run("size unknown", func(t *testing.T) {
		size, err := h.Size(ctx, Parse(srv.URL+"/nolength"))
		require.NoError(t, err)
		assert.Equal(t, int64(-1), size)
	})
	t.Run("size error", func(t *testing.T) {
		_, err := h.Size(ctx, Parse(srv.URL+"/forbidden"))
		assert.True(t, errutil.IsNetwork(err))
	})
	t.Run("exists", func(t *testing.T) {
		ok, err := h.Exists(ctx, Parse(srv.URL+"/file.txt"))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = h.Exists(ctx, Parse(srv.URL+"/missing"))
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = h.Exists(ctx, Parse(srv.URL+"/forbidden"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("exists unreachable", func(t *testing.T) {
		_, err := h.Exists(ctx, Parse("http://127.0.0.1:1/file.txt"))
		assert.True(t, errutil.IsNetwork(err))
	})
}

func TestHTTPHeaders(t *testing.T) {
	ctx := context.Background()
	srv := testHTTPServer(t)
	tc := []struct {
		name string
		opts []HTTPOption
		want string
	}{
		{name: "default", want: DefaultUserAgent + "|"},
		{name: "custom agent", opts: []HTTPOption{WithUserAgent("agent/1.0")}, want: "agent/1.0|"},
		{name: "header", opts: []HTTPOption{WithHeader("X-Token", "secret")}, want: DefaultUserAgent + "|secret"},
		{name: "headers", opts: []HTTPOption{WithHeaders(http.Header{"User-Agent": {"ua"}, "X-Token": {"t"}})}, want: "ua|t"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHTTP(append([]HTTPOption{WithHTTPClient(srv.Client())}, tt.opts...)...)
			r, err := h.Open(ctx, Parse(srv.URL+"/headers"))
			require.NoError(t, err)
			defer r.Close()
			b, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestFTPUnsupported(t *testing.T) {
	ctx := context.Background()
	f := NewFTP()
	_, err := f.Size(ctx, Parse("ftp://host/file"))
	assert.True(t, errutil.IsNotSupported(err))
	_, err = f.Exists(ctx, Parse("ftp://host/file"))
	assert.True(t, errutil.IsNotSupported(err))
}

type memStore struct {
	objstore.Store
	objects map[string]string
}

func (m *memStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	v, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errutil.NetworkError("get", key, &errutil.StatusError{Code: 404})
	}
	return io.NopCloser(strings.NewReader(v)), nil
}

func (m *memStore) Head(_ context.Context, bucket, key string) (*objstore.ObjectInfo, error) {
	v, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errutil.NetworkError("head", key, &errutil.StatusError{Code: 404})
	}
	return &objstore.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(v))}, nil
}

func (m *memStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	_, ok := m.objects[bucket+"/"+key]
	return ok, nil
}

func TestObject(t *testing.T) {
	ctx := context.Background()
	calls := 0
	o := NewObject(func(context.Context) (objstore.Store, error) {
		calls++
		return &memStore{objects: map[string]string{"bucket/dir/key.txt": "object"}}, nil
	})

	r, err := o.Open(ctx, Parse("s3://bucket/dir/key.txt"))
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "object", string(b))

	size, err := o.Size(ctx, Parse("s3://bucket/dir/key.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	ok, err := o.Exists(ctx, Parse("s3://bucket/missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = o.Open(ctx, Parse("s3:///key"))
	assert.True(t, errutil.IsNetwork(err))

	assert.Equal(t, 1, calls)
}

func TestMux(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0o600))

	m := NewMux(map[string]Protocol{
		LocalScheme: NewFile(),
		"s3":        NewObjectWithStore(&memStore{objects: map[string]string{"b/k": "remote"}}),
	})

	read := func(location string) (string, error) {
		r, err := m.Open(ctx, Parse(location))
		if err != nil {
			return "", err
		}
		defer r.Close()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(r)
		return buf.String(), err
	}

	s, err := read(path)
	require.NoError(t, err)
	assert.Equal(t, "local", s)

	s, err = read("s3://b/k")
	require.NoError(t, err)
	assert.Equal(t, "remote", s)

	for _, location := range []string{"sftp://host/file", "file:///tmp/x", "://x"} {
		_, err = read(location)
		assert.True(t, errutil.IsNotSupported(err), location)
		_, err = m.Size(ctx, Parse(location))
		assert.True(t, errutil.IsNotSupported(err), location)
		_, err = m.Exists(ctx, Parse(location))
		assert.True(t, errutil.IsNotSupported(err), location)
	}
}

func TestEnsureDefaultTransport(t *testing.T) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []*http.Transport
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr := EnsureDefaultTransport()
			mu.Lock()
			got = append(got, tr)
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, got, 8)
	for _, tr := range got {
		assert.NotNil(t, tr)
		assert.Same(t, got[0], tr)
	}
	assert.Same(t, got[0], EnsureDefaultTransport())
}

func TestEnsureDefaultTransportKeepsEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STREAMIO_TRANSPORT_TEST=1\n"), 0o600))
	t.Chdir(dir)

	prev := defaultTransport
	defaultTransportOnce = sync.Once{}
	t.Cleanup(func() {
		defaultTransport = prev
	})

	assert.NotNil(t, EnsureDefaultTransport())
	_, ok := os.LookupEnv("STREAMIO_TRANSPORT_TEST")
	assert.False(t, ok)
}

func TestNewTransport(t *testing.T) {
	assert.True(t, NewTransport(true).TLSClientConfig.InsecureSkipVerify)
	tr := NewTransport(false)
	assert.False(t, tr.TLSClientConfig != nil && tr.TLSClientConfig.InsecureSkipVerify)
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "yes", "Y", "y", "1", " true "} {
		assert.True(t, EnvBool(v), v)
	}
	for _, v := range []string{"", "false", "0", "no", "n", "on"} {
		assert.False(t, EnvBool(v), v)
	}
}
