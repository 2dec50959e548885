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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicleprotocol/go-streamio/streamio"
)

const testContent = "OneIO test file.\nThis is a test.\n"

func writeGzip(t *testing.T, path string) {
	w, err := streamio.Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte(testContent))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt.gz")
	writeGzip(t, path)

	out, err := execute(t, path)
	require.NoError(t, err)
	assert.Equal(t, testContent, out)

	out, err = execute(t, "--stats", path)
	require.NoError(t, err)
	assert.Equal(t, "lines: \t 2\nchars: \t 31\n", out)
}

func TestOutfile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test.txt.gz")
	dst := filepath.Join(dir, "out", "test.txt.bz2")
	writeGzip(t, src)

	_, err := execute(t, "-o", dst, src)
	require.NoError(t, err)

	s, err := streamio.ReadString(t.Context(), dst)
	require.NoError(t, err)
	assert.Equal(t, testContent, s)
}

func TestDownload(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test.txt.gz")
	dst := filepath.Join(dir, "copy", "test.txt.gz")
	writeGzip(t, src)

	out, err := execute(t, "--download", "-o", dst, src)
	require.NoError(t, err)
	assert.Contains(t, out, "file successfully downloaded to "+dst)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test.txt.gz")
	cache := filepath.Join(dir, "cache")
	writeGzip(t, src)

	out, err := execute(t, "--cache-dir", cache, "--cache-file", "entry.gz", src)
	require.NoError(t, err)
	assert.Equal(t, testContent, out)
	assert.FileExists(t, filepath.Join(cache, "entry.gz"))
}

func TestCacheFromConfig(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "test.txt.gz")
	cache := filepath.Join(dir, "cache")
	cfg := filepath.Join(dir, "streamio.hcl")
	writeGzip(t, src)
	require.NoError(t, os.WriteFile(cfg, []byte("streamio {\n  cache_dir = \""+filepath.ToSlash(cache)+"\"\n}\n"), 0o600))

	out, err := execute(t, "--config", cfg, src)
	require.NoError(t, err)
	assert.Equal(t, testContent, out)
	assert.FileExists(t, filepath.Join(cache, "test.txt.gz"))
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	out, err := execute(t, "digest", path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824\n", out)

	out, err = execute(t, "digest", "-a", "keccak256", path)
	require.NoError(t, err)
	assert.Equal(t, "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8\n", out)

	_, err = execute(t, "digest", "-a", "md5", path)
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "cannot open"))

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.hcl"), "file.txt")
	assert.Error(t, err)

	_, err = execute(t, "s3", "list", "http://bucket/prefix")
	assert.Error(t, err)
}
