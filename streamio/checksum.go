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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"strings"

	"github.com/defiweb/go-eth/types"
	"golang.org/x/crypto/sha3"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/transport"
)

// Algorithm is a digest algorithm.
type Algorithm string

const (
	SHA256    Algorithm = "sha256"
	Keccak256 Algorithm = "keccak256"
)

// ParseAlgorithm returns the algorithm with the given name. An empty name
// yields SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(name)); a {
	case "":
		return SHA256, nil
	case SHA256, Keccak256:
		return a, nil
	default:
		return "", errutil.NotSupported("digest algorithm %q", name)
	}
}

func (a Algorithm) hash() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case Keccak256:
		return sha3.NewLegacyKeccak256(), nil
	default:
		return nil, errutil.NotSupported("digest algorithm %q", string(a))
	}
}

// ErrChecksumMismatch is returned by verified streams whose content does
// not match the expected checksum.
var ErrChecksumMismatch = errors.New("streamio: checksum mismatch")

// Digest returns the hex encoded digest of the raw bytes of the location.
// The content is not decoded.
func (c *Client) Digest(ctx context.Context, location string, alg Algorithm) (string, error) {
	h, err := alg.hash()
	if err != nil {
		return "", err
	}
	r, err := c.OpenRaw(ctx, location)
	if err != nil {
		return "", err
	}
	defer r.Close()
	if _, err := io.Copy(h, r); err != nil {
		return "", errutil.IOError("digest", location, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// OpenVerified works like Open, but verifies the raw bytes against the
// expected hex encoded checksum. The verification happens when the raw
// source is exhausted; a mismatch is reported by Read instead of io.EOF.
func (c *Client) OpenVerified(ctx context.Context, location string, alg Algorithm, expected string) (io.ReadCloser, error) {
	h, err := alg.hash()
	if err != nil {
		return nil, err
	}
	sum, err := types.HashFromHex(expected, types.PadNone)
	if err != nil {
		return nil, errutil.IOError("verify", location, err)
	}
	return c.open(ctx, transport.Parse(location), func(r io.ReadCloser) io.ReadCloser {
		return &checksumReader{r: r, hash: h, checksum: sum, location: location}
	})
}

type checksumReader struct {
	r        io.ReadCloser
	hash     hash.Hash
	checksum types.Hash
	location string
}

func (c *checksumReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.hash.Write(b[:n])
	if errors.Is(err, io.EOF) && types.Hash(c.hash.Sum(nil)) != c.checksum {
		return n, errutil.IOError("verify", c.location, ErrChecksumMismatch)
	}
	return n, err
}

func (c *checksumReader) Close() error {
	return c.r.Close()
}
