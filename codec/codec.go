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

// Package codec maps file name suffixes to compression codecs.
//
// The set of codecs is fixed when a Registry is built. An unknown suffix
// is never an error: reads and writes pass the bytes through unmodified.
// A codec may be decode-only, in which case asking for its encoder yields
// a not-supported error.
package codec

import (
	"io"
	"strings"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// DecodeFunc creates a decompressing reader over r. Closing the returned
// reader releases the decoder only, not r.
type DecodeFunc func(r io.Reader) (io.ReadCloser, error)

// EncodeFunc creates a compressing writer over w. Closing the returned
// writer flushes the encoder only, it does not close w.
type EncodeFunc func(w io.Writer) (io.WriteCloser, error)

// Codec describes one compression format.
type Codec struct {
	Name     string
	Suffixes []string
	Decode   DecodeFunc
	Encode   EncodeFunc // nil for decode-only formats
}

// CanEncode reports whether the codec supports writing.
func (c *Codec) CanEncode() bool {
	return c.Encode != nil
}

// Passthrough is the identity codec used for unknown suffixes.
var Passthrough = &Codec{
	Name: "none",
	Decode: func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	},
	Encode: func(w io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{w}, nil
	},
}

// Registry is a suffix lookup table. It is safe for concurrent use since it
// is never modified after construction.
type Registry struct {
	codecs   []*Codec
	bySuffix map[string]*Codec
}

// NewRegistry builds a registry from the given codecs. Suffixes are matched
// case-insensitively; if two codecs claim the same suffix, the last wins.
func NewRegistry(codecs ...*Codec) *Registry {
	r := &Registry{bySuffix: make(map[string]*Codec)}
	for _, c := range codecs {
		r.codecs = append(r.codecs, c)
		for _, s := range c.Suffixes {
			r.bySuffix[strings.ToLower(s)] = c
		}
	}
	return r
}

// Codecs returns the registered codecs in registration order.
func (r *Registry) Codecs() []*Codec {
	return append([]*Codec(nil), r.codecs...)
}

// Lookup returns the codec registered for the suffix, or Passthrough.
func (r *Registry) Lookup(suffix string) *Codec {
	if c, ok := r.bySuffix[strings.ToLower(suffix)]; ok {
		return c
	}
	return Passthrough
}

// DecoderFor returns the decode function for the suffix. It never fails;
// unknown suffixes yield the identity decoder.
func (r *Registry) DecoderFor(suffix string) DecodeFunc {
	return r.Lookup(suffix).Decode
}

// EncoderFor returns the encode function for the suffix. Unknown suffixes
// yield the identity encoder. Decode-only codecs yield a not-supported
// error.
func (r *Registry) EncoderFor(suffix string) (EncodeFunc, error) {
	c := r.Lookup(suffix)
	if !c.CanEncode() {
		return nil, errutil.NotSupported("%s writer not supported", c.Name)
	}
	return c.Encode, nil
}

// NewReader wraps src with the decoder selected by suffix. The returned
// reader owns src and closes it. If the decoder cannot be created, src is
// closed before the error is returned.
func (r *Registry) NewReader(suffix string, src io.ReadCloser) (io.ReadCloser, error) {
	d, err := r.DecoderFor(suffix)(src)
	if err != nil {
		return nil, errutil.Append(errutil.IOError("decode", suffix, err), src.Close())
	}
	return &readCloser{Reader: d, closers: []io.Closer{d, src}}, nil
}

// NewWriter wraps dst with the encoder selected by suffix. The returned
// writer owns dst: closing it flushes the encoder and then closes dst. If
// the encoder cannot be created, dst is closed before the error is
// returned.
func (r *Registry) NewWriter(suffix string, dst io.WriteCloser) (io.WriteCloser, error) {
	enc, err := r.EncoderFor(suffix)
	if err != nil {
		return nil, errutil.Append(err, dst.Close())
	}
	w, err := enc(dst)
	if err != nil {
		return nil, errutil.Append(errutil.IOError("encode", suffix, err), dst.Close())
	}
	return &writeCloser{Writer: w, closers: []io.Closer{w, dst}}, nil
}

// Suffix returns the lower-cased text after the last dot of a location.
// For locations with a scheme, the query and fragment are ignored. It
// returns an empty string if there is no dot.
func Suffix(location string) string {
	if strings.Contains(location, "://") {
		if i := strings.IndexAny(location, "?#"); i >= 0 {
			location = location[:i]
		}
	}
	i := strings.LastIndexByte(location, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(location[i+1:])
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		err = errutil.Append(err, c.Close())
	}
	return err
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var err error
	for _, c := range w.closers {
		err = errutil.Append(err, c.Close())
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
