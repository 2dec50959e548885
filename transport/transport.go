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

// Package transport opens raw byte sources for classified locations.
//
// A Protocol handles one or more location schemes. The Mux dispatches on
// the scheme of a location and never inspects its name suffix, so the
// bytes returned are always exactly what the transport delivered.
package transport

import (
	"context"
	"io"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// Protocol provides access to locations of a given scheme.
type Protocol interface {
	// Open returns the raw bytes of the location.
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)

	// Size returns the content length of the location or -1 if the
	// transport cannot tell it.
	Size(ctx context.Context, loc Location) (int64, error)

	// Exists reports whether the location exists.
	Exists(ctx context.Context, loc Location) (bool, error)
}

// Mux dispatches to protocols based on the location scheme. Local paths
// use the protocol registered under LocalScheme.
type Mux struct {
	ps map[string]Protocol
}

// LocalScheme is the key under which the local file protocol is
// registered.
const LocalScheme = ""

// NewMux creates a new Mux. The map must not be modified afterwards.
func NewMux(ps map[string]Protocol) *Mux {
	return &Mux{ps: ps}
}

// Protocol returns the protocol for the location. Unknown schemes yield a
// not-supported error.
func (m *Mux) Protocol(loc Location) (Protocol, error) {
	switch {
	case loc.IsLocal():
		if p, ok := m.ps[LocalScheme]; ok {
			return p, nil
		}
	case loc.Scheme != "":
		if p, ok := m.ps[loc.Scheme]; ok {
			return p, nil
		}
	}
	return nil, errMuxUnknownSchemeFn(loc)
}

// Open implements the Protocol interface.
func (m *Mux) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	p, err := m.Protocol(loc)
	if err != nil {
		return nil, err
	}
	return p.Open(ctx, loc)
}

// Size implements the Protocol interface.
func (m *Mux) Size(ctx context.Context, loc Location) (int64, error) {
	p, err := m.Protocol(loc)
	if err != nil {
		return -1, err
	}
	return p.Size(ctx, loc)
}

// Exists implements the Protocol interface.
func (m *Mux) Exists(ctx context.Context, loc Location) (bool, error) {
	p, err := m.Protocol(loc)
	if err != nil {
		return false, err
	}
	return p.Exists(ctx, loc)
}

func errMuxUnknownSchemeFn(loc Location) error {
	return errutil.NotSupported("unknown scheme %q: %s", loc.Scheme, loc.Raw)
}
