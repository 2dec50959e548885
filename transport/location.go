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
	"path/filepath"
	"strings"

	"github.com/chronicleprotocol/go-streamio/codec"
)

// Location is a classified location string. A location without "://"
// is a local path, even if it contains colons.
type Location struct {
	Raw    string // the original string
	Scheme string // empty for local paths
	Path   string // everything after "://", or Raw for local paths
}

// Parse classifies a location. It does not validate or normalize it.
func Parse(location string) Location {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return Location{Raw: location, Path: location}
	}
	return Location{Raw: location, Scheme: scheme, Path: rest}
}

// IsLocal reports whether the location refers to the local filesystem.
func (l Location) IsLocal() bool {
	return l.Scheme == "" && l.Path == l.Raw
}

// Suffix returns the lower-cased name suffix used for codec selection.
func (l Location) Suffix() string {
	return codec.Suffix(l.Raw)
}

// Basename returns the last path element of the location. For remote
// locations, the query and fragment are dropped, and a location with a
// single element, such as "ftp://host", yields that element. The result
// is empty if the location ends with a separator.
func (l Location) Basename() string {
	if l.IsLocal() {
		if l.Raw == "" || strings.HasSuffix(l.Raw, string(filepath.Separator)) || strings.HasSuffix(l.Raw, "/") {
			return ""
		}
		return filepath.Base(l.Raw)
	}
	p := l.Path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// String implements the fmt.Stringer interface.
func (l Location) String() string {
	return l.Raw
}
