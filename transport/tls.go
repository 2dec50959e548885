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
	"crypto/tls"
	"net/http"
	"os"
	"strings"
	"sync"
)

// AcceptInvalidCertsEnv is the environment variable that disables TLS
// certificate verification when set to "true", "yes", "y" or "1".
const AcceptInvalidCertsEnv = "STREAMIO_ACCEPT_INVALID_CERTS"

var (
	defaultTransport     *http.Transport
	defaultTransportOnce sync.Once
)

// EnsureDefaultTransport returns the shared HTTP transport used by remote
// protocols. The certificate verification toggle is read from the
// environment on the first call. Subsequent and concurrent calls return
// the same transport. It never fails.
//
// The environment is not modified. Applications that keep settings in a
// ".env" file load it themselves, see config.LoadEnv.
func EnsureDefaultTransport() *http.Transport {
	defaultTransportOnce.Do(func() {
		defaultTransport = NewTransport(EnvBool(os.Getenv(AcceptInvalidCertsEnv)))
	})
	return defaultTransport
}

// NewTransport returns a copy of the standard HTTP transport, optionally
// with certificate verification disabled.
func NewTransport(acceptInvalidCerts bool) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if acceptInvalidCerts {
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		t.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}
	return t
}

// EnvBool parses a boolean environment value. It accepts "true", "yes",
// "y" and "1" in any letter case.
func EnvBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
