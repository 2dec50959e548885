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
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

const defaultFTPPort = "21"

type FTPOption func(*FTP)

// WithFTPTimeout sets the dial timeout.
func WithFTPTimeout(d time.Duration) FTPOption {
	return func(f *FTP) {
		f.timeout = d
	}
}

// FTP is the protocol for "ftp" locations. Credentials embedded in the
// location are used if present, otherwise the login is anonymous.
type FTP struct {
	timeout time.Duration
}

// NewFTP creates a new FTP protocol.
func NewFTP(opts ...FTPOption) *FTP {
	f := &FTP{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open implements the Protocol interface. The returned stream keeps the
// control connection open until it is closed.
func (f *FTP) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	u, err := url.Parse(loc.Raw)
	if err != nil {
		return nil, errutil.NetworkError("open", loc.Raw, err)
	}
	conn, err := f.dial(ctx, u)
	if err != nil {
		return nil, errutil.NetworkError("open", loc.Raw, err)
	}
	res, err := conn.Retr(u.Path)
	if err != nil {
		return nil, errutil.NetworkError("retr", loc.Raw, errutil.Append(err, conn.Quit()))
	}
	return &ftpReader{res: res, conn: conn}, nil
}

// Size implements the Protocol interface. It is not supported.
func (f *FTP) Size(_ context.Context, loc Location) (int64, error) {
	return -1, errutil.NotSupported("ftp content length: %s", loc.Raw)
}

// Exists implements the Protocol interface. It is not supported.
func (f *FTP) Exists(_ context.Context, loc Location) (bool, error) {
	return false, errutil.NotSupported("ftp existence check: %s", loc.Raw)
}

func (f *FTP) dial(ctx context.Context, u *url.URL) (*ftp.ServerConn, error) {
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), defaultFTPPort)
	}
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.timeout))
	if err != nil {
		return nil, err
	}
	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, errutil.Append(err, conn.Quit())
	}
	if err := conn.Type(ftp.TransferTypeBinary); err != nil {
		return nil, errutil.Append(err, conn.Quit())
	}
	return conn, nil
}

type ftpReader struct {
	res  *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpReader) Read(p []byte) (int, error) {
	return r.res.Read(p)
}

func (r *ftpReader) Close() error {
	return errutil.Append(r.res.Close(), r.conn.Quit())
}
