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

import "io"

// ProgressFunc receives the cumulative number of raw bytes read and the
// total size, which is 0 if unknown.
type ProgressFunc func(read, total int64)

func progressDecorator(fn ProgressFunc, total int64) decorator {
	if total < 0 {
		total = 0
	}
	return func(r io.ReadCloser) io.ReadCloser {
		return &progressReader{r: r, fn: fn, total: total}
	}
}

// progressReader reports the number of bytes read from the underlying
// reader. Reads that return no data, including the final EOF, are not
// reported.
type progressReader struct {
	r     io.ReadCloser
	fn    ProgressFunc
	read  int64
	total int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.fn != nil {
			p.fn(p.read, p.total)
		}
	}
	return n, err
}

func (p *progressReader) Close() error {
	return p.r.Close()
}
