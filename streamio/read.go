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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// ReadString returns the decoded content of the location as a string.
func (c *Client) ReadString(ctx context.Context, location string) (string, error) {
	r, err := c.Open(ctx, location)
	if err != nil {
		return "", err
	}
	defer r.Close()
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", errutil.IOError("read", location, err)
	}
	return b.String(), nil
}

// ReadLines returns an iterator over the lines of the decoded content.
// Line terminators ("\n" or "\r\n") are removed. Lines are read lazily;
// the stream is closed when the iteration ends or is stopped early. A read
// error is yielded once and ends the iteration.
func (c *Client) ReadLines(ctx context.Context, location string) (iter.Seq2[string, error], error) {
	r, err := c.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	return func(yield func(string, error) bool) {
		defer r.Close()
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 {
				line = strings.TrimSuffix(line, "\n")
				line = strings.TrimSuffix(line, "\r")
				if !yield(line, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", errutil.IOError("read", location, err))
				return
			}
		}
	}, nil
}

// ReadJSON decodes the JSON content of the location into v.
func (c *Client) ReadJSON(ctx context.Context, location string, v any) error {
	r, err := c.Open(ctx, location)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errutil.IOError("decode json", location, err)
	}
	return nil
}
