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

package retry

import (
	"context"
	"time"
)

// Policy describes how a whole operation is retried. Attempts are always
// sequential and each one starts from scratch.
type Policy struct {
	// Retries is the number of additional attempts after the first failure.
	// A negative value retries until the context is done.
	Retries int

	// Delay is the pause between attempts. Zero means no backoff.
	Delay time.Duration

	// OnRetry, if set, is called after a failed attempt that will be
	// followed by another one. Attempts are numbered from 1.
	OnRetry func(attempt int, err error)
}

// Do calls f until it returns nil, the context is done or the retries are
// exhausted. The error of the last attempt is returned, or the context error
// if the context ended the loop.
func (p Policy) Do(ctx context.Context, f func(context.Context) error) (err error) {
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = f(ctx); err == nil {
			return nil
		}
		if p.Retries >= 0 && attempt > p.Retries {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if !p.wait(ctx) {
			return ctx.Err()
		}
	}
}

// wait pauses for the configured delay. It returns false if the context
// was done before the delay elapsed.
func (p Policy) wait(ctx context.Context) bool {
	if p.Delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Do is a shorthand for Policy{Retries: retries}.Do(ctx, f).
func Do(ctx context.Context, retries int, f func(context.Context) error) error {
	return Policy{Retries: retries}.Do(ctx, f)
}
