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
	"sync"

	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/objstore"
)

// StoreFunc creates an object store on first use.
type StoreFunc func(ctx context.Context) (objstore.Store, error)

// Object is the protocol for object-storage locations such as
// "s3://bucket/key". The store is created lazily so that credentials are
// only resolved when an object location is actually used.
type Object struct {
	newStore StoreFunc

	mu    sync.Mutex
	store objstore.Store
}

// NewObject creates a new object-storage protocol.
func NewObject(newStore StoreFunc) *Object {
	return &Object{newStore: newStore}
}

// NewObjectWithStore creates a new object-storage protocol using an
// existing store.
func NewObjectWithStore(store objstore.Store) *Object {
	return &Object{store: store}
}

// Store returns the underlying store, creating it if necessary. A failed
// creation is retried on the next call.
func (o *Object) Store(ctx context.Context) (objstore.Store, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.store != nil {
		return o.store, nil
	}
	s, err := o.newStore(ctx)
	if err != nil {
		return nil, err
	}
	o.store = s
	return s, nil
}

// Open implements the Protocol interface.
func (o *Object) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	s, u, err := o.resolve(ctx, "get", loc)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, u.Bucket, u.Key)
}

// Size implements the Protocol interface.
func (o *Object) Size(ctx context.Context, loc Location) (int64, error) {
	s, u, err := o.resolve(ctx, "head", loc)
	if err != nil {
		return -1, err
	}
	info, err := s.Head(ctx, u.Bucket, u.Key)
	if err != nil {
		return -1, err
	}
	return info.Size, nil
}

// Exists implements the Protocol interface.
func (o *Object) Exists(ctx context.Context, loc Location) (bool, error) {
	s, u, err := o.resolve(ctx, "head", loc)
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, u.Bucket, u.Key)
}

func (o *Object) resolve(ctx context.Context, op string, loc Location) (objstore.Store, objstore.URL, error) {
	u, err := objstore.ParseURL(loc.Raw)
	if err != nil {
		return nil, objstore.URL{}, errutil.NetworkError(op, loc.Raw, err)
	}
	s, err := o.Store(ctx)
	if err != nil {
		return nil, objstore.URL{}, err
	}
	return s, u, nil
}
