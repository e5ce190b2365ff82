/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package aopctx carries the "current proxy" through a call, for advised
// objects that need to invoke themselves with advice re-applied.
//
// The holder is a context.Context value rather than ambient global state:
// derivation scopes the published proxy to exactly one call, and because the
// parent context is immutable the previous value is restored on any exit
// path, including error unwind. Target methods taking a context.Context as
// their first parameter receive the derived context; advice reach it through
// Invocation.Context.
package aopctx

import (
	"context"
	"errors"
)

// ErrNoProxy is returned when no proxy is published on the context — the
// call did not come through a proxy, or the configuration does not set
// expose-proxy.
var ErrNoProxy = errors.New("aopx(aopctx): no current proxy — set ExposeProxy on the configuration")

type proxyKey struct{}

// WithCurrentProxy returns a context publishing proxy as the current proxy.
func WithCurrentProxy(ctx context.Context, proxy any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, proxyKey{}, proxy)
}

// CurrentProxy returns the proxy published on ctx.
func CurrentProxy(ctx context.Context) (any, error) {
	if ctx == nil {
		return nil, ErrNoProxy
	}
	if p := ctx.Value(proxyKey{}); p != nil {
		return p, nil
	}
	return nil, ErrNoProxy
}
