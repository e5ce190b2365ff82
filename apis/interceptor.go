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

package apis

import (
	"context"
	"reflect"
)

// Method identifies one method of a proxied type surface. Go method sets have
// no overloading, so Name is the routing key; Type is the receiver-less func
// signature used for argument/result shaping.
type Method struct {
	// Name is the exported method name.
	Name string
	// Type is the method signature as a func type, without the receiver.
	Type reflect.Type
	// Index is the method's position in Owner's method set, or -1 for
	// synthetic methods contributed by the engine (identity methods).
	Index int
	// Owner is the type the method was harvested from (shape base or a
	// contract interface), or nil for synthetic methods.
	Owner reflect.Type
}

// Invocation is a method call in flight through an advice chain. An advice
// receives the invocation and decides whether to continue the chain via
// Proceed, return results directly (short-circuiting everything after it),
// or return an error.
//
// An Invocation is owned by the call that created it. It must not be retained
// past the call's completion or shared across goroutines.
type Invocation interface {
	// Method returns the invoked method.
	Method() Method
	// Args returns the call arguments. Mutations are visible downstream.
	Args() []any
	// Target returns the acquired target instance, which may be nil.
	Target() any
	// TargetClass returns the target's runtime type, which may be nil.
	TargetClass() reflect.Type
	// Proxy returns the proxy the call arrived through.
	Proxy() any
	// Context returns the call context. When the configuration exposes the
	// proxy, the current proxy is retrievable from it via aopctx.
	Context() context.Context
	// Proceed runs the rest of the chain: the next advice if any remain,
	// otherwise the terminal target call.
	Proceed() ([]any, error)
}

// Interceptor is a unit of cross-cutting behavior executed around a method
// call. Implementations receive the invocation and must either call
// inv.Proceed (possibly wrapping it), or short-circuit by returning results
// without proceeding.
type Interceptor interface {
	Invoke(inv Invocation) ([]any, error)
}
