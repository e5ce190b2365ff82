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

// Package invocation walks one method call through its advice chain to the
// terminal target call.
package invocation

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/aopx/aopctx"
	"dirpx.dev/aopx/apis"
	uref "dirpx.dev/aopx/utils/reflect"
)

// ErrFatalReturn signals a signature-contract violation: an absent value
// produced for a result type that cannot hold nil. Never wrapped as an
// undeclared error; never retried.
var ErrFatalReturn = errors.New("aopx(invocation): nil result does not match non-nilable return type")

// UndeclaredError wraps an error produced by advice or the target on a
// method whose signature declares no error result, preserving the
// signature-level contract at the proxy boundary.
type UndeclaredError struct {
	// Method is the invoked method's name.
	Method string
	// Err is the undeclared error.
	Err error
}

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("aopx(invocation): undeclared error from %s: %v", e.Method, e.Err)
}

func (e *UndeclaredError) Unwrap() error { return e.Err }

// Invoker is an optional specialized terminal-call path, pre-resolved at
// proxy-build time for static targets. The chain composes it instead of
// inheriting an overridable joinpoint hook.
type Invoker func(ctx context.Context, target any, args []any) ([]any, error)

// Chain is the runtime cursor over an advice list plus the terminal target
// call. Lifecycle: pending (cursor 0) → advancing through each interceptor →
// completed or failed. An interceptor continues the chain by calling
// Proceed, short-circuits by returning without proceeding, or fails by
// returning an error, which unwinds through every already-entered
// interceptor.
//
// A Chain is owned exclusively by the call that created it: never shared
// across goroutines, never retained past the call's completion.
type Chain struct {
	ctx          context.Context
	proxy        any
	target       any
	m            apis.Method
	args         []any
	targetClass  reflect.Type
	interceptors []apis.Interceptor
	cursor       int
	fast         Invoker
}

var _ apis.Invocation = (*Chain)(nil)

// New builds a chain for one call. fast may be nil, in which case the
// terminal call resolves the target method reflectively.
func New(ctx context.Context, proxy, target any, m apis.Method, args []any,
	targetClass reflect.Type, interceptors []apis.Interceptor, fast Invoker) *Chain {

	if ctx == nil {
		ctx = context.Background()
	}
	return &Chain{
		ctx:          ctx,
		proxy:        proxy,
		target:       target,
		m:            m,
		args:         args,
		targetClass:  targetClass,
		interceptors: interceptors,
		fast:         fast,
	}
}

// Method returns the invoked method.
func (c *Chain) Method() apis.Method { return c.m }

// Args returns the call arguments. Mutations are visible downstream.
func (c *Chain) Args() []any { return c.args }

// Target returns the acquired target instance, which may be nil.
func (c *Chain) Target() any { return c.target }

// TargetClass returns the target's runtime type, which may be nil.
func (c *Chain) TargetClass() reflect.Type { return c.targetClass }

// Proxy returns the proxy the call arrived through.
func (c *Chain) Proxy() any { return c.proxy }

// Context returns the call context.
func (c *Chain) Context() context.Context { return c.ctx }

// Proceed runs the rest of the chain: the next interceptor while any
// remain, then the terminal target call. Errors surfacing from a method that
// declares no error result are wrapped as UndeclaredError; engine taxonomy
// errors pass unwrapped, and panics are never recovered.
func (c *Chain) Proceed() ([]any, error) {
	if c.cursor < len(c.interceptors) {
		ic := c.interceptors[c.cursor]
		c.cursor++
		res, err := ic.Invoke(c)
		if err != nil {
			return res, c.guardDeclared(err)
		}
		return res, nil
	}
	res, err := c.invokeJoinpoint()
	if err != nil {
		return res, c.guardDeclared(err)
	}
	return res, nil
}

// invokeJoinpoint performs the terminal call on the real target with the
// original arguments, preferring the pre-resolved fast path.
func (c *Chain) invokeJoinpoint() ([]any, error) {
	if c.fast != nil {
		return c.fast(c.ctx, c.target, c.args)
	}
	return uref.Invoke(c.ctx, c.target, c.m, c.args)
}

// guardDeclared enforces the declared-error contract: an error flowing out
// of a method that declares one passes through; otherwise it is wrapped,
// unless it is already wrapped or belongs to the engine's own taxonomy.
func (c *Chain) guardDeclared(err error) error {
	if uref.DeclaresError(c.m) {
		return err
	}
	var ue *UndeclaredError
	if errors.As(err, &ue) {
		return err
	}
	if errors.Is(err, ErrFatalReturn) ||
		errors.Is(err, aopctx.ErrNoProxy) ||
		errors.Is(err, uref.ErrNoSuchMethod) ||
		errors.Is(err, uref.ErrArgumentMismatch) ||
		errors.Is(err, uref.ErrNilTarget) {
		return err
	}
	return &UndeclaredError{Method: c.m.Name, Err: err}
}
