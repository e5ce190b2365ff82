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

package proxy

import (
	"context"
	"fmt"
	"reflect"

	"dirpx.dev/aopx/aopctx"
	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/invocation"
	uref "dirpx.dev/aopx/utils/reflect"
)

// callback is one interception strategy in the proxy's callback table. The
// router assigns every method to exactly one callback at build time.
type callback interface {
	Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) ([]any, error)
}

// advisedCallback is the general-purpose advice path: acquires the target as
// late as possible, resolves the advice chain, and walks it. Handles every
// combination of dynamic targets, proxy exposure, and unfrozen configurations.
type advisedCallback struct{}

func (advisedCallback) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) (res []any, err error) {
	cfg := p.cfg
	if cfg.ExposeProxy() {
		// Derived context scopes the published proxy to this call; the parent
		// context restores itself on every exit path.
		ctx = aopctx.WithCurrentProxy(ctx, p)
	}
	ts := cfg.TargetSource()
	target, err := ts.Target()
	if err != nil {
		return nil, fmt.Errorf("aopx(proxy): acquiring target for %s: %w", m.Name, err)
	}
	if !ts.Static() {
		defer func() { _ = ts.Release(target) }()
	}
	var targetClass reflect.Type
	if target != nil {
		targetClass = reflect.TypeOf(target)
	}
	chain := cfg.ApplicableInterceptors(m, targetClass)
	if len(chain) == 0 {
		// Direct joinpoint call, no chain machinery. Errors out of a real
		// method are declared by its signature, so the undeclared-wrap can
		// only ever apply on the chain path.
		res, err = p.invokeOn(ctx, target, m, args)
	} else {
		inv := invocation.New(ctx, p, target, m, args, targetClass, chain, p.fastInvoker(ts, m))
		res, err = inv.Proceed()
	}
	if err != nil {
		return res, err
	}
	return processReturn(p, target, m, res)
}

// staticUnadvised invokes a fixed target directly, applying the self-return
// rewrite. Used for advice-free methods on frozen configurations when the
// method could hand out the target.
type staticUnadvised struct {
	target any
}

func (c staticUnadvised) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) ([]any, error) {
	res, err := p.invokeOn(ctx, c.target, m, args)
	if err != nil {
		return res, err
	}
	return processReturn(p, c.target, m, res)
}

// staticUnadvisedExposed is staticUnadvised plus proxy exposure.
type staticUnadvisedExposed struct {
	target any
}

func (c staticUnadvisedExposed) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) ([]any, error) {
	ctx = aopctx.WithCurrentProxy(ctx, p)
	res, err := p.invokeOn(ctx, c.target, m, args)
	if err != nil {
		return res, err
	}
	return processReturn(p, c.target, m, res)
}

// dynamicUnadvised acquires a target per call, invokes it without advice, and
// releases it on every exit path.
type dynamicUnadvised struct{}

func (dynamicUnadvised) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) (res []any, err error) {
	ts := p.cfg.TargetSource()
	target, err := ts.Target()
	if err != nil {
		return nil, fmt.Errorf("aopx(proxy): acquiring target for %s: %w", m.Name, err)
	}
	defer func() { _ = ts.Release(target) }()
	res, err = p.invokeOn(ctx, target, m, args)
	if err != nil {
		return res, err
	}
	return processReturn(p, target, m, res)
}

// dynamicUnadvisedExposed is dynamicUnadvised plus proxy exposure.
type dynamicUnadvisedExposed struct{}

func (dynamicUnadvisedExposed) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) (res []any, err error) {
	ctx = aopctx.WithCurrentProxy(ctx, p)
	ts := p.cfg.TargetSource()
	target, err := ts.Target()
	if err != nil {
		return nil, fmt.Errorf("aopx(proxy): acquiring target for %s: %w", m.Name, err)
	}
	defer func() { _ = ts.Release(target) }()
	res, err = p.invokeOn(ctx, target, m, args)
	if err != nil {
		return res, err
	}
	return processReturn(p, target, m, res)
}

// noOp suppresses interception: zero results, no target contact. Routes the
// finalization hook.
type noOp struct{}

func (noOp) Intercept(_ context.Context, _ *Proxy, m apis.Method, _ []any) ([]any, error) {
	return uref.ZeroResults(m), nil
}

// staticDispatcher forwards to a fixed target with no wrapping whatsoever.
// Routed only for methods that provably cannot return the target.
type staticDispatcher struct {
	target any
}

func (c staticDispatcher) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) ([]any, error) {
	return p.invokeOn(ctx, c.target, m, args)
}

// advisedDispatcher forwards configuration-introspection methods to the
// configuration holder.
type advisedDispatcher struct{}

func (advisedDispatcher) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) ([]any, error) {
	return uref.Invoke(ctx, p.cfg, m, args)
}

// equalsCallback answers the identity-equality method on the proxy itself,
// so equality stays self-consistent regardless of advice on the target.
type equalsCallback struct{}

func (equalsCallback) Intercept(_ context.Context, p *Proxy, m apis.Method, args []any) ([]any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s wants 1 arg, got %d", uref.ErrArgumentMismatch, m.Name, len(args))
	}
	return []any{p.Equal(args[0])}, nil
}

// hashCallback answers the identity-hash method on the proxy itself.
type hashCallback struct{}

func (hashCallback) Intercept(_ context.Context, p *Proxy, _ apis.Method, _ []any) ([]any, error) {
	return []any{p.Hash()}, nil
}

// fixedChain carries an advice chain resolved once at build time, valid only
// for frozen configurations over static targets. Never used when the proxy
// must be exposed.
type fixedChain struct {
	chain       []apis.Interceptor
	target      any
	targetClass reflect.Type
}

func (c fixedChain) Intercept(ctx context.Context, p *Proxy, m apis.Method, args []any) ([]any, error) {
	inv := invocation.New(ctx, p, c.target, m, args, c.targetClass,
		c.chain, p.fastInvoker(p.cfg.TargetSource(), m))
	res, err := inv.Proceed()
	if err != nil {
		return res, err
	}
	return processReturn(p, c.target, m, res)
}

// processReturn applies the self-return rewrite and the non-nilable result
// guard. A result that is the target itself becomes the proxy, unless the
// method or the target type opts into raw target access. A nil result for a
// type that cannot hold nil is a fatal signature violation.
func processReturn(p *Proxy, target any, m apis.Method, res []any) ([]any, error) {
	rts := uref.Results(m)
	if len(res) < len(rts) {
		padded := make([]any, len(rts))
		copy(padded, res)
		res = padded
	}
	rawAllowed := rawTargetAllowed(p.cfg, target, m)
	for i, rt := range rts {
		v := res[i]
		if v == nil {
			if !uref.Nilable(rt) {
				return nil, fmt.Errorf("%w: result %d (%s) of %s",
					invocation.ErrFatalReturn, i, rt, m.Name)
			}
			continue
		}
		if !rawAllowed && uref.Identical(v, target) {
			res[i] = p
		}
	}
	return res, nil
}

// rawTargetAllowed reports whether m may legitimately return the bare target:
// either the method is marked on the configuration or the target type carries
// the marker interface.
func rawTargetAllowed(cfg *config.Advised, target any, m apis.Method) bool {
	if cfg.RawTargetAccessMethod(m.Name) {
		return true
	}
	_, ok := target.(apis.RawTargetAccess)
	return ok
}
