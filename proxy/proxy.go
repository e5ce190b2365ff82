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

// Package proxy generates and runs method-interception proxies. A Proxy
// mirrors a target type's method surface through a dispatch table: every
// method is routed at build time to one interception strategy, so per-call
// dispatch is a map lookup plus the chosen callback.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/invocation"
	uref "dirpx.dev/aopx/utils/reflect"
)

// ErrUnknownMethod is returned by Call for a method name outside the proxied
// surface.
var ErrUnknownMethod = errors.New("aopx(proxy): unknown method")

// Caller is the dispatch surface every generated proxy exposes. Declared
// here so code can accept "anything callable" without depending on the
// concrete Proxy type.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) ([]any, error)
}

// Proxy is a generated method-interception proxy. Calls enter through Call
// and are routed by the build-time table; the proxy also answers the
// configuration-introspection surface (unless opaque) and the identity
// methods natively.
//
// A Proxy is immutable after generation and safe for concurrent use; the
// mutability of its advice chain is governed by the configuration it wraps.
type Proxy struct {
	cfg       *config.Advised
	shapeBase reflect.Type
	ifaces    []reflect.Type
	callbacks []callback
	routing   map[string]int
	methods   map[string]apis.Method
	fast      map[string]invocation.Invoker
	id        uuid.UUID
	logger    *slog.Logger
}

var (
	_ apis.Proxied = (*Proxy)(nil)
	_ apis.Advised = (*Proxy)(nil)
	_ Caller       = (*Proxy)(nil)
)

// Call invokes the named method through the proxy with the given arguments,
// routing it to the interception strategy assigned at build time.
func (p *Proxy) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	m, ok := p.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownMethod, method, p.shapeBase)
	}
	return p.callbacks[p.routing[method]].Intercept(ctx, p, m, args)
}

// ShapeBase returns the class whose method surface this proxy mirrors.
func (p *Proxy) ShapeBase() reflect.Type { return p.shapeBase }

// SlotIndex returns the callback-table index the named method is routed to.
func (p *Proxy) SlotIndex(method string) (int, bool) {
	idx, ok := p.routing[method]
	return idx, ok
}

// Methods returns the proxied method names, unordered.
func (p *Proxy) Methods() []string {
	out := make([]string, 0, len(p.methods))
	for name := range p.methods {
		out = append(out, name)
	}
	return out
}

// ID returns the proxy instance identifier. Diagnostic only: identity
// comparison goes through Equal, never through IDs.
func (p *Proxy) ID() string { return p.id.String() }

// Equal reports identity-equality with another value: true only when other
// is a generated proxy over a structurally equal configuration. Anything
// that is not a proxy, a bare configuration included, is unequal. Advice
// instance identity does not participate.
func (p *Proxy) Equal(other any) bool {
	o, ok := other.(*Proxy)
	if !ok {
		return false
	}
	return p == o || config.EqualsInProxy(p.cfg, o.cfg)
}

// Hash returns the identity hash: stable across builds for structurally
// equal configurations, derived from the engine type and the target source.
func (p *Proxy) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%T", p)
	base := h.Sum64()
	var tsHash uint64
	ts := p.cfg.TargetSource()
	if hs, ok := ts.(interface{ Hash() uint64 }); ok {
		tsHash = hs.Hash()
	} else {
		th := fnv.New64a()
		fmt.Fprintf(th, "%T", ts)
		tsHash = th.Sum64()
	}
	return base*13 + tsHash
}

func (p *Proxy) String() string {
	return fmt.Sprintf("aopx.Proxy(%s)[%s]", p.shapeBase, p.id)
}

// fastInvoker returns the pre-resolved terminal invoker for m, if one was
// built. Only static targets have them: a pre-bound method value is only
// valid while the instance cannot change.
func (p *Proxy) fastInvoker(ts apis.TargetSource, m apis.Method) invocation.Invoker {
	if !ts.Static() {
		return nil
	}
	return p.fast[m.Name]
}

// invokeOn performs a direct target call, preferring the fast path.
func (p *Proxy) invokeOn(ctx context.Context, target any, m apis.Method, args []any) ([]any, error) {
	if f := p.fastInvoker(p.cfg.TargetSource(), m); f != nil {
		return f(ctx, target, args)
	}
	return uref.Invoke(ctx, target, m, args)
}

// Configuration-introspection surface, delegated to the wrapped
// configuration. ProxiedInterfaces is the exception: the proxy answers with
// its completed set, which includes the engine marker interfaces.

func (p *Proxy) TargetClass() reflect.Type { return p.cfg.TargetClass() }
func (p *Proxy) Frozen() bool              { return p.cfg.Frozen() }
func (p *Proxy) ProxyTargetClass() bool    { return p.cfg.ProxyTargetClass() }

func (p *Proxy) ProxiedInterfaces() []reflect.Type {
	out := make([]reflect.Type, len(p.ifaces))
	copy(out, p.ifaces)
	return out
}

func (p *Proxy) InterfaceProxied(ifc reflect.Type) bool {
	for _, have := range p.ifaces {
		if have == ifc {
			return true
		}
	}
	return false
}

func (p *Proxy) TargetSource() apis.TargetSource          { return p.cfg.TargetSource() }
func (p *Proxy) SetTargetSource(ts apis.TargetSource) error { return p.cfg.SetTargetSource(ts) }
func (p *Proxy) ExposeProxy() bool                        { return p.cfg.ExposeProxy() }
func (p *Proxy) SetExposeProxy(expose bool) error         { return p.cfg.SetExposeProxy(expose) }
func (p *Proxy) PreFiltered() bool                        { return p.cfg.PreFiltered() }
func (p *Proxy) SetPreFiltered(pre bool) error            { return p.cfg.SetPreFiltered(pre) }

func (p *Proxy) Advisors() []apis.Advisor                 { return p.cfg.Advisors() }
func (p *Proxy) AddAdvisor(a apis.Advisor) error          { return p.cfg.AddAdvisor(a) }
func (p *Proxy) AddAdvisorAt(pos int, a apis.Advisor) error { return p.cfg.AddAdvisorAt(pos, a) }
func (p *Proxy) RemoveAdvisor(a apis.Advisor) (bool, error) { return p.cfg.RemoveAdvisor(a) }
func (p *Proxy) RemoveAdvisorAt(index int) error          { return p.cfg.RemoveAdvisorAt(index) }
func (p *Proxy) ReplaceAdvisor(old, with apis.Advisor) (bool, error) {
	return p.cfg.ReplaceAdvisor(old, with)
}
func (p *Proxy) IndexOfAdvisor(a apis.Advisor) int { return p.cfg.IndexOfAdvisor(a) }

func (p *Proxy) AddAdvice(i apis.Interceptor) error           { return p.cfg.AddAdvice(i) }
func (p *Proxy) AddAdviceAt(pos int, i apis.Interceptor) error { return p.cfg.AddAdviceAt(pos, i) }
func (p *Proxy) RemoveAdvice(i apis.Interceptor) (bool, error) { return p.cfg.RemoveAdvice(i) }
func (p *Proxy) IndexOfAdvice(i apis.Interceptor) int          { return p.cfg.IndexOfAdvice(i) }

func (p *Proxy) ProxyConfigString() string { return p.cfg.ProxyConfigString() }
