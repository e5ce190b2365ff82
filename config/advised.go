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

// Package config holds the proxy configuration: advisors, the
// target-acquisition strategy, proxying flags, and the per-method advice
// chain cache. A configuration is mutable until frozen; once frozen the
// advisor list is immutable and routing decisions computed against it may be
// cached indefinitely.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/resolver"
	"dirpx.dev/aopx/target"
)

var (
	// ErrFrozen is returned by advisor mutators once the configuration is
	// frozen.
	ErrFrozen = errors.New("aopx(config): configuration is frozen, cannot modify advice")
	// ErrNilAdvisor is returned when a nil advisor is supplied.
	ErrNilAdvisor = errors.New("aopx(config): nil advisor")
	// ErrNilAdvice is returned when a nil interceptor is supplied.
	ErrNilAdvice = errors.New("aopx(config): nil advice")
	// ErrAdvisorIndex is returned for an out-of-bounds advisor position.
	ErrAdvisorIndex = errors.New("aopx(config): advisor index out of bounds")
	// ErrNotInterface is returned when a proxied interface is not an
	// interface type.
	ErrNotInterface = errors.New("aopx(config): proxied interface must be an interface type")
	// ErrNilTargetSource is returned when replacing the target source with nil.
	ErrNilTargetSource = errors.New("aopx(config): nil target source")
)

// Advised is the configuration a proxy is generated from. The zero value is
// not usable; construct with New.
//
// Unfrozen configurations are not safe for concurrent mutation; frozen
// configurations and their cached chains are safe for unsynchronized
// concurrent reads.
type Advised struct {
	mu sync.RWMutex

	advisors   []apis.Advisor
	ts         apis.TargetSource
	res        apis.ChainResolver
	interfaces []reflect.Type
	rawAccess  map[string]struct{}

	frozen           bool
	exposeProxy      bool
	optimize         bool
	preFiltered      bool
	opaque           bool
	proxyTargetClass bool

	// chainCache memoizes resolved chains per (method, target class).
	// Swapped wholesale on advice change so stale entries can never be
	// observed, and read lock-free on the hot path.
	chainCache atomic.Pointer[sync.Map]
}

var _ apis.Advised = (*Advised)(nil)

// Option mutates an Advised during construction.
type Option func(*Advised)

// WithTarget wraps the given instance in a singleton target source.
// Construction panics on a nil target; use WithTargetSource for full control.
func WithTarget(t any) Option {
	return func(a *Advised) {
		ts, err := target.NewSingleton(t)
		if err != nil {
			panic(err)
		}
		a.ts = ts
	}
}

// WithTargetSource sets the target-acquisition strategy.
func WithTargetSource(ts apis.TargetSource) Option {
	return func(a *Advised) {
		if ts != nil {
			a.ts = ts
		}
	}
}

// WithResolver overrides the advice-chain resolver.
func WithResolver(r apis.ChainResolver) Option {
	return func(a *Advised) {
		if r != nil {
			a.res = r
		}
	}
}

// WithAdvisors appends the given advisors in order.
func WithAdvisors(advisors ...apis.Advisor) Option {
	return func(a *Advised) {
		for _, ad := range advisors {
			if ad != nil {
				a.advisors = append(a.advisors, ad)
			}
		}
	}
}

// WithExposeProxy publishes the current proxy to the call context so advised
// objects can self-invoke with advice re-applied.
func WithExposeProxy(expose bool) Option {
	return func(a *Advised) { a.exposeProxy = expose }
}

// WithOptimize enables aggressive optimization hints.
func WithOptimize(opt bool) Option {
	return func(a *Advised) { a.optimize = opt }
}

// WithPreFiltered marks the advisor list as already filtered for the target
// class, letting the resolver skip the class check per method.
func WithPreFiltered(pre bool) Option {
	return func(a *Advised) { a.preFiltered = pre }
}

// WithOpaque hides the configuration-introspection surface from the
// generated proxy.
func WithOpaque(opaque bool) Option {
	return func(a *Advised) { a.opaque = opaque }
}

// New constructs a configuration. Without options it has no advisors, the
// empty target source, and the default chain resolver.
func New(opts ...Option) *Advised {
	a := &Advised{
		ts:               target.Empty(),
		res:              resolver.New(),
		rawAccess:        make(map[string]struct{}),
		proxyTargetClass: true,
	}
	a.chainCache.Store(new(sync.Map))
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Freeze makes the advisor list immutable. Freezing is one-way: proxies
// generated from a frozen configuration may embed per-method decisions whose
// validity depends on it.
func (a *Advised) Freeze() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frozen = true
}

// Frozen reports whether the advisor list is immutable.
func (a *Advised) Frozen() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frozen
}

// ProxyTargetClass reports whether the full target class is proxied.
func (a *Advised) ProxyTargetClass() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.proxyTargetClass
}

// Opaque reports whether the introspection surface is hidden from proxies.
func (a *Advised) Opaque() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.opaque
}

// Optimize reports the optimization hint.
func (a *Advised) Optimize() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.optimize
}

// ExposeProxy reports whether the proxy is published to the call context.
func (a *Advised) ExposeProxy() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exposeProxy
}

// SetExposeProxy toggles proxy exposure.
func (a *Advised) SetExposeProxy(expose bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exposeProxy = expose
	return nil
}

// PreFiltered reports whether advisors are pre-matched against the target
// class.
func (a *Advised) PreFiltered() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.preFiltered
}

// SetPreFiltered toggles the pre-filtered hint.
func (a *Advised) SetPreFiltered(pre bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.preFiltered = pre
	return nil
}

// TargetSource returns the target-acquisition strategy.
func (a *Advised) TargetSource() apis.TargetSource {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ts
}

// SetTargetSource replaces the target-acquisition strategy.
func (a *Advised) SetTargetSource(ts apis.TargetSource) error {
	if ts == nil {
		return ErrNilTargetSource
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ts = ts
	a.swapChainCacheLocked()
	return nil
}

// TargetClass returns the class of targets the source produces, or nil.
func (a *Advised) TargetClass() reflect.Type {
	return a.TargetSource().TargetClass()
}

// Resolver returns the advice-chain resolver in use.
func (a *Advised) Resolver() apis.ChainResolver {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.res
}

// AddInterface declares an interface the proxy should answer for, beyond the
// target's own surface. Not advice: permitted on frozen configurations so a
// proxy-of-proxy build can union the original's interface set.
func (a *Advised) AddInterface(ifc reflect.Type) error {
	if ifc == nil {
		return ErrNotInterface
	}
	if ifc.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s", ErrNotInterface, ifc)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, have := range a.interfaces {
		if have == ifc {
			return nil
		}
	}
	a.interfaces = append(a.interfaces, ifc)
	return nil
}

// ProxiedInterfaces returns the declared proxied interfaces, in declaration
// order. Generated proxies report a completed set that also contains the
// engine marker interfaces.
func (a *Advised) ProxiedInterfaces() []reflect.Type {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]reflect.Type, len(a.interfaces))
	copy(out, a.interfaces)
	return out
}

// InterfaceProxied reports whether ifc is among the declared interfaces.
func (a *Advised) InterfaceProxied(ifc reflect.Type) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, have := range a.interfaces {
		if have == ifc {
			return true
		}
	}
	return false
}

// MarkRawTargetAccess opts the named method out of the self-return rewrite:
// it is intentionally allowed to return the bare target.
func (a *Advised) MarkRawTargetAccess(method string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	a.rawAccess[method] = struct{}{}
	return nil
}

// RawTargetAccessMethod reports whether the named method is opted out of the
// self-return rewrite.
func (a *Advised) RawTargetAccessMethod(method string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.rawAccess[method]
	return ok
}

// Advisors returns a snapshot of the advisor chain, in order.
func (a *Advised) Advisors() []apis.Advisor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]apis.Advisor, len(a.advisors))
	copy(out, a.advisors)
	return out
}

// CountAdvisors returns the advisor chain length.
func (a *Advised) CountAdvisors() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.advisors)
}

// AddAdvisor appends an advisor to the end of the chain.
func (a *Advised) AddAdvisor(ad apis.Advisor) error {
	if ad == nil {
		return ErrNilAdvisor
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	a.advisors = append(a.advisors, ad)
	a.swapChainCacheLocked()
	return nil
}

// AddAdvisorAt inserts an advisor at the given position (0 is head).
func (a *Advised) AddAdvisorAt(pos int, ad apis.Advisor) error {
	if ad == nil {
		return ErrNilAdvisor
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	if pos < 0 || pos > len(a.advisors) {
		return fmt.Errorf("%w: %d (len %d)", ErrAdvisorIndex, pos, len(a.advisors))
	}
	a.advisors = append(a.advisors[:pos], append([]apis.Advisor{ad}, a.advisors[pos:]...)...)
	a.swapChainCacheLocked()
	return nil
}

// RemoveAdvisor removes the given advisor, reporting whether it was found.
func (a *Advised) RemoveAdvisor(ad apis.Advisor) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return false, ErrFrozen
	}
	i := a.indexOfLocked(ad)
	if i < 0 {
		return false, nil
	}
	a.advisors = append(a.advisors[:i], a.advisors[i+1:]...)
	a.swapChainCacheLocked()
	return true, nil
}

// RemoveAdvisorAt removes the advisor at the given index.
func (a *Advised) RemoveAdvisorAt(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	if index < 0 || index >= len(a.advisors) {
		return fmt.Errorf("%w: %d (len %d)", ErrAdvisorIndex, index, len(a.advisors))
	}
	a.advisors = append(a.advisors[:index], a.advisors[index+1:]...)
	a.swapChainCacheLocked()
	return nil
}

// ReplaceAdvisor swaps old for with in place, reporting whether old was found.
func (a *Advised) ReplaceAdvisor(old, with apis.Advisor) (bool, error) {
	if with == nil {
		return false, ErrNilAdvisor
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return false, ErrFrozen
	}
	i := a.indexOfLocked(old)
	if i < 0 {
		return false, nil
	}
	a.advisors[i] = with
	a.swapChainCacheLocked()
	return true, nil
}

// IndexOfAdvisor returns the advisor's position in the chain, or -1.
func (a *Advised) IndexOfAdvisor(ad apis.Advisor) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indexOfLocked(ad)
}

// AddAdvice appends a bare interceptor wrapped in a match-all advisor.
func (a *Advised) AddAdvice(i apis.Interceptor) error {
	if i == nil {
		return ErrNilAdvice
	}
	return a.AddAdvisor(NewAdvisor(i))
}

// AddAdviceAt inserts a bare interceptor at the given position.
func (a *Advised) AddAdviceAt(pos int, i apis.Interceptor) error {
	if i == nil {
		return ErrNilAdvice
	}
	return a.AddAdvisorAt(pos, NewAdvisor(i))
}

// RemoveAdvice removes the first advisor carrying the given interceptor.
func (a *Advised) RemoveAdvice(i apis.Interceptor) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return false, ErrFrozen
	}
	idx := a.indexOfAdviceLocked(i)
	if idx < 0 {
		return false, nil
	}
	a.advisors = append(a.advisors[:idx], a.advisors[idx+1:]...)
	a.swapChainCacheLocked()
	return true, nil
}

// IndexOfAdvice returns the position of the advisor carrying the given
// interceptor, or -1.
func (a *Advised) IndexOfAdvice(i apis.Interceptor) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indexOfAdviceLocked(i)
}

// chainKey memoizes resolved chains per method name and target class.
type chainKey struct {
	method string
	class  reflect.Type
}

// ApplicableInterceptors returns the ordered interceptors applying to m on
// targetClass, delegating to the chain resolver and memoizing the result.
// The returned slice is shared; callers must not mutate it.
func (a *Advised) ApplicableInterceptors(m apis.Method, targetClass reflect.Type) []apis.Interceptor {
	cache := a.chainCache.Load()
	key := chainKey{method: m.Name, class: targetClass}
	if v, ok := cache.Load(key); ok {
		return v.([]apis.Interceptor)
	}
	chain := a.Resolver().Resolve(a, m, targetClass)
	cache.Store(key, chain)
	return chain
}

// swapChainCacheLocked invalidates every memoized chain. Callers hold a.mu.
func (a *Advised) swapChainCacheLocked() {
	a.chainCache.Store(new(sync.Map))
}

// indexOfLocked finds an advisor by identity, tolerating non-comparable
// implementations. Callers hold a.mu.
func (a *Advised) indexOfLocked(ad apis.Advisor) int {
	if ad == nil {
		return -1
	}
	for i, have := range a.advisors {
		if sameAdvisor(have, ad) {
			return i
		}
	}
	return -1
}

// indexOfAdviceLocked finds the advisor carrying the given interceptor.
// Callers hold a.mu.
func (a *Advised) indexOfAdviceLocked(ic apis.Interceptor) int {
	if ic == nil {
		return -1
	}
	for i, have := range a.advisors {
		if sameInterceptor(have.Advice(), ic) {
			return i
		}
	}
	return -1
}

// ProxyConfigString describes the configuration: advisor count, target
// source, flags, and declared interfaces.
func (a *Advised) ProxyConfigString() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var sb strings.Builder
	fmt.Fprintf(&sb, "aopx.Advised: %d advisors, targetSource [%v], ", len(a.advisors), a.ts)
	fmt.Fprintf(&sb, "frozen=%v, exposeProxy=%v, optimize=%v, preFiltered=%v, opaque=%v",
		a.frozen, a.exposeProxy, a.optimize, a.preFiltered, a.opaque)
	if len(a.interfaces) > 0 {
		names := make([]string, len(a.interfaces))
		for i, ifc := range a.interfaces {
			names[i] = ifc.String()
		}
		fmt.Fprintf(&sb, ", interfaces=[%s]", strings.Join(names, ", "))
	}
	return sb.String()
}
