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

import "reflect"

// Advised is the configuration-introspection surface. Both the configuration
// holder and every generated proxy (unless opaque) implement it, so any proxy
// can be asked about — and, until frozen, mutated in — its advice setup.
//
// Advisor and advice mutators fail once the configuration is frozen.
type Advised interface {
	// TargetClass returns the class of the proxied target, or nil.
	TargetClass() reflect.Type
	// Frozen reports whether the advisor list is immutable.
	Frozen() bool
	// ProxyTargetClass reports whether the full target class is proxied
	// (subclass-style) rather than an interface-only surface.
	ProxyTargetClass() bool
	// ProxiedInterfaces returns the interfaces the proxy answers for.
	ProxiedInterfaces() []reflect.Type
	// InterfaceProxied reports whether the given interface is proxied.
	InterfaceProxied(ifc reflect.Type) bool

	// TargetSource returns the target-acquisition strategy.
	TargetSource() TargetSource
	// SetTargetSource replaces the target-acquisition strategy.
	SetTargetSource(ts TargetSource) error
	// ExposeProxy reports whether the current proxy is published to the call
	// context for self-invocation with advice re-applied.
	ExposeProxy() bool
	// SetExposeProxy toggles proxy exposure.
	SetExposeProxy(expose bool) error
	// PreFiltered reports whether advisors are already known to match the
	// target class, letting the resolver skip the class filter.
	PreFiltered() bool
	// SetPreFiltered toggles the pre-filtered hint.
	SetPreFiltered(pre bool) error

	// Advisors returns the advisors applying to this proxy, in order.
	Advisors() []Advisor
	// AddAdvisor appends an advisor to the chain.
	AddAdvisor(a Advisor) error
	// AddAdvisorAt inserts an advisor at the given position (0 is head).
	AddAdvisorAt(pos int, a Advisor) error
	// RemoveAdvisor removes the given advisor, reporting whether it was found.
	RemoveAdvisor(a Advisor) (bool, error)
	// RemoveAdvisorAt removes the advisor at the given index.
	RemoveAdvisorAt(index int) error
	// ReplaceAdvisor swaps old for with, reporting whether old was found.
	ReplaceAdvisor(old, with Advisor) (bool, error)
	// IndexOfAdvisor returns the advisor's position, or -1.
	IndexOfAdvisor(a Advisor) int

	// AddAdvice appends a bare interceptor, wrapped in a match-all advisor.
	AddAdvice(i Interceptor) error
	// AddAdviceAt inserts a bare interceptor at the given position.
	AddAdviceAt(pos int, i Interceptor) error
	// RemoveAdvice removes the advisor carrying the given interceptor.
	RemoveAdvice(i Interceptor) (bool, error)
	// IndexOfAdvice returns the position of the advisor carrying the given
	// interceptor, or -1.
	IndexOfAdvice(i Interceptor) int

	// ProxyConfigString describes the proxy configuration. The analogous
	// String() of a proxy is normally forwarded to the target, so the
	// configuration description gets its own name.
	ProxyConfigString() string
}
