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

// Package router assigns every method of a proxied surface to an
// interception strategy. Route is a pure function of the method and a
// configuration snapshot: the generator evaluates it once per method at
// proxy-build time and records the result in the proxy's routing table, so
// picking a callback at call time is a single map lookup.
package router

import (
	"reflect"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	uref "dirpx.dev/aopx/utils/reflect"
)

// Slot is an interception strategy: a position in the proxy's callback
// table. The first seven positions are the fixed general-purpose callbacks;
// positions from FixedOffset up are per-method fixed-chain callbacks, present
// only for frozen configurations over static targets.
type Slot int

const (
	// SlotAdvice is the general-purpose advice path: builds an invocation
	// chain per call, resolving advice dynamically.
	SlotAdvice Slot = iota
	// SlotInvokeTarget invokes the target directly, without advice, but with
	// the self-return rewrite (the method may return the target itself).
	SlotInvokeTarget
	// SlotNoOp suppresses interception entirely (finalization hook).
	SlotNoOp
	// SlotDispatchTarget forwards to the target with no wrapping at all:
	// provably cannot leak a raw target reference.
	SlotDispatchTarget
	// SlotDispatchAdvised forwards configuration-introspection methods to
	// the configuration holder.
	SlotDispatchAdvised
	// SlotEquals handles the identity-equality method on the proxy itself.
	SlotEquals
	// SlotHash handles the identity-hash method on the proxy itself.
	SlotHash
)

// FixedOffset is the callback-table index of the first fixed-chain callback.
const FixedOffset = 7

var slotNames = [...]string{
	"advice", "invoke-target", "no-op", "dispatch-target",
	"dispatch-advised", "identity-equals", "identity-hashcode",
}

func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return "fixed-chain"
}

var advisedType = reflect.TypeOf((*apis.Advised)(nil)).Elem()

// IsAdvisedMethod reports whether the method name belongs to the
// configuration-introspection surface. Matching is by name: a target method
// colliding with an introspection name is shadowed by the proxy, which the
// generator surfaces as a validation diagnostic.
func IsAdvisedMethod(m apis.Method) bool {
	_, ok := advisedType.MethodByName(m.Name)
	return ok
}

// Route assigns m to a callback-table index, given a configuration snapshot
// and the fixed-chain positions precomputed for frozen+static
// configurations (method name to zero-based fixed index). The decision, in
// priority order:
//
//  1. Finalization hook: no-op — interception would keep targets alive.
//  2. Introspection method on a non-opaque configuration: dispatch-advised.
//  3. Identity equality: always the equals callback, so proxy identity stays
//     self-consistent regardless of advice.
//  4. Identity hash: always the hashcode callback.
//  5. Methods with advice, or any method while unfrozen: the general advice
//     path — unless a fixed chain exists (frozen+static) and the proxy need
//     not be exposed, in which case the method's fixed-chain callback.
//  6. Advice-free methods on a frozen configuration: direct target invoke if
//     the proxy is exposed, the target is dynamic, or the method could
//     return the target itself; otherwise the bare dispatcher.
func Route(m apis.Method, cfg *config.Advised, fixed map[string]int) int {
	if uref.IsFinalizeMethod(m) {
		return int(SlotNoOp)
	}
	if !cfg.Opaque() && IsAdvisedMethod(m) {
		return int(SlotDispatchAdvised)
	}
	// Always proxy identity methods, to direct calls to the proxy itself.
	if uref.IsEqualMethod(m) {
		return int(SlotEquals)
	}
	if uref.IsHashMethod(m) {
		return int(SlotHash)
	}

	targetClass := cfg.TargetClass()
	chain := cfg.ApplicableInterceptors(m, targetClass)
	haveAdvice := len(chain) > 0
	exposeProxy := cfg.ExposeProxy()
	isStatic := cfg.TargetSource().Static()
	isFrozen := cfg.Frozen()

	if haveAdvice || !isFrozen {
		// Exposing the proxy needs wrap/unwrap around the call, which only
		// the general path performs safely under errors.
		if exposeProxy {
			return int(SlotAdvice)
		}
		if isStatic && isFrozen {
			if idx, ok := fixed[m.Name]; ok {
				return FixedOffset + idx
			}
		}
		return int(SlotAdvice)
	}

	// No advice and frozen: this method will never carry advice.
	if exposeProxy || !isStatic {
		return int(SlotInvokeTarget)
	}
	if mayReturnTarget(m, targetClass) {
		return int(SlotInvokeTarget)
	}
	return int(SlotDispatchTarget)
}

// mayReturnTarget reports whether any of the method's results could legally
// be the target itself, judged by assignability from the target class. The
// check is deliberately that coarse: tightening it against declared
// interfaces would break the self-return rewrite for covariant returns.
func mayReturnTarget(m apis.Method, targetClass reflect.Type) bool {
	if targetClass == nil {
		return false
	}
	for _, rt := range uref.Results(m) {
		if targetClass.AssignableTo(rt) {
			return true
		}
	}
	return false
}
