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

// Package aopx provides dynamic method-interception proxies: transparent
// stand-ins for a target object that route every method call through a
// chain of user-supplied advice before (or instead of) reaching the target.
//
// # Design
//
// A proxy is generated from a configuration (config.Advised) that holds
// four things:
//
//   - Advisors: ordered advice plus the pointcut rules deciding which
//     methods each advice applies to. Bare interceptors can be added
//     directly; they apply to every method.
//
//   - TargetSource: the target-acquisition strategy. A static source
//     always hands out the same instance; dynamic sources (pools,
//     hot-swap holders) produce one per call, and the engine guarantees
//     the instance is released on every exit path.
//
//   - Resolver: the ordering oracle turning the advisor list into the
//     interceptor chain for one method. Chains are memoized per
//     (method, target class) and the memo is invalidated wholesale on
//     advice change.
//
//   - Flags: frozen (advice immutable), expose-proxy (publish the proxy
//     on the call context), opaque (hide the introspection surface),
//     pre-filtered, optimize.
//
// The generator (proxy.Generator) harvests the target's exported method
// surface once, routes every method to an interception strategy, and
// assembles a callback table. Calls enter through Proxy.Call and cost one
// map lookup plus the chosen strategy. Advice-free methods on frozen
// configurations bypass the advice machinery entirely; frozen
// configurations over static targets additionally get per-method advice
// chains resolved at build time.
//
// Generated proxies answer three surfaces beyond the target's own:
//
//   - apis.Advised, for introspecting (and, until frozen, mutating) the
//     advice setup through the proxy itself — omitted when the
//     configuration is opaque;
//   - apis.Proxied, identifying the value as a generated proxy and
//     revealing the shape it mirrors;
//   - the identity methods Equal and Hash, answered by the proxy so that
//     identity stays self-consistent no matter what advice does.
//
// # Transparency
//
// The engine works to keep the proxy indistinguishable from the target:
// a method returning the target itself has that result rewritten to the
// proxy (unless raw target access is requested), errors returned where the
// signature declares none are wrapped in *invocation.UndeclaredError, and
// equality between proxies is structural over their configurations.
//
// # Global API
//
// The package-level helpers operate on a process-wide settings snapshot
// (currently the build logger). Reads are lock-free atomic loads; writers
// take a short build mutex and publish a fresh snapshot:
//
//	aopx.SetLogger(logger)
//	p, err := aopx.Wrap(svc, tracing, retries)
//	out, err := p.Call(ctx, "Lookup", key)
//
// Build compiles an explicit configuration; Wrap is the convenience path
// around a singleton target with match-all advice. CurrentProxy retrieves
// the proxy published on a call context when expose-proxy is set.
package aopx
