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
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/invocation"
	"dirpx.dev/aopx/router"
	"dirpx.dev/aopx/target"
	uref "dirpx.dev/aopx/utils/reflect"
)

var (
	// ErrNilConfig is returned when constructing a generator without a
	// configuration.
	ErrNilConfig = errors.New("aopx(proxy): nil configuration")
	// ErrEmptyConfig is returned for a configuration with neither advisors
	// nor a target: there is nothing to proxy.
	ErrEmptyConfig = errors.New("aopx(proxy): cannot build proxy with no advisors and no target source")
)

// BuildError reports a proxy-generation failure for a given shape base.
type BuildError struct {
	// Shape is the class the proxy was being generated for, if known.
	Shape reflect.Type
	// Err is the underlying failure.
	Err error
}

func (e *BuildError) Error() string {
	if e.Shape == nil {
		return fmt.Sprintf("aopx(proxy): building proxy: %v", e.Err)
	}
	return fmt.Sprintf("aopx(proxy): building proxy for %s: %v", e.Shape, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

var (
	anyType    = reflect.TypeOf((*any)(nil)).Elem()
	boolType   = reflect.TypeOf(true)
	uint64Type = reflect.TypeOf(uint64(0))
	advisedIfc = reflect.TypeOf((*apis.Advised)(nil)).Elem()
	proxiedIfc = reflect.TypeOf((*apis.Proxied)(nil)).Elem()
)

// Generator builds proxies from a configuration. Construction is fail-fast:
// an unusable configuration is rejected before any per-build work.
type Generator struct {
	cfg    *config.Advised
	logger *slog.Logger
}

// GeneratorOption adjusts a Generator during construction.
type GeneratorOption func(*Generator)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator validates the configuration and prepares a generator.
func NewGenerator(cfg *config.Advised, opts ...GeneratorOption) (*Generator, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.CountAdvisors() == 0 && target.IsEmpty(cfg.TargetSource()) {
		return nil, ErrEmptyConfig
	}
	g := &Generator{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate builds a proxy from the generator's configuration: harvests the
// method surface, resolves each method's interception strategy, and
// assembles the callback table. Frozen configurations over static targets
// additionally get per-method fixed advice chains, so those calls skip
// chain resolution entirely.
func (g *Generator) Generate() (*Proxy, error) {
	cfg := g.cfg
	ts := cfg.TargetSource()
	rootClass := ts.TargetClass()
	if rootClass == nil {
		return nil, &BuildError{Err: errors.New("target source reports no target class")}
	}

	isStatic := ts.Static()
	var staticTarget any
	if isStatic {
		t, err := ts.Target()
		if err != nil {
			return nil, &BuildError{Shape: rootClass, Err: err}
		}
		staticTarget = t
	}

	// A target that is itself a generated proxy: mirror the original shape
	// base rather than stacking proxy surfaces, and carry its interfaces
	// forward.
	shapeBase := rootClass
	if pr, ok := staticTarget.(apis.Proxied); ok {
		shapeBase = pr.ShapeBase()
		if adv, ok := staticTarget.(apis.Advised); ok {
			for _, ifc := range adv.ProxiedInterfaces() {
				if ifc.Kind() == reflect.Interface {
					if err := cfg.AddInterface(ifc); err != nil {
						return nil, &BuildError{Shape: shapeBase, Err: err}
					}
				}
			}
		}
	}

	validateShape(g.logger, shapeBase, cfg)

	shapeMethods, err := uref.Methods(shapeBase)
	if err != nil {
		return nil, &BuildError{Shape: shapeBase, Err: err}
	}

	table := make(map[string]apis.Method, len(shapeMethods)+8)
	for _, m := range shapeMethods {
		table[m.Name] = m
	}
	for _, ifc := range cfg.ProxiedInterfaces() {
		ims, err := uref.Methods(ifc)
		if err != nil {
			return nil, &BuildError{Shape: shapeBase, Err: err}
		}
		for _, m := range ims {
			if _, have := table[m.Name]; !have {
				table[m.Name] = m
			}
		}
	}
	if !cfg.Opaque() {
		ims, _ := uref.Methods(advisedIfc)
		for _, m := range ims {
			if _, have := table[m.Name]; !have {
				table[m.Name] = m
			}
		}
	}
	// Synthetic identity methods, when the surface does not declare them.
	if _, have := table["Equal"]; !have {
		table["Equal"] = apis.Method{
			Name:  "Equal",
			Type:  reflect.FuncOf([]reflect.Type{anyType}, []reflect.Type{boolType}, false),
			Index: -1,
		}
	}
	if _, have := table["Hash"]; !have {
		table["Hash"] = apis.Method{
			Name:  "Hash",
			Type:  reflect.FuncOf(nil, []reflect.Type{uint64Type}, false),
			Index: -1,
		}
	}

	fast := g.buildFastInvokers(staticTarget, table)

	// Fixed chains for frozen+static: the chain for every advised shape
	// method is final, so resolve once here instead of per call. Advice-free
	// methods get no fixed slot; the router sends those to the direct paths.
	var (
		fixed          map[string]int
		fixedCallbacks []callback
	)
	if cfg.Frozen() && isStatic {
		fixed = make(map[string]int, len(shapeMethods))
		for _, m := range shapeMethods {
			chain := cfg.ApplicableInterceptors(m, rootClass)
			if len(chain) == 0 {
				continue
			}
			fixed[m.Name] = len(fixedCallbacks)
			fixedCallbacks = append(fixedCallbacks, fixedChain{
				chain:       chain,
				target:      staticTarget,
				targetClass: rootClass,
			})
		}
	}

	callbacks := make([]callback, router.FixedOffset, router.FixedOffset+len(fixedCallbacks))
	callbacks[router.SlotAdvice] = advisedCallback{}
	callbacks[router.SlotInvokeTarget] = g.invokeTargetCallback(isStatic, staticTarget)
	callbacks[router.SlotNoOp] = noOp{}
	if isStatic {
		callbacks[router.SlotDispatchTarget] = staticDispatcher{target: staticTarget}
	} else {
		// Never routed for dynamic targets; a no-op keeps the table total.
		callbacks[router.SlotDispatchTarget] = noOp{}
	}
	callbacks[router.SlotDispatchAdvised] = advisedDispatcher{}
	callbacks[router.SlotEquals] = equalsCallback{}
	callbacks[router.SlotHash] = hashCallback{}
	callbacks = append(callbacks, fixedCallbacks...)

	routing := make(map[string]int, len(table))
	for name, m := range table {
		routing[name] = router.Route(m, cfg, fixed)
	}

	ifaces := append([]reflect.Type{}, cfg.ProxiedInterfaces()...)
	ifaces = appendIfaceOnce(ifaces, proxiedIfc)
	if !cfg.Opaque() {
		ifaces = appendIfaceOnce(ifaces, advisedIfc)
	}

	p := &Proxy{
		cfg:       cfg,
		shapeBase: shapeBase,
		ifaces:    ifaces,
		callbacks: callbacks,
		routing:   routing,
		methods:   table,
		fast:      fast,
		id:        uuid.New(),
		logger:    g.logger,
	}
	g.logger.Debug("generated proxy",
		"shape", shapeBase.String(),
		"methods", len(table),
		"fixedChains", len(fixedCallbacks),
		"frozen", cfg.Frozen(),
		"static", isStatic,
		"id", p.id.String(),
	)
	return p, nil
}

// invokeTargetCallback picks the direct-invoke variant for the static and
// expose-proxy combination in effect at build time.
func (g *Generator) invokeTargetCallback(isStatic bool, staticTarget any) callback {
	expose := g.cfg.ExposeProxy()
	switch {
	case isStatic && expose:
		return staticUnadvisedExposed{target: staticTarget}
	case isStatic:
		return staticUnadvised{target: staticTarget}
	case expose:
		return dynamicUnadvisedExposed{}
	default:
		return dynamicUnadvised{}
	}
}

// buildFastInvokers pre-binds method values on a static target so terminal
// calls skip the per-call method lookup. Dispatch-table targets get a
// forwarding invoker instead.
func (g *Generator) buildFastInvokers(staticTarget any, table map[string]apis.Method) map[string]invocation.Invoker {
	if staticTarget == nil {
		return nil
	}
	fast := make(map[string]invocation.Invoker, len(table))
	caller, isCaller := staticTarget.(Caller)
	tv := reflect.ValueOf(staticTarget)
	for name, m := range table {
		if m.Index < 0 || m.Owner == nil {
			continue
		}
		if mv := tv.MethodByName(name); mv.IsValid() {
			m := m
			mv := mv
			fast[name] = func(ctx context.Context, _ any, args []any) ([]any, error) {
				return uref.Call(ctx, mv, m, args)
			}
			continue
		}
		if isCaller {
			name := name
			fast[name] = func(ctx context.Context, _ any, args []any) ([]any, error) {
				return caller.Call(ctx, name, args...)
			}
		}
	}
	return fast
}

func appendIfaceOnce(ifaces []reflect.Type, ifc reflect.Type) []reflect.Type {
	for _, have := range ifaces {
		if have == ifc {
			return ifaces
		}
	}
	return append(ifaces, ifc)
}
