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

package aopx

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"dirpx.dev/aopx/aopctx"
	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/proxy"
	"dirpx.dev/aopx/target"
)

// init publishes the initial settings snapshot.
func init() {
	st.Store(&settings{logger: slog.Default()})
}

// buildMu serializes writers so a partially-built snapshot is never
// published.
var buildMu sync.Mutex

// st is the global settings snapshot. Immutable once published; writers
// create a new settings and swap it atomically.
var st atomic.Pointer[settings]

type settings struct {
	// logger receives build and validation diagnostics.
	logger *slog.Logger
}

// Logger returns the logger used for proxy-build diagnostics.
func Logger() *slog.Logger {
	return st.Load().logger
}

// SetLogger replaces the diagnostics logger. A nil logger is ignored.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(&settings{logger: l})
}

// Build generates a proxy from an explicit configuration. The global
// diagnostics logger applies unless an option overrides it.
func Build(cfg *config.Advised, opts ...proxy.GeneratorOption) (*proxy.Proxy, error) {
	all := append([]proxy.GeneratorOption{proxy.WithLogger(Logger())}, opts...)
	g, err := proxy.NewGenerator(cfg, all...)
	if err != nil {
		return nil, err
	}
	return g.Generate()
}

// Wrap proxies a single target instance with the given advice, applied to
// every method in order. The convenience path for the common case; use
// config.New plus Build for pointcuts, dynamic targets, or flags.
func Wrap(t any, advice ...apis.Interceptor) (*proxy.Proxy, error) {
	if t == nil {
		return nil, target.ErrNilTarget
	}
	cfg := config.New(config.WithTarget(t))
	for _, ic := range advice {
		if err := cfg.AddAdvice(ic); err != nil {
			return nil, err
		}
	}
	return Build(cfg)
}

// CurrentProxy returns the proxy published on ctx. Only calls through a
// configuration with expose-proxy set publish one.
func CurrentProxy(ctx context.Context) (any, error) {
	return aopctx.CurrentProxy(ctx)
}
