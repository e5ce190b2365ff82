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
	"log/slog"
	"reflect"
	"sync"

	"dirpx.dev/aopx/config"
	uref "dirpx.dev/aopx/utils/reflect"
)

// validated remembers shape types already checked, so each type is diagnosed
// once per process no matter how many proxies are built over it.
var (
	validatedMu sync.Mutex
	validated   = make(map[reflect.Type]bool)
)

// validateShape logs diagnostics for surface hazards of the shape base.
// Nothing here fails the build: every finding is a working-but-surprising
// setup the caller should know about.
func validateShape(logger *slog.Logger, shape reflect.Type, cfg *config.Advised) {
	validatedMu.Lock()
	defer validatedMu.Unlock()
	if validated[shape] {
		return
	}
	validated[shape] = true
	doValidate(logger, shape, cfg)
}

func doValidate(logger *slog.Logger, shape reflect.Type, cfg *config.Advised) {
	// Pointer-receiver methods vanish from a value-typed surface.
	if shape.Kind() != reflect.Ptr {
		if lost := reflect.PtrTo(shape).NumMethod() - shape.NumMethod(); lost > 0 {
			logger.Info("pointer-receiver methods are not proxied for a value-typed target",
				"shape", shape.String(),
				"hiddenMethods", lost,
			)
		}
	}

	ms, err := uref.Methods(shape)
	if err != nil {
		return
	}
	for _, m := range ms {
		// Name collisions with the introspection surface: the proxy answers
		// these itself, shadowing the target's method.
		if !cfg.Opaque() {
			if _, clash := advisedIfc.MethodByName(m.Name); clash {
				logger.Warn("target method is shadowed by the configuration-introspection surface",
					"shape", shape.String(),
					"method", m.Name,
				)
			}
		}
		if uref.IsEqualMethod(m) || uref.IsHashMethod(m) {
			logger.Info("identity method is answered by the proxy; the target implementation is unreachable through it",
				"shape", shape.String(),
				"method", m.Name,
			)
		}
	}
}
