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

// Package resolver provides the default advice-chain resolver: the ordering
// oracle that turns a configuration's advisor list into the interceptors
// applying to one method.
package resolver

import (
	"reflect"

	"dirpx.dev/aopx/apis"
)

// New constructs the default apis.ChainResolver. It walks the advisors in
// configuration order, keeps pointcut advisors whose pointcut matches the
// method, and keeps plain advisors unconditionally. Advisor order is
// preserved: the resulting chain's first entry runs first, its last entry
// runs nearest the target.
func New() apis.ChainResolver {
	return chainResolver{}
}

// chainResolver is stateless; safe for concurrent use.
type chainResolver struct{}

var _ apis.ChainResolver = chainResolver{}

// Resolve returns the ordered interceptors applying to m on targetClass.
// When the configuration is pre-filtered the class filter is skipped and
// only the method matcher runs.
func (chainResolver) Resolve(cfg apis.Advised, m apis.Method, targetClass reflect.Type) []apis.Interceptor {
	advisors := cfg.Advisors()
	out := make([]apis.Interceptor, 0, len(advisors))
	for _, a := range advisors {
		if a == nil {
			continue
		}
		if pa, ok := a.(apis.PointcutAdvisor); ok {
			if pc := pa.Pointcut(); pc != nil {
				if !cfg.PreFiltered() && !pc.Matches(targetClass) {
					continue
				}
				if !pc.MatchesMethod(m, targetClass) {
					continue
				}
			}
		}
		if ic := a.Advice(); ic != nil {
			out = append(out, ic)
		}
	}
	return out
}
