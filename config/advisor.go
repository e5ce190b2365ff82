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

package config

import (
	"reflect"

	"dirpx.dev/aopx/apis"
)

// advisor is the match-all advisor wrapping a bare interceptor, used by
// AddAdvice. It is not a PointcutAdvisor, so the resolver applies it to every
// method.
type advisor struct {
	advice apis.Interceptor
}

// NewAdvisor wraps an interceptor in a match-all advisor.
func NewAdvisor(i apis.Interceptor) apis.Advisor {
	return &advisor{advice: i}
}

func (a *advisor) Advice() apis.Interceptor { return a.advice }

// pointcutAdvisor pairs an interceptor with an explicit pointcut.
type pointcutAdvisor struct {
	advice apis.Interceptor
	pc     apis.Pointcut
}

// NewPointcutAdvisor pairs an interceptor with a pointcut. A nil pointcut
// matches everything.
func NewPointcutAdvisor(i apis.Interceptor, pc apis.Pointcut) apis.PointcutAdvisor {
	return &pointcutAdvisor{advice: i, pc: pc}
}

func (a *pointcutAdvisor) Advice() apis.Interceptor { return a.advice }
func (a *pointcutAdvisor) Pointcut() apis.Pointcut  { return a.pc }

// MethodNamePointcut matches methods by exact name, on any target class.
type MethodNamePointcut struct {
	// Names are the method names the pointcut applies to.
	Names []string
}

// Matches reports true for every target class; name pointcuts do not
// restrict by class.
func (p MethodNamePointcut) Matches(reflect.Type) bool { return true }

// MatchesMethod reports whether the method's name is listed.
func (p MethodNamePointcut) MatchesMethod(m apis.Method, _ reflect.Type) bool {
	for _, n := range p.Names {
		if n == m.Name {
			return true
		}
	}
	return false
}

// Equal reports structural equality with another pointcut: same names, same
// order.
func (p MethodNamePointcut) Equal(other apis.Pointcut) bool {
	o, ok := other.(MethodNamePointcut)
	if !ok || len(o.Names) != len(p.Names) {
		return false
	}
	for i, n := range p.Names {
		if o.Names[i] != n {
			return false
		}
	}
	return true
}

// sameAdvisor compares advisors by identity, tolerating non-comparable
// implementations.
func sameAdvisor(a, b apis.Advisor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

// sameInterceptor compares interceptors by identity, tolerating
// non-comparable implementations.
func sameInterceptor(a, b apis.Interceptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}
