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

// EqualsInProxy decides proxy identity-equality at the configuration level:
// two proxies are equal iff their configurations are structurally equal.
// Advice instance identity is unimportant — all that matters is advice type
// and pointcut, plus the target-acquisition identity and the flags that
// shape routing.
func EqualsInProxy(a, b *Advised) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Frozen() != b.Frozen() || a.ExposeProxy() != b.ExposeProxy() {
		return false
	}
	ats, bts := a.TargetSource(), b.TargetSource()
	if ats.Static() != bts.Static() {
		return false
	}
	if !TargetSourcesEqual(ats, bts) {
		return false
	}
	if !interfacesEqual(a.ProxiedInterfaces(), b.ProxiedInterfaces()) {
		return false
	}
	return advisorsEqual(a.Advisors(), b.Advisors())
}

// TargetSourcesEqual compares target-acquisition identity: the source's own
// Equal method when it has one, instance identity otherwise.
func TargetSourcesEqual(a, b apis.TargetSource) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(interface{ Equal(apis.TargetSource) bool }); ok {
		return eq.Equal(b)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func interfacesEqual(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func advisorsEqual(a, b []apis.Advisor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !adviceTypesEqual(a[i], b[i]) || !pointcutsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// adviceTypesEqual compares advisors by the dynamic type of their advice.
func adviceTypesEqual(a, b apis.Advisor) bool {
	return reflect.TypeOf(a.Advice()) == reflect.TypeOf(b.Advice())
}

// pointcutsEqual follows the original rule: a non-pointcut advisor on the
// left matches anything; a pointcut advisor on the left requires a pointcut
// advisor with an equal pointcut on the right.
func pointcutsEqual(a, b apis.Advisor) bool {
	pa, aok := a.(apis.PointcutAdvisor)
	if !aok {
		return true
	}
	pb, bok := b.(apis.PointcutAdvisor)
	if !bok {
		return false
	}
	return pointcutEqual(pa.Pointcut(), pb.Pointcut())
}

func pointcutEqual(a, b apis.Pointcut) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(interface{ Equal(apis.Pointcut) bool }); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}
