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

// Advisor pairs an advice with the rule deciding where it applies. The engine
// treats advisors as opaque beyond ordering and equality-by-type-and-pointcut.
type Advisor interface {
	// Advice returns the interceptor carried by this advisor.
	Advice() Interceptor
}

// Pointcut selects the methods and classes an advisor applies to.
// The class filter and method matcher are split so that pre-filtered
// configurations can skip the class check.
type Pointcut interface {
	// Matches reports whether the pointcut applies to the target class at all.
	Matches(targetClass reflect.Type) bool
	// MatchesMethod reports whether the pointcut applies to the given method
	// on the target class.
	MatchesMethod(m Method, targetClass reflect.Type) bool
}

// PointcutAdvisor is an Advisor whose applicability is driven by a Pointcut.
// Advisors that are not PointcutAdvisors apply unconditionally.
type PointcutAdvisor interface {
	Advisor
	// Pointcut returns the matching rule. A nil pointcut matches everything.
	Pointcut() Pointcut
}
