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

package resolver_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/resolver"
)

type tag struct {
	label string
}

func (t *tag) Invoke(inv apis.Invocation) ([]any, error) { return inv.Proceed() }

type classBound struct {
	class   reflect.Type
	methods []string
}

func (p classBound) Matches(targetClass reflect.Type) bool { return targetClass == p.class }

func (p classBound) MatchesMethod(m apis.Method, _ reflect.Type) bool {
	for _, n := range p.methods {
		if n == m.Name {
			return true
		}
	}
	return false
}

type svc struct{}

func (s *svc) Get() string { return "get" }
func (s *svc) Put(string)  {}

func method(name string) apis.Method { return apis.Method{Name: name, Index: -1} }

func TestResolvePreservesOrder(t *testing.T) {
	first := &tag{label: "first"}
	second := &tag{label: "second"}
	cfg := config.New(config.WithAdvisors(
		config.NewAdvisor(first),
		config.NewAdvisor(second),
	))

	chain := resolver.New().Resolve(cfg, method("Get"), reflect.TypeOf(&svc{}))
	require.Len(t, chain, 2)
	assert.Same(t, first, chain[0])
	assert.Same(t, second, chain[1])
}

func TestResolveFiltersByMethodName(t *testing.T) {
	ic := &tag{label: "get-only"}
	cfg := config.New(config.WithAdvisors(
		config.NewPointcutAdvisor(ic, config.MethodNamePointcut{Names: []string{"Get"}}),
	))

	chain := resolver.New().Resolve(cfg, method("Get"), reflect.TypeOf(&svc{}))
	assert.Len(t, chain, 1)

	chain = resolver.New().Resolve(cfg, method("Put"), reflect.TypeOf(&svc{}))
	assert.Empty(t, chain)
}

func TestResolveFiltersByClass(t *testing.T) {
	ic := &tag{}
	cfg := config.New(config.WithAdvisors(
		config.NewPointcutAdvisor(ic, classBound{
			class:   reflect.TypeOf(&svc{}),
			methods: []string{"Get"},
		}),
	))

	chain := resolver.New().Resolve(cfg, method("Get"), reflect.TypeOf(&svc{}))
	assert.Len(t, chain, 1)

	// Wrong class: the class filter rejects before the method matcher runs.
	chain = resolver.New().Resolve(cfg, method("Get"), reflect.TypeOf(&tag{}))
	assert.Empty(t, chain)
}

func TestResolvePreFilteredSkipsClassCheck(t *testing.T) {
	ic := &tag{}
	cfg := config.New(
		config.WithPreFiltered(true),
		config.WithAdvisors(config.NewPointcutAdvisor(ic, classBound{
			class:   reflect.TypeOf(&svc{}),
			methods: []string{"Get"},
		})),
	)

	// Class does not match, but pre-filtered configurations trust the
	// advisor list and only run the method matcher.
	chain := resolver.New().Resolve(cfg, method("Get"), reflect.TypeOf(&tag{}))
	assert.Len(t, chain, 1)
}

func TestResolveNilPointcutMatchesAll(t *testing.T) {
	ic := &tag{}
	cfg := config.New(config.WithAdvisors(config.NewPointcutAdvisor(ic, nil)))
	chain := resolver.New().Resolve(cfg, method("Anything"), reflect.TypeOf(&svc{}))
	assert.Len(t, chain, 1)
}
