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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/aopx/apis"
)

type otherAdvice struct{}

func (otherAdvice) Invoke(inv apis.Invocation) ([]any, error) { return inv.Proceed() }

func TestEqualsInProxyIdentityAndNil(t *testing.T) {
	cfg := New(WithTarget(&store{}))
	assert.True(t, EqualsInProxy(cfg, cfg))
	assert.False(t, EqualsInProxy(cfg, nil))
	assert.False(t, EqualsInProxy(nil, cfg))
	assert.True(t, EqualsInProxy(nil, nil))
}

func TestEqualsInProxyStructural(t *testing.T) {
	s := &store{}
	a := New(WithTarget(s))
	b := New(WithTarget(s))
	require.NoError(t, a.AddAdvice(&countingAdvice{}))
	require.NoError(t, b.AddAdvice(&countingAdvice{}))

	// Same target instance, same advice type: equal despite distinct advice
	// instances.
	assert.True(t, EqualsInProxy(a, b))
}

func TestEqualsInProxyAdviceTypeMatters(t *testing.T) {
	s := &store{}
	a := New(WithTarget(s))
	b := New(WithTarget(s))
	require.NoError(t, a.AddAdvice(&countingAdvice{}))
	require.NoError(t, b.AddAdvice(otherAdvice{}))
	assert.False(t, EqualsInProxy(a, b))
}

func TestEqualsInProxyFlagsMatter(t *testing.T) {
	s := &store{}
	a := New(WithTarget(s))
	b := New(WithTarget(s), WithExposeProxy(true))
	assert.False(t, EqualsInProxy(a, b))

	c := New(WithTarget(s))
	c.Freeze()
	d := New(WithTarget(s))
	assert.False(t, EqualsInProxy(c, d))
}

func TestEqualsInProxyTargetMatters(t *testing.T) {
	a := New(WithTarget(&store{}))
	b := New(WithTarget(&store{}))
	// Distinct singleton instances are not equal.
	assert.False(t, EqualsInProxy(a, b))
}

func TestEqualsInProxyInterfacesMatter(t *testing.T) {
	s := &store{}
	a := New(WithTarget(s))
	b := New(WithTarget(s))
	require.NoError(t, a.AddInterface(reflect.TypeOf((*apis.TargetSource)(nil)).Elem()))
	assert.False(t, EqualsInProxy(a, b))
}

func TestEqualsInProxyPointcutRule(t *testing.T) {
	s := &store{}
	ica, icb := &countingAdvice{}, &countingAdvice{}

	// Plain advisor on the left matches a pointcut advisor of the same
	// advice type on the right.
	a := New(WithTarget(s), WithAdvisors(NewAdvisor(ica)))
	b := New(WithTarget(s), WithAdvisors(
		NewPointcutAdvisor(icb, MethodNamePointcut{Names: []string{"Get"}})))
	assert.True(t, EqualsInProxy(a, b))

	// Pointcut advisor on the left demands an equal pointcut on the right.
	assert.False(t, EqualsInProxy(b, a))

	c := New(WithTarget(s), WithAdvisors(
		NewPointcutAdvisor(ica, MethodNamePointcut{Names: []string{"Get"}})))
	assert.True(t, EqualsInProxy(b, c))

	d := New(WithTarget(s), WithAdvisors(
		NewPointcutAdvisor(ica, MethodNamePointcut{Names: []string{"Set"}})))
	assert.False(t, EqualsInProxy(b, d))
}

func TestMethodNamePointcutEqual(t *testing.T) {
	p := MethodNamePointcut{Names: []string{"A", "B"}}
	assert.True(t, p.Equal(MethodNamePointcut{Names: []string{"A", "B"}}))
	assert.False(t, p.Equal(MethodNamePointcut{Names: []string{"B", "A"}}))
	assert.False(t, p.Equal(MethodNamePointcut{Names: []string{"A"}}))
	assert.False(t, p.Equal(nil))
}

func TestTargetSourcesEqual(t *testing.T) {
	assert.True(t, TargetSourcesEqual(nil, nil))
	cfg := New(WithTarget(&store{}))
	assert.False(t, TargetSourcesEqual(cfg.TargetSource(), nil))
	assert.True(t, TargetSourcesEqual(cfg.TargetSource(), cfg.TargetSource()))
}
