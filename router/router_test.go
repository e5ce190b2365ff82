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

package router

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/aopx/apis"
	"dirpx.dev/aopx/config"
	"dirpx.dev/aopx/target"
	uref "dirpx.dev/aopx/utils/reflect"
)

type account struct {
	balance int
}

func (a *account) Balance() int        { return a.balance }
func (a *account) Deposit(n int)       { a.balance += n }
func (a *account) Self() *account      { return a }
func (a *account) Finalize()           {}
func (a *account) Equal(other any) bool { return a == other }
func (a *account) Hash() uint64        { return uint64(a.balance) }
func (a *account) Frozen() bool        { return false }

type passThrough struct{}

func (passThrough) Invoke(inv apis.Invocation) ([]any, error) { return inv.Proceed() }

func accountMethod(t *testing.T, name string) apis.Method {
	t.Helper()
	m, ok := uref.MethodNamed(reflect.TypeOf(&account{}), name)
	require.True(t, ok, name)
	return m
}

func adviceOn(names ...string) config.Option {
	return config.WithAdvisors(config.NewPointcutAdvisor(
		passThrough{}, config.MethodNamePointcut{Names: names}))
}

func TestSlotString(t *testing.T) {
	assert.Equal(t, "advice", SlotAdvice.String())
	assert.Equal(t, "dispatch-target", SlotDispatchTarget.String())
	assert.Equal(t, "fixed-chain", Slot(FixedOffset).String())
}

func TestIsAdvisedMethod(t *testing.T) {
	assert.True(t, IsAdvisedMethod(apis.Method{Name: "Frozen"}))
	assert.True(t, IsAdvisedMethod(apis.Method{Name: "AddAdvisor"}))
	assert.True(t, IsAdvisedMethod(apis.Method{Name: "ProxyConfigString"}))
	assert.False(t, IsAdvisedMethod(apis.Method{Name: "Balance"}))
}

func TestRouteFinalizeIsNoOp(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}), adviceOn("Finalize"))
	got := Route(accountMethod(t, "Finalize"), cfg, nil)
	assert.Equal(t, int(SlotNoOp), got, "finalization is never intercepted, advice or not")
}

func TestRouteAdvisedSurface(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}))
	got := Route(accountMethod(t, "Frozen"), cfg, nil)
	assert.Equal(t, int(SlotDispatchAdvised), got)
}

func TestRouteAdvisedSurfaceOpaque(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}), config.WithOpaque(true))
	got := Route(accountMethod(t, "Frozen"), cfg, nil)
	assert.NotEqual(t, int(SlotDispatchAdvised), got,
		"opaque configurations never expose the introspection surface")
}

func TestRouteIdentityMethods(t *testing.T) {
	// Identity methods go to the proxy even when advice would match them.
	cfg := config.New(config.WithTarget(&account{}), adviceOn("Equal", "Hash"))
	assert.Equal(t, int(SlotEquals), Route(accountMethod(t, "Equal"), cfg, nil))
	assert.Equal(t, int(SlotHash), Route(accountMethod(t, "Hash"), cfg, nil))
}

func TestRouteUnfrozenAlwaysAdvice(t *testing.T) {
	// Unfrozen means advice may appear later: even advice-free methods take
	// the general path.
	cfg := config.New(config.WithTarget(&account{}))
	got := Route(accountMethod(t, "Balance"), cfg, nil)
	assert.Equal(t, int(SlotAdvice), got)
}

func TestRouteAdviceWithExposeProxy(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}),
		adviceOn("Balance"), config.WithExposeProxy(true))
	cfg.Freeze()
	fixed := map[string]int{"Balance": 0}
	got := Route(accountMethod(t, "Balance"), cfg, fixed)
	assert.Equal(t, int(SlotAdvice), got,
		"exposure needs the general path's wrap/unwrap")
}

func TestRouteFixedChain(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}), adviceOn("Balance"))
	cfg.Freeze()
	fixed := map[string]int{"Balance": 3}
	got := Route(accountMethod(t, "Balance"), cfg, fixed)
	assert.Equal(t, FixedOffset+3, got)
}

func TestRouteFixedChainMissFallsBack(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}), adviceOn("Balance"))
	cfg.Freeze()
	got := Route(accountMethod(t, "Balance"), cfg, map[string]int{})
	assert.Equal(t, int(SlotAdvice), got)
}

func TestRouteFrozenAdviceFreeExposed(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}), config.WithExposeProxy(true))
	cfg.Freeze()
	got := Route(accountMethod(t, "Balance"), cfg, nil)
	assert.Equal(t, int(SlotInvokeTarget), got)
}

func TestRouteFrozenAdviceFreeDynamic(t *testing.T) {
	hs, err := target.NewHotSwap(&account{})
	require.NoError(t, err)
	cfg := config.New(config.WithTargetSource(hs))
	cfg.Freeze()
	got := Route(accountMethod(t, "Balance"), cfg, nil)
	assert.Equal(t, int(SlotInvokeTarget), got)
}

func TestRouteFrozenAdviceFreeSelfReturning(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}))
	cfg.Freeze()
	got := Route(accountMethod(t, "Self"), cfg, nil)
	assert.Equal(t, int(SlotInvokeTarget), got,
		"Self may hand out the target, so the rewrite must run")
}

func TestRouteFrozenAdviceFreeDispatches(t *testing.T) {
	cfg := config.New(config.WithTarget(&account{}))
	cfg.Freeze()
	assert.Equal(t, int(SlotDispatchTarget), Route(accountMethod(t, "Balance"), cfg, nil))
	assert.Equal(t, int(SlotDispatchTarget), Route(accountMethod(t, "Deposit"), cfg, nil))
}

func TestMayReturnTarget(t *testing.T) {
	tc := reflect.TypeOf(&account{})
	assert.True(t, mayReturnTarget(accountMethod(t, "Self"), tc))
	assert.False(t, mayReturnTarget(accountMethod(t, "Balance"), tc))
	assert.False(t, mayReturnTarget(accountMethod(t, "Deposit"), tc))
	assert.False(t, mayReturnTarget(accountMethod(t, "Self"), nil))
}
