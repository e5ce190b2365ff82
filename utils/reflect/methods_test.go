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

package reflect

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/aopx/apis"
)

type calc struct {
	total int
}

func (c *calc) Add(a, b int) int                          { return a + b }
func (c *calc) Div(a, b int) (int, error)                 { return a / b, nil }
func (c *calc) Equal(other any) bool                      { _, ok := other.(*calc); return ok }
func (c *calc) Finalize()                                 {}
func (c *calc) Hash() uint64                              { return 42 }
func (c *calc) Sum(base int, xs ...int) int {
	s := base
	for _, x := range xs {
		s += x
	}
	return s
}
func (c *calc) WithCtx(ctx context.Context, s string) string { return s }
func (c *calc) Zero()                                     {}

type reader interface {
	Read(n int) (string, error)
}

func TestMethodsNilType(t *testing.T) {
	_, err := Methods(nil)
	require.ErrorIs(t, err, ErrNilType)
}

func TestMethodsStripsReceiver(t *testing.T) {
	ms, err := Methods(reflect.TypeOf(&calc{}))
	require.NoError(t, err)
	require.Len(t, ms, 9)

	add, ok := MethodNamed(reflect.TypeOf(&calc{}), "Add")
	require.True(t, ok)
	assert.Equal(t, "Add", add.Name)
	assert.Equal(t, 2, add.Type.NumIn())
	assert.Equal(t, 1, add.Type.NumOut())
	assert.Equal(t, reflect.TypeOf(&calc{}), add.Owner)
	assert.GreaterOrEqual(t, add.Index, 0)
}

func TestMethodsInterfaceSignature(t *testing.T) {
	rt := reflect.TypeOf((*reader)(nil)).Elem()
	ms, err := Methods(rt)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	// Interface signatures carry no receiver: identical shape to a stripped
	// concrete signature.
	assert.Equal(t, 1, ms[0].Type.NumIn())
	assert.Equal(t, 2, ms[0].Type.NumOut())
}

func TestMethodNamedMissing(t *testing.T) {
	_, ok := MethodNamed(reflect.TypeOf(&calc{}), "Nope")
	assert.False(t, ok)
}

func TestMethodShapes(t *testing.T) {
	ct := reflect.TypeOf(&calc{})
	named := func(name string) apis.Method {
		m, ok := MethodNamed(ct, name)
		require.True(t, ok, name)
		return m
	}

	assert.True(t, IsFinalizeMethod(named("Finalize")))
	assert.False(t, IsFinalizeMethod(named("Zero")))

	assert.True(t, IsEqualMethod(named("Equal")))
	assert.False(t, IsEqualMethod(named("Add")))

	assert.True(t, IsHashMethod(named("Hash")))
	assert.False(t, IsHashMethod(named("Zero")))

	assert.True(t, DeclaresError(named("Div")))
	assert.False(t, DeclaresError(named("Add")))
	assert.False(t, DeclaresError(named("Zero")))
}

func TestResultsExcludeTrailingError(t *testing.T) {
	ct := reflect.TypeOf(&calc{})
	div, _ := MethodNamed(ct, "Div")
	rts := Results(div)
	require.Len(t, rts, 1)
	assert.Equal(t, reflect.TypeOf(0), rts[0])

	zero, _ := MethodNamed(ct, "Zero")
	assert.Empty(t, Results(zero))
}

func TestZeroResults(t *testing.T) {
	ct := reflect.TypeOf(&calc{})
	add, _ := MethodNamed(ct, "Add")
	assert.Equal(t, []any{0}, ZeroResults(add))
}

func TestNilable(t *testing.T) {
	assert.True(t, Nilable(reflect.TypeOf(&calc{})))
	assert.True(t, Nilable(reflect.TypeOf([]int{})))
	assert.True(t, Nilable(reflect.TypeOf(map[string]int{})))
	assert.True(t, Nilable(reflect.TypeOf((*error)(nil)).Elem()))
	assert.False(t, Nilable(reflect.TypeOf(0)))
	assert.False(t, Nilable(reflect.TypeOf("")))
	assert.False(t, Nilable(reflect.TypeOf(calc{})))
}

func TestIdentical(t *testing.T) {
	a := &calc{}
	b := &calc{}
	assert.True(t, Identical(a, a))
	assert.False(t, Identical(a, b))
	assert.False(t, Identical(a, nil))
	// Value kinds are never identical, even when equal.
	assert.False(t, Identical(calc{total: 1}, calc{total: 1}))
	assert.False(t, Identical(1, 1))
}
