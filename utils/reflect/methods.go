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
	"errors"
	"reflect"

	"dirpx.dev/aopx/apis"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("aopx(reflect): nil reflect.Type provided")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Methods returns the exported method surface of t as engine method
// descriptors, in reflect's method-set order. The receiver is stripped from
// each signature so that concrete and interface types yield the same shape.
//
// Returns ErrNilType for a nil type. Unexported methods are invisible to
// reflection and therefore never part of a proxyable surface.
func Methods(t reflect.Type) ([]apis.Method, error) {
	if t == nil {
		return nil, ErrNilType
	}
	out := make([]apis.Method, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		rm := t.Method(i)
		out = append(out, apis.Method{
			Name:  rm.Name,
			Type:  signatureOf(t, rm),
			Index: i,
			Owner: t,
		})
	}
	return out, nil
}

// MethodNamed returns the descriptor for t's exported method with the given
// name, if present.
func MethodNamed(t reflect.Type, name string) (apis.Method, bool) {
	if t == nil {
		return apis.Method{}, false
	}
	rm, ok := t.MethodByName(name)
	if !ok {
		return apis.Method{}, false
	}
	return apis.Method{Name: rm.Name, Type: signatureOf(t, rm), Index: rm.Index, Owner: t}, true
}

// signatureOf strips the receiver from a concrete type's method signature.
// Interface method signatures carry no receiver already.
func signatureOf(owner reflect.Type, rm reflect.Method) reflect.Type {
	ft := rm.Type
	if owner.Kind() == reflect.Interface {
		return ft
	}
	in := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		in = append(in, ft.In(i))
	}
	out := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		out = append(out, ft.Out(i))
	}
	return reflect.FuncOf(in, out, ft.IsVariadic())
}

// IsFinalizeMethod reports whether m is the object-finalization hook:
// a niladic Finalize with no results. Intercepting it would keep targets
// alive incorrectly, so the router maps it to the no-op slot.
func IsFinalizeMethod(m apis.Method) bool {
	return m.Name == "Finalize" && m.Type != nil && m.Type.NumIn() == 0 && m.Type.NumOut() == 0
}

// IsEqualMethod reports whether m has the identity-equality shape: Equal with
// one parameter and a single bool result.
func IsEqualMethod(m apis.Method) bool {
	return m.Name == "Equal" && m.Type != nil &&
		m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0).Kind() == reflect.Bool
}

// IsHashMethod reports whether m has the identity-hash shape: a niladic Hash
// with a single integer result.
func IsHashMethod(m apis.Method) bool {
	if m.Name != "Hash" || m.Type == nil || m.Type.NumIn() != 0 || m.Type.NumOut() != 1 {
		return false
	}
	switch m.Type.Out(0).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// DeclaresError reports whether m's final result is an error — the Go analog
// of a method declaring checked exceptions.
func DeclaresError(m apis.Method) bool {
	if m.Type == nil || m.Type.NumOut() == 0 {
		return false
	}
	return m.Type.Out(m.Type.NumOut()-1) == errorType
}

// Results returns m's result types excluding a trailing error.
func Results(m apis.Method) []reflect.Type {
	if m.Type == nil {
		return nil
	}
	n := m.Type.NumOut()
	if DeclaresError(m) {
		n--
	}
	out := make([]reflect.Type, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, m.Type.Out(i))
	}
	return out
}

// ZeroResults returns the zero value for each of m's non-error results.
func ZeroResults(m apis.Method) []any {
	rts := Results(m)
	out := make([]any, len(rts))
	for i, rt := range rts {
		out[i] = reflect.Zero(rt).Interface()
	}
	return out
}

// Nilable reports whether values of t can hold nil.
func Nilable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan,
		reflect.Func, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// Identical reports whether a and b are the same object. Identity is a
// pointer-level notion: only reference kinds of the same type compare true.
// Value kinds are never identical, matching the self-return rewrite's
// reference semantics.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
