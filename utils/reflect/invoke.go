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
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/aopx/apis"
)

var (
	// ErrNoSuchMethod is returned when a target has no method of the
	// requested name. An engine-level error, never wrapped as undeclared.
	ErrNoSuchMethod = errors.New("aopx(reflect): no such method on target")
	// ErrArgumentMismatch is returned when the supplied arguments cannot be
	// shaped to the method's signature.
	ErrArgumentMismatch = errors.New("aopx(reflect): argument mismatch")
	// ErrNilTarget is returned when invoking a method on a nil target.
	ErrNilTarget = errors.New("aopx(reflect): nil target")
)

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()

// Invoke calls method m on target with args. The bound method is resolved by
// index when target's type is m's owner, falling back to a name lookup so the
// same descriptor works for any instance sharing the method name.
//
// If the method's first parameter is a context.Context and args does not
// supply one, ctx is injected. A trailing declared error result is split off
// and returned as the error; all other results are returned as values.
// Panics from the target propagate unrecovered.
func Invoke(ctx context.Context, target any, m apis.Method, args []any) ([]any, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilTarget, m.Name)
	}
	tv := reflect.ValueOf(target)
	var mv reflect.Value
	if m.Owner != nil && m.Index >= 0 && tv.Type() == m.Owner {
		mv = tv.Method(m.Index)
	} else {
		mv = tv.MethodByName(m.Name)
		if !mv.IsValid() {
			// Dispatch-table targets (a proxy fronting another proxy) expose
			// their surface through Call rather than real methods.
			if c, ok := target.(interface {
				Call(ctx context.Context, method string, args ...any) ([]any, error)
			}); ok {
				return c.Call(ctx, m.Name, args...)
			}
			return nil, fmt.Errorf("%w: %T.%s", ErrNoSuchMethod, target, m.Name)
		}
	}
	return Call(ctx, mv, m, args)
}

// Call invokes the bound method value mv, shaping args to its signature.
// Exposed separately so callers can pre-resolve the method once (the fast
// invoke path for static targets).
func Call(ctx context.Context, mv reflect.Value, m apis.Method, args []any) ([]any, error) {
	ft := mv.Type()
	in, err := adaptArguments(ctx, ft, m, args)
	if err != nil {
		return nil, err
	}
	out := mv.Call(in)
	return splitResults(m, out), declaredError(m, out)
}

// adaptArguments builds the reflect.Value argument list: context injection
// for a leading context.Context parameter, nil-to-zero conversion, and
// convertible-type adaptation. Variadic spreading is left to reflect.Call.
func adaptArguments(ctx context.Context, ft reflect.Type, m apis.Method, args []any) ([]reflect.Value, error) {
	if ft.NumIn() > 0 && ft.In(0) == ctxType && len(args) == ft.NumIn()-1 {
		if ctx == nil {
			ctx = context.Background()
		}
		args = append([]any{ctx}, args...)
	}
	if ft.IsVariadic() {
		if len(args) < ft.NumIn()-1 {
			return nil, fmt.Errorf("%w: %s wants at least %d args, got %d",
				ErrArgumentMismatch, m.Name, ft.NumIn()-1, len(args))
		}
	} else if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("%w: %s wants %d args, got %d",
			ErrArgumentMismatch, m.Name, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := paramType(ft, i)
		if a == nil {
			if !Nilable(pt) {
				return nil, fmt.Errorf("%w: nil for non-nilable parameter %d of %s",
					ErrArgumentMismatch, i, m.Name)
			}
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		switch {
		case av.Type().AssignableTo(pt):
			in[i] = av
		case av.Type().ConvertibleTo(pt):
			in[i] = av.Convert(pt)
		default:
			return nil, fmt.Errorf("%w: arg %d of %s: %s not assignable to %s",
				ErrArgumentMismatch, i, m.Name, av.Type(), pt)
		}
	}
	return in, nil
}

// paramType returns the effective parameter type at position i, unrolling the
// variadic tail.
func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// splitResults converts the call results to values, dropping a trailing
// declared error.
func splitResults(m apis.Method, out []reflect.Value) []any {
	n := len(out)
	if DeclaresError(m) && n > 0 {
		n--
	}
	res := make([]any, n)
	for i := 0; i < n; i++ {
		res[i] = out[i].Interface()
	}
	return res
}

// declaredError extracts the trailing error result, if the method declares
// one and the call produced it.
func declaredError(m apis.Method, out []reflect.Value) error {
	if !DeclaresError(m) || len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.IsNil() {
		return nil
	}
	return last.Interface().(error)
}
