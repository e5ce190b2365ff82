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

// TargetSource is the target-acquisition capability: how the engine obtains
// the instance behind a proxy for each call. Static sources always return the
// same instance; dynamic sources may produce a fresh or pooled instance per
// call, in which case Release must be called when the call completes.
//
// Acquisition should happen as late as possible and release is guaranteed by
// the engine (deferred, also on error) to keep the ownership window minimal.
type TargetSource interface {
	// TargetClass returns the type of targets this source produces, or nil
	// if unknown.
	TargetClass() reflect.Type
	// Static reports whether Target always returns the same instance.
	// Static sources never need Release.
	Static() bool
	// Target returns a target instance for the current call.
	Target() (any, error)
	// Release gives an instance obtained from Target back to the source.
	Release(target any) error
}

// RawTargetAccess marks target types whose methods are intentionally allowed
// to return the bare target from behind a proxy. The engine skips the
// self-return rewrite for methods of marked targets.
type RawTargetAccess interface {
	RawTargetAccess()
}
