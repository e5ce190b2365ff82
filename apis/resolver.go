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

// ChainResolver is the ordering oracle consumed by the engine: given a method
// and a target class, it returns the interceptors that apply, in execution
// order. The first entry runs first; the last entry runs nearest the target.
//
// The returned slice may be empty and must be stable for a given
// (configuration snapshot, method, target class) triple — the engine caches
// it, indefinitely so for frozen configurations.
type ChainResolver interface {
	Resolve(cfg Advised, m Method, targetClass reflect.Type) []Interceptor
}
