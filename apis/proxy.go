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

// Proxied is implemented by every proxy this engine generates, making proxies
// introspectable and letting the generator detect proxy-of-proxy targets so
// it can reuse the original shape base instead of stacking substitutes.
type Proxied interface {
	// ShapeBase returns the class whose method surface the proxy mirrors.
	ShapeBase() reflect.Type
}
