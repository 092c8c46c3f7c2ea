/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package match

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Comcast/casematch/value"
)

// Bindings maps capture names to the values they matched.
//
// Names are kept in the order they were bound.  A name can be bound
// only once.
type Bindings struct {
	names []string
	vals  map[string]value.Value
}

// NewBindings makes empty Bindings.
func NewBindings() *Bindings {
	return &Bindings{
		names: make([]string, 0, 8),
		vals:  make(map[string]value.Value, 8),
	}
}

// Bind adds a binding.
//
// Returns a BindingCollision if the name is already bound.  The
// Bindings are modified.
func (bs *Bindings) Bind(name string, v value.Value) error {
	if _, have := bs.vals[name]; have {
		return &BindingCollision{name}
	}
	bs.names = append(bs.names, name)
	bs.vals[name] = v
	return nil
}

// Merge adds all of the given bindings.
//
// The union must be disjoint.  On a collision, returns a
// BindingCollision and leaves the receiver unchanged.
func (bs *Bindings) Merge(more *Bindings) error {
	if more == nil {
		return nil
	}
	for _, p := range more.names {
		if _, have := bs.vals[p]; have {
			return &BindingCollision{p}
		}
	}
	for _, p := range more.names {
		bs.names = append(bs.names, p)
		bs.vals[p] = more.vals[p]
	}
	return nil
}

// mark and rollback support undoing the bindings made by a failed
// sub-match.
func (bs *Bindings) mark() int {
	return len(bs.names)
}

func (bs *Bindings) rollback(n int) {
	for _, p := range bs.names[n:] {
		delete(bs.vals, p)
	}
	bs.names = bs.names[:n]
}

// Get returns the value bound to the name.
func (bs *Bindings) Get(name string) (value.Value, bool) {
	if bs == nil {
		return nil, false
	}
	v, have := bs.vals[name]
	return v, have
}

// Len returns the number of bindings.
func (bs *Bindings) Len() int {
	if bs == nil {
		return 0
	}
	return len(bs.names)
}

// Names returns the bound names in binding order.
func (bs *Bindings) Names() []string {
	if bs == nil {
		return nil
	}
	return append([]string(nil), bs.names...)
}

// Copy makes a shallow copy of the Bindings.
func (bs *Bindings) Copy() *Bindings {
	acc := &Bindings{
		names: make([]string, len(bs.names)),
		vals:  make(map[string]value.Value, len(bs.vals)),
	}
	copy(acc.names, bs.names)
	for k, v := range bs.vals {
		acc.vals[k] = v
	}
	return acc
}

// Map returns the bindings as a map.
func (bs *Bindings) Map() map[string]value.Value {
	acc := make(map[string]value.Value, bs.Len())
	if bs == nil {
		return acc
	}
	for k, v := range bs.vals {
		acc[k] = v
	}
	return acc
}

// Interface returns the bindings as plain Go data (see
// value.ToInterface).
func (bs *Bindings) Interface() map[string]interface{} {
	acc := make(map[string]interface{}, bs.Len())
	if bs == nil {
		return acc
	}
	for k, v := range bs.vals {
		acc[k] = value.ToInterface(v)
	}
	return acc
}

// Equal reports whether both Bindings bind the same names to equal
// values.  Binding order is ignored.
func (bs *Bindings) Equal(other *Bindings) bool {
	if bs.Len() != other.Len() {
		return false
	}
	if bs == nil || other == nil {
		return bs == other
	}
	for k, v := range bs.vals {
		w, have := other.vals[k]
		if !have || !value.Equal(v, w) {
			return false
		}
	}
	return true
}

func (bs *Bindings) String() string {
	if bs == nil {
		return "nil"
	}
	acc := make([]string, len(bs.names))
	for i, p := range bs.names {
		acc[i] = p + "=" + bs.vals[p].String()
	}
	return "{" + strings.Join(acc, ", ") + "}"
}

// MarshalJSON writes the bindings as an object with properties in
// binding order.
func (bs *Bindings) MarshalJSON() ([]byte, error) {
	if bs == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range bs.names {
		if 0 < i {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value.ToInterface(bs.vals[p]))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
